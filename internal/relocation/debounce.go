package relocation

import (
	"context"
	"sync"
	"time"
)

type pendingCall struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

// Debouncer runs at most one call per key. A new Trigger for a key stops the
// pending timer and cancels the context of a call that is already running, so
// the newest input always supersedes older ones instead of queueing behind them.
type Debouncer struct {
	delay   time.Duration
	base    context.Context
	stop    context.CancelFunc
	mu      sync.Mutex
	pending map[string]*pendingCall
	wg      sync.WaitGroup
}

func NewDebouncer(delay time.Duration) *Debouncer {
	base, stop := context.WithCancel(context.Background())
	return &Debouncer{
		delay:   delay,
		base:    base,
		stop:    stop,
		pending: make(map[string]*pendingCall),
	}
}

// Trigger schedules fn for key after the debounce delay
func (d *Debouncer) Trigger(key string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.base.Err() != nil {
		return
	}
	d.cancelLocked(key)

	ctx, cancel := context.WithCancel(d.base)
	call := &pendingCall{cancel: cancel}
	d.wg.Add(1)
	call.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		defer cancel()
		if ctx.Err() != nil {
			return
		}
		fn(ctx)

		d.mu.Lock()
		if d.pending[key] == call {
			delete(d.pending, key)
		}
		d.mu.Unlock()
	})
	d.pending[key] = call
}

// Cancel drops the pending or running call for key
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(key)
}

// CancelAll drops every pending or running call
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.pending {
		d.cancelLocked(key)
	}
}

// Outstanding counts keys with a call that has not finished
func (d *Debouncer) Outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close cancels everything and waits for running calls to return
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.stop()
	for key := range d.pending {
		d.cancelLocked(key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Debouncer) cancelLocked(key string) {
	call, ok := d.pending[key]
	if !ok {
		return
	}
	call.cancel()
	if call.timer.Stop() {
		// the timer never fired, so its func won't call Done
		d.wg.Done()
	}
	delete(d.pending, key)
}
