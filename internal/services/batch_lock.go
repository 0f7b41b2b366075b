package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"
)

// ErrBatchInProgress means another Execute already holds the session's lock
var ErrBatchInProgress = errors.New("a bulk move is already running for this session")

// BatchLock allows one bulk move per session at a time. With Redis the lock
// holds across replicas; without it the lock is local to this process.
type BatchLock struct {
	locker *redislock.Client
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]bool
}

func NewBatchLock(locker *redislock.Client, ttl time.Duration) *BatchLock {
	return &BatchLock{locker: locker, ttl: ttl, local: make(map[string]bool)}
}

// Acquire takes the lock for sessionID and returns its release func
func (l *BatchLock) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := fmt.Sprintf("lock:move-session:%s", sessionID)

	if l.locker != nil {
		lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrBatchInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("obtain batch lock: %w", err)
		}
		// the lease is extended while the batch runs, so a slow batch keeps it
		stop := keepAlive(l.ttl/2, func(ctx context.Context) error {
			return lock.Refresh(ctx, l.ttl, nil)
		})
		return func() {
			stop()
			// background ctx so release still runs after the request is gone
			_ = lock.Release(context.Background())
		}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.local[key] {
		return nil, ErrBatchInProgress
	}
	l.local[key] = true
	return func() {
		l.mu.Lock()
		delete(l.local, key)
		l.mu.Unlock()
	}, nil
}

// keepAlive calls refresh every interval until the returned stop func runs or
// a refresh fails. stop waits for the loop to exit.
func keepAlive(interval time.Duration, refresh func(context.Context) error) func() {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := refresh(ctx); err != nil {
					if ctx.Err() == nil {
						log.Warn().Err(err).Msg("⚠️  Lost batch lock lease")
					}
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
