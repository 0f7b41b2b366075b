// Package relocation turns pins dropped on the map into pending relocation plans.
package relocation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"binfleet-backend/internal/models"
)

// Geocoder resolves coordinates into an address. A nil address with a nil
// error means there was no result.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error)
}

type entry struct {
	plan models.RelocationPlan
	gen  uint64
}

// Capture keeps one relocation plan per bin. Coordinates are stored as soon as
// a pin drops; the address is filled in later by a debounced reverse geocode.
type Capture struct {
	mu         sync.RWMutex
	plans      map[string]*entry
	gen        uint64
	geocoder   Geocoder
	debouncer  *Debouncer
	onResolved func(models.RelocationPlan)
	log        zerolog.Logger
}

func NewCapture(geocoder Geocoder, debounce time.Duration, log zerolog.Logger) *Capture {
	return &Capture{
		plans:     make(map[string]*entry),
		geocoder:  geocoder,
		debouncer: NewDebouncer(debounce),
		log:       log.With().Str("component", "relocation_capture").Logger(),
	}
}

// OnResolved registers fn to run whenever a plan gains an address
func (c *Capture) OnResolved(fn func(models.RelocationPlan)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResolved = fn
}

// OnDrop records the new coordinates for binID and returns the plan right away.
// Any address from an earlier drop is discarded with it.
func (c *Capture) OnDrop(binID string, lat, lng float64) models.RelocationPlan {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	plan := models.RelocationPlan{BinID: binID, NewLat: lat, NewLng: lng}
	c.plans[binID] = &entry{plan: plan, gen: gen}
	c.mu.Unlock()

	if c.geocoder != nil {
		c.debouncer.Trigger(binID, func(ctx context.Context) {
			c.resolve(ctx, binID, lat, lng, gen)
		})
	}
	return plan
}

func (c *Capture) resolve(ctx context.Context, binID string, lat, lng float64, gen uint64) {
	addr, err := c.geocoder.ReverseGeocode(ctx, lat, lng)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Str("bin_id", binID).Msg("Reverse geocode failed, keeping coordinates only")
		return
	}
	if addr == nil {
		c.log.Debug().Str("bin_id", binID).Float64("lat", lat).Float64("lng", lng).Msg("No address for dropped pin")
		return
	}

	c.mu.Lock()
	e, ok := c.plans[binID]
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	if addr.Street != "" {
		e.plan.NewAddress = &addr.Street
	}
	if addr.City != "" {
		e.plan.NewCity = &addr.City
	}
	if addr.Zip != "" {
		e.plan.NewZip = &addr.Zip
	}
	plan := e.plan
	notify := c.onResolved
	c.mu.Unlock()

	if notify != nil {
		notify(plan)
	}
}

// Plan returns the current plan for a bin
func (c *Capture) Plan(binID string) (models.RelocationPlan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.plans[binID]
	if !ok {
		return models.RelocationPlan{}, false
	}
	return e.plan, true
}

// Plans returns every plan ordered by bin id
func (c *Capture) Plans() []models.RelocationPlan {
	c.mu.RLock()
	out := make([]models.RelocationPlan, 0, len(c.plans))
	for _, e := range c.plans {
		out = append(out, e.plan)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].BinID < out[j].BinID })
	return out
}

// Reset clears one bin's plan. Configs already seeded from it are not touched.
func (c *Capture) Reset(binID string) {
	c.debouncer.Cancel(binID)
	c.mu.Lock()
	delete(c.plans, binID)
	c.mu.Unlock()
}

func (c *Capture) ResetAll() {
	c.debouncer.CancelAll()
	c.mu.Lock()
	c.plans = make(map[string]*entry)
	c.mu.Unlock()
}

// Close stops outstanding geocodes
func (c *Capture) Close() {
	c.debouncer.Close()
}
