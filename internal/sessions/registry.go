package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
	"binfleet-backend/internal/relocation"
)

// Registry holds live sessions and expires the ones left idle past the TTL
type Registry struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	ttl      time.Duration
	debounce time.Duration
	geocoder relocation.Geocoder
	log      zerolog.Logger
	stats    Stats
	stop     chan struct{}
	once     sync.Once

	// OnPlanResolved runs when a dropped pin in any session gets its address
	OnPlanResolved func(s *Session, plan models.RelocationPlan)
}

// Stats tracks registry activity
type Stats struct {
	Created int64
	Expired int64
	Deleted int64
	mutex   sync.Mutex
}

func NewRegistry(geocoder relocation.Geocoder, debounce, ttl time.Duration, log zerolog.Logger) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		debounce: debounce,
		geocoder: geocoder,
		log:      log.With().Str("component", "move_sessions").Logger(),
		stop:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go r.cleanupExpired()

	return r
}

// Create opens a new session for ownerID
func (r *Registry) Create(ownerID string) *Session {
	now := time.Now()
	s := &Session{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		CreatedAt:    now,
		bins:         make(map[string]models.Bin),
		lastAccessed: now,
	}
	s.Relocations = relocation.NewCapture(r.geocoder, r.debounce, r.log)
	s.Configs = moves.NewConfigStore(s.Relocations)
	s.Relocations.OnResolved(func(plan models.RelocationPlan) {
		s.Configs.FillDestinationAddress(plan)
		if r.OnPlanResolved != nil {
			r.OnPlanResolved(s, plan)
		}
	})

	r.mutex.Lock()
	r.sessions[s.ID] = s
	r.mutex.Unlock()

	r.stats.mutex.Lock()
	r.stats.Created++
	r.stats.mutex.Unlock()

	r.log.Info().Str("session_id", s.ID).Str("owner_id", ownerID).Msg("🆕 Move session opened")
	return s
}

// Get returns a live session and refreshes its idle timer
func (r *Registry) Get(id string) (*Session, bool) {
	r.mutex.RLock()
	s, found := r.sessions[id]
	r.mutex.RUnlock()

	if !found {
		return nil, false
	}

	// Check if expired
	if time.Since(s.idleSince()) > r.ttl {
		r.remove(id, true)
		return nil, false
	}

	s.touch(time.Now())
	return s, true
}

// Delete closes a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	return r.remove(id, false)
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}

// Sweep removes every session idle since before now minus the TTL
func (r *Registry) Sweep(now time.Time) int {
	r.mutex.RLock()
	var expired []string
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.ttl {
			expired = append(expired, id)
		}
	}
	r.mutex.RUnlock()

	n := 0
	for _, id := range expired {
		if r.remove(id, true) {
			n++
		}
	}
	return n
}

// Close stops the cleanup loop and closes every session
func (r *Registry) Close() {
	r.once.Do(func() { close(r.stop) })

	r.mutex.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mutex.Unlock()

	for _, s := range all {
		s.Relocations.Close()
	}
}

// GetStats returns registry statistics
func (r *Registry) GetStats() map[string]interface{} {
	r.stats.mutex.Lock()
	defer r.stats.mutex.Unlock()

	return map[string]interface{}{
		"active":      r.Len(),
		"created":     r.stats.Created,
		"expired":     r.stats.Expired,
		"deleted":     r.stats.Deleted,
		"ttl_minutes": int(r.ttl.Minutes()),
	}
}

func (r *Registry) remove(id string, expired bool) bool {
	r.mutex.Lock()
	s, found := r.sessions[id]
	if found {
		delete(r.sessions, id)
	}
	r.mutex.Unlock()

	if !found {
		return false
	}
	s.Relocations.Close()

	r.stats.mutex.Lock()
	if expired {
		r.stats.Expired++
	} else {
		r.stats.Deleted++
	}
	r.stats.mutex.Unlock()

	if expired {
		r.log.Info().Str("session_id", id).Msg("🗑️  Move session expired")
	}
	return true
}

// cleanupExpired periodically removes idle sessions
func (r *Registry) cleanupExpired() {
	interval := r.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}
