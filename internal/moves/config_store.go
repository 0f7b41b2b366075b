package moves

import (
	"sync"
	"time"

	"binfleet-backend/internal/models"
)

// DefaultConfig is the config a bin gets when it first enters the selection.
// A pending relocation plan turns it into a relocation to the dropped spot.
func DefaultConfig(binID string, plans PlanLookup, now time.Time) MoveConfig {
	cfg := MoveConfig{
		MoveType:      MoveTypeStore,
		ScheduledDate: now,
		Assignment:    Unassigned(),
	}
	if plans == nil {
		return cfg
	}
	plan, ok := plans.Plan(binID)
	if !ok {
		return cfg
	}

	lat, lng := plan.NewLat, plan.NewLng
	cfg.MoveType = MoveTypeRelocation
	cfg.Destination = Destination{
		Street:    deref(plan.NewAddress),
		City:      deref(plan.NewCity),
		Zip:       deref(plan.NewZip),
		Latitude:  &lat,
		Longitude: &lng,
	}
	return cfg
}

// SeedConfigs returns existing plus a default config for every bin not in it.
// Existing entries are copied through untouched.
func SeedConfigs(bins []models.Bin, existing map[string]MoveConfig, plans PlanLookup, now time.Time) map[string]MoveConfig {
	out := make(map[string]MoveConfig, len(existing)+len(bins))
	for id, cfg := range existing {
		out[id] = cfg
	}
	for _, b := range bins {
		if _, ok := out[b.ID]; ok {
			continue
		}
		out[b.ID] = DefaultConfig(b.ID, plans, now)
	}
	return out
}

// ConfigStore is the per-bin move configuration of one scheduling session.
// Each bin's config is replaced as a whole, so writes to the same bin are
// last-writer-wins.
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[string]MoveConfig
	order   []string
	plans   PlanLookup
	now     func() time.Time
}

func NewConfigStore(plans PlanLookup) *ConfigStore {
	return &ConfigStore{
		configs: make(map[string]MoveConfig),
		plans:   plans,
		now:     time.Now,
	}
}

// Seed adds default configs for bins not yet configured and returns the ids it added
func (s *ConfigStore) Seed(bins []models.Bin) []string {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	for _, b := range bins {
		if _, ok := s.configs[b.ID]; ok {
			continue
		}
		s.configs[b.ID] = DefaultConfig(b.ID, s.plans, now)
		s.order = append(s.order, b.ID)
		added = append(added, b.ID)
	}
	return added
}

// Update merges patch into a bin's config
func (s *ConfigStore) Update(binID string, patch ConfigPatch) (MoveConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[binID]
	if !ok {
		return MoveConfig{}, ErrNotConfigured
	}
	cfg = patch.apply(cfg)
	s.configs[binID] = cfg
	return cfg, nil
}

// Remove drops a bin from the selection. Removing an unknown bin is a no-op.
func (s *ConfigStore) Remove(binID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[binID]; !ok {
		return
	}
	delete(s.configs, binID)
	for i, id := range s.order {
		if id == binID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *ConfigStore) Get(binID string) (MoveConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[binID]
	return cfg, ok
}

// Snapshot copies the current configs
func (s *ConfigStore) Snapshot() map[string]MoveConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]MoveConfig, len(s.configs))
	for id, cfg := range s.configs {
		out[id] = cfg
	}
	return out
}

// BinIDs lists configured bins in the order they were selected
func (s *ConfigStore) BinIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *ConfigStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.configs)
}

// FillDestinationAddress copies a late geocoding result into the config seeded
// from the same pin. Configs that moved to other coordinates or already carry
// a street are left alone.
func (s *ConfigStore) FillDestinationAddress(plan models.RelocationPlan) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[plan.BinID]
	if !ok || cfg.MoveType != MoveTypeRelocation {
		return false
	}
	d := cfg.Destination
	if !d.HasCoords() || *d.Latitude != plan.NewLat || *d.Longitude != plan.NewLng || d.Street != "" {
		return false
	}
	d.Street = deref(plan.NewAddress)
	d.City = deref(plan.NewCity)
	d.Zip = deref(plan.NewZip)
	cfg.Destination = d
	s.configs[plan.BinID] = cfg
	return true
}

func (s *ConfigStore) ApplyMoveTypeToAll(t MoveType) {
	s.applyToAll(ConfigPatch{MoveType: &t})
}

func (s *ConfigStore) ApplyAssignmentToAll(sel AssignmentSelection) {
	s.applyToAll(ConfigPatch{Assignment: &sel})
}

func (s *ConfigStore) ApplyDateToAll(date time.Time) {
	s.applyToAll(ConfigPatch{ScheduledDate: &date})
}

func (s *ConfigStore) applyToAll(patch ConfigPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cfg := range s.configs {
		s.configs[id] = patch.apply(cfg)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
