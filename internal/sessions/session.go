// Package sessions keeps the in-memory bulk move sessions managers work in.
package sessions

import (
	"context"
	"sync"
	"time"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
	"binfleet-backend/internal/relocation"
)

// Session is one manager's bulk move selection: the bins picked, their move
// configs, dropped relocation pins and the last batch result.
type Session struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time

	Configs     *moves.ConfigStore
	Relocations *relocation.Capture

	mu           sync.Mutex
	bins         map[string]models.Bin
	lastAccessed time.Time
	lastRun      *Run
}

// Run is one Execute over the session: what was submitted and how it went
type Run struct {
	At      time.Time
	Bins    []models.Bin
	Configs map[string]moves.MoveConfig
	Result  moves.BatchResult
}

// SessionView is the JSON form of a session
type SessionView struct {
	ID          string                      `json:"id"`
	OwnerID     string                      `json:"owner_id"`
	CreatedAt   time.Time                   `json:"created_at"`
	Bins        []models.BinResponse        `json:"bins"`
	Configs     map[string]moves.MoveConfig `json:"configs"`
	Relocations []models.RelocationPlan     `json:"relocations"`
	LastResult  *moves.BatchResult          `json:"last_result,omitempty"`
}

// AddBins selects bins and seeds a default config for every new one.
// Bins already selected keep both their snapshot and their config.
func (s *Session) AddBins(bins []models.Bin) []string {
	s.mu.Lock()
	for _, b := range bins {
		if _, ok := s.bins[b.ID]; !ok {
			s.bins[b.ID] = b
		}
	}
	s.mu.Unlock()
	return s.Configs.Seed(bins)
}

// RemoveBin deselects a bin and drops its config. Its relocation plan stays.
func (s *Session) RemoveBin(binID string) {
	s.mu.Lock()
	delete(s.bins, binID)
	s.mu.Unlock()
	s.Configs.Remove(binID)
}

// Bins returns the selected bins in selection order
func (s *Session) Bins() []models.Bin {
	ids := s.Configs.BinIDs()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bin, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.bins[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (s *Session) Bin(binID string) (models.Bin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bins[binID]
	return b, ok
}

// Execute runs the batch over the current selection and records the run.
// Bins whose move record was created leave the selection, so running again
// only retries the bins that failed creation.
func (s *Session) Execute(ctx context.Context, o *moves.Orchestrator) (Run, error) {
	bins := s.Bins()
	configs := s.Configs.Snapshot()

	result, err := o.Execute(ctx, bins, configs)
	if err != nil {
		return Run{}, err
	}

	for binID := range result.MoveIDs {
		s.RemoveBin(binID)
	}

	run := Run{At: time.Now(), Bins: bins, Configs: configs, Result: result}
	s.mu.Lock()
	s.lastRun = &run
	s.mu.Unlock()
	return run, nil
}

// LastRun returns the most recent Execute, or nil
func (s *Session) LastRun() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Session) LastResult() *moves.BatchResult {
	run := s.LastRun()
	if run == nil {
		return nil
	}
	return &run.Result
}

func (s *Session) View() SessionView {
	bins := s.Bins()
	resp := make([]models.BinResponse, 0, len(bins))
	for i := range bins {
		resp = append(resp, bins[i].ToBinResponse())
	}
	return SessionView{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		CreatedAt:   s.CreatedAt,
		Bins:        resp,
		Configs:     s.Configs.Snapshot(),
		Relocations: s.Relocations.Plans(),
		LastResult:  s.LastResult(),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccessed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}
