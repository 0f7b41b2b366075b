package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
)

type stubGateway struct {
	mu      sync.Mutex
	failFor map[string]bool
	created []string
}

func (g *stubGateway) CreateMoveRecord(_ context.Context, req models.CreateBinMoveRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[req.BinID] {
		return "", errors.New("upstream timeout")
	}
	g.created = append(g.created, req.BinID)
	return "move-" + req.BinID, nil
}

func (g *stubGateway) AssignToUser(context.Context, string, string) error { return nil }

func (g *stubGateway) AssignToShift(context.Context, string, string, *string, *string) error {
	return nil
}

func TestSessionExecuteKeepsOnlyFailedBins(t *testing.T) {
	r := newTestRegistry(time.Hour)
	defer r.Close()
	s := r.Create("m")
	s.AddBins([]models.Bin{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}})

	gw := &stubGateway{failFor: map[string]bool{"b2": true}}
	o := moves.NewOrchestrator(gw, 2, zerolog.Nop())

	run, err := s.Execute(context.Background(), o)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(run.Result.Created) != 2 || len(run.Result.CreationFailures) != 1 {
		t.Fatalf("unexpected result %+v", run.Result)
	}
	if len(run.Bins) != 3 {
		t.Fatalf("run should record all submitted bins, got %d", len(run.Bins))
	}

	left := s.Bins()
	if len(left) != 1 || left[0].ID != "b2" {
		t.Fatalf("selection after run = %+v", left)
	}
	if s.LastResult() == nil || s.LastRun() == nil {
		t.Fatal("run not recorded")
	}

	// second run retries only the failed bin
	gw.failFor = nil
	run, err = s.Execute(context.Background(), o)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(run.Result.Created) != 1 || run.Result.MoveIDs["b2"] != "move-b2" {
		t.Fatalf("retry result %+v", run.Result)
	}
	if len(s.Bins()) != 0 {
		t.Fatalf("selection should be empty, got %+v", s.Bins())
	}

	if _, err := s.Execute(context.Background(), o); !errors.Is(err, moves.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

type staticGeocoder struct{}

func (staticGeocoder) ReverseGeocode(_ context.Context, lat, lng float64) (*models.Address, error) {
	return &models.Address{Street: "9 Oak Ave", City: "Dallas", Zip: "75201", Latitude: lat, Longitude: lng}, nil
}

func TestResolvedPlanFillsSeededConfig(t *testing.T) {
	r := NewRegistry(staticGeocoder{}, time.Millisecond, time.Hour, zerolog.Nop())
	defer r.Close()

	resolved := make(chan models.RelocationPlan, 1)
	r.OnPlanResolved = func(_ *Session, plan models.RelocationPlan) {
		resolved <- plan
	}

	s := r.Create("m")
	s.Relocations.OnDrop("b1", 32.7, -96.8)
	s.AddBins([]models.Bin{{ID: "b1"}})

	select {
	case plan := <-resolved:
		if plan.NewAddress == nil || *plan.NewAddress != "9 Oak Ave" {
			t.Fatalf("plan = %+v", plan)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("plan never resolved")
	}

	cfg, _ := s.Configs.Get("b1")
	if cfg.Destination.Street != "9 Oak Ave" || cfg.Destination.Zip != "75201" {
		t.Fatalf("destination not filled: %+v", cfg.Destination)
	}
}
