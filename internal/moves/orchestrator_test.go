package moves

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"binfleet-backend/internal/models"
)

type assignCall struct {
	moveID, target string
	after, pos     *string
}

type fakeGateway struct {
	mu          sync.Mutex
	failCreate  map[string]error
	failAssign  map[string]error
	created     []models.CreateBinMoveRequest
	userCalls   []assignCall
	shiftCalls  []assignCall
	inFlight    int
	maxInFlight int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failCreate: map[string]error{}, failAssign: map[string]error{}}
}

func (g *fakeGateway) enter() {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	g.mu.Unlock()
	time.Sleep(2 * time.Millisecond)
}

func (g *fakeGateway) leave() {
	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
}

func (g *fakeGateway) CreateMoveRecord(ctx context.Context, req models.CreateBinMoveRequest) (string, error) {
	g.enter()
	defer g.leave()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, req)
	if err := g.failCreate[req.BinID]; err != nil {
		return "", err
	}
	return "move-" + req.BinID, nil
}

func (g *fakeGateway) AssignToUser(ctx context.Context, moveID, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.userCalls = append(g.userCalls, assignCall{moveID: moveID, target: userID})
	return g.failAssign[moveID]
}

func (g *fakeGateway) AssignToShift(ctx context.Context, moveID, shiftID string, after, pos *string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shiftCalls = append(g.shiftCalls, assignCall{moveID: moveID, target: shiftID, after: after, pos: pos})
	return g.failAssign[moveID]
}

func (g *fakeGateway) assignCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.userCalls) + len(g.shiftCalls)
}

func storeConfigs(ids []string, sel AssignmentSelection) map[string]MoveConfig {
	out := make(map[string]MoveConfig, len(ids))
	for _, id := range ids {
		out[id] = MoveConfig{MoveType: MoveTypeStore, ScheduledDate: time.Unix(1_700_000_000, 0), Assignment: sel}
	}
	return out
}

func TestExecuteIsolatesCreationFailure(t *testing.T) {
	ids := []string{"b1", "b2", "b3", "b4", "b5"}
	gw := newFakeGateway()
	gw.failCreate["b3"] = fmt.Errorf("%w: bin b3 is already pending a move", ErrValidation)

	o := NewOrchestrator(gw, 4, zerolog.Nop())
	res, err := o.Execute(context.Background(), bins(ids...), storeConfigs(ids, ToUser("driver-1")))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(res.Created) != 4 {
		t.Fatalf("expected 4 created, got %v", res.Created)
	}
	if len(res.CreationFailures) != 1 || res.CreationFailures[0].BinID != "b3" {
		t.Fatalf("expected one creation failure for b3, got %+v", res.CreationFailures)
	}
	if !errors.Is(res.CreationFailures[0].Err, ErrValidation) {
		t.Fatalf("creation failure should keep its validation error: %v", res.CreationFailures[0].Err)
	}
	for _, c := range gw.userCalls {
		if c.moveID == "move-b3" {
			t.Fatalf("assignment attempted for failed bin b3")
		}
	}
	if len(gw.userCalls) != 4 || len(res.AssignmentFailures) != 0 {
		t.Fatalf("expected 4 assignment calls, got %d (failures %+v)", len(gw.userCalls), res.AssignmentFailures)
	}
	want := []string{"move-b1", "move-b2", "move-b4", "move-b5"}
	for i, id := range want {
		if res.Created[i] != id {
			t.Fatalf("created not in input order: %v", res.Created)
		}
	}
}

func TestExecuteUnassignedMakesNoAssignmentCalls(t *testing.T) {
	ids := []string{"x", "y", "z"}
	gw := newFakeGateway()

	res, err := NewOrchestrator(gw, 0, zerolog.Nop()).Execute(context.Background(), bins(ids...), storeConfigs(ids, Unassigned()))
	if err != nil {
		t.Fatal(err)
	}
	if gw.assignCalls() != 0 {
		t.Fatalf("expected no assignment calls, got %d", gw.assignCalls())
	}
	if len(res.Created) != 3 || res.HasFailures() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecuteEmptyBatch(t *testing.T) {
	gw := newFakeGateway()
	_, err := NewOrchestrator(gw, 2, zerolog.Nop()).Execute(context.Background(), nil, nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("err = %v, want ErrEmptyBatch", err)
	}
	if len(gw.created) != 0 {
		t.Fatalf("gateway called for empty batch")
	}
}

func TestExecuteAssignmentFailuresAreReportedNotRolledBack(t *testing.T) {
	ids := []string{"a", "b", "c"}
	configs := storeConfigs(ids, ToActiveShift("shift-1", "bin-7"))
	cfg := configs["c"]
	cfg.Assignment = ToUser("")
	configs["c"] = cfg

	gw := newFakeGateway()
	gw.failAssign["move-b"] = errors.New("connection reset")

	res, err := NewOrchestrator(gw, 2, zerolog.Nop()).Execute(context.Background(), bins(ids...), configs)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 3 {
		t.Fatalf("all three records should stay created, got %v", res.Created)
	}
	if len(res.AssignmentFailures) != 2 {
		t.Fatalf("expected 2 assignment failures, got %+v", res.AssignmentFailures)
	}
	byBin := map[string]error{}
	for _, f := range res.AssignmentFailures {
		byBin[f.BinID] = f.Err
	}
	if !errors.Is(byBin["b"], ErrTransport) {
		t.Fatalf("b should fail with a transport error, got %v", byBin["b"])
	}
	if !errors.Is(byBin["c"], ErrMissingTarget) {
		t.Fatalf("c should fail with missing target, got %v", byBin["c"])
	}
	if len(gw.shiftCalls) != 2 {
		t.Fatalf("expected 2 shift calls, got %d", len(gw.shiftCalls))
	}
	for _, c := range gw.shiftCalls {
		if c.after == nil || *c.after != "bin-7" || c.pos != nil {
			t.Fatalf("unexpected shift payload %+v", c)
		}
	}
	if got := res.FailedBinIDs(); len(got) != 2 {
		t.Fatalf("FailedBinIDs = %v", got)
	}
	if len(res.Assigned) != 1 || res.Assigned[0] != "a" {
		t.Fatalf("Assigned = %v", res.Assigned)
	}
}

func TestExecuteRelocationPayload(t *testing.T) {
	lat, lng := 32.9, -96.7
	configs := map[string]MoveConfig{
		"r": {
			MoveType:      MoveTypeRelocation,
			ScheduledDate: time.Unix(1_700_000_000, 0),
			Destination:   Destination{Street: "9 Pine Rd", City: "Frisco", Zip: "75034", Latitude: &lat, Longitude: &lng},
			Assignment:    ToFutureShift("shift-2", ""),
		},
		"s": {
			MoveType:      MoveTypeStore,
			ScheduledDate: time.Unix(1_700_000_000, 0),
			Destination:   Destination{Street: "ignored", Latitude: &lat, Longitude: &lng},
		},
		"bad": {MoveType: MoveTypeRelocation, ScheduledDate: time.Unix(1_700_000_000, 0)},
	}
	gw := newFakeGateway()

	res, err := NewOrchestrator(gw, 1, zerolog.Nop()).Execute(context.Background(), bins("r", "s", "bad", "unconfigured"), configs)
	if err != nil {
		t.Fatal(err)
	}

	if len(gw.created) != 2 {
		t.Fatalf("invalid configs must not reach the gateway, got %d calls", len(gw.created))
	}
	for _, req := range gw.created {
		if req.ScheduledDate != 1_700_000_000 {
			t.Fatalf("scheduled date not in unix seconds: %d", req.ScheduledDate)
		}
		switch req.BinID {
		case "r":
			if req.MoveType != "relocation" || *req.NewLatitude != lat || *req.NewStreet != "9 Pine Rd" || *req.NewZip != "75034" {
				t.Fatalf("bad relocation payload %+v", req)
			}
		case "s":
			if req.MoveType != "store" || req.NewLatitude != nil || req.NewStreet != nil {
				t.Fatalf("store payload must not carry a destination: %+v", req)
			}
		}
	}

	if len(res.CreationFailures) != 2 {
		t.Fatalf("expected 2 creation failures, got %+v", res.CreationFailures)
	}
	if !errors.Is(res.CreationFailures[0].Err, ErrValidation) || res.CreationFailures[0].BinID != "bad" {
		t.Fatalf("unexpected failure %+v", res.CreationFailures[0])
	}
	if !errors.Is(res.CreationFailures[1].Err, ErrNotConfigured) {
		t.Fatalf("unexpected failure %+v", res.CreationFailures[1])
	}
	if len(gw.shiftCalls) != 1 || *gw.shiftCalls[0].pos != InsertEnd {
		t.Fatalf("future shift should default to end: %+v", gw.shiftCalls)
	}
}

func TestExecuteRespectsConcurrencyLimit(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("bin-%02d", i)
	}
	gw := newFakeGateway()

	if _, err := NewOrchestrator(gw, 3, zerolog.Nop()).Execute(context.Background(), bins(ids...), storeConfigs(ids, Unassigned())); err != nil {
		t.Fatal(err)
	}
	if gw.maxInFlight > 3 {
		t.Fatalf("max in flight %d exceeds limit 3", gw.maxInFlight)
	}
	if gw.maxInFlight < 2 {
		t.Fatalf("creations did not run concurrently (max in flight %d)", gw.maxInFlight)
	}
}

func TestExecuteSurvivesCancelledContext(t *testing.T) {
	ids := []string{"a", "b"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := newFakeGateway()
	res, err := NewOrchestrator(gw, 2, zerolog.Nop()).Execute(ctx, bins(ids...), storeConfigs(ids, Unassigned()))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("cancelled caller should not abort in-flight creations: %+v", res)
	}
}

func TestExecuteDeduplicatesBins(t *testing.T) {
	gw := newFakeGateway()
	res, err := NewOrchestrator(gw, 2, zerolog.Nop()).Execute(context.Background(), bins("a", "a"), storeConfigs([]string{"a"}, Unassigned()))
	if err != nil {
		t.Fatal(err)
	}
	if len(gw.created) != 1 || len(res.Created) != 1 {
		t.Fatalf("duplicate bin created twice: %+v", res)
	}
}

func TestValidateConfigs(t *testing.T) {
	ids := []string{"ok", "no-target", "no-coords"}
	configs := storeConfigs(ids, Unassigned())
	c := configs["no-target"]
	c.Assignment = ToActiveShift("", "")
	configs["no-target"] = c
	c = configs["no-coords"]
	c.MoveType = MoveTypeRelocation
	configs["no-coords"] = c

	failures := ValidateConfigs(bins(append(ids, "missing")...), configs)
	if len(failures) != 3 {
		t.Fatalf("expected 3 failures, got %+v", failures)
	}
	if failures[0].BinID != "no-target" || !errors.Is(failures[0].Err, ErrMissingTarget) {
		t.Fatalf("unexpected %+v", failures[0])
	}
	if failures[2].BinID != "missing" || !errors.Is(failures[2].Err, ErrNotConfigured) {
		t.Fatalf("unexpected %+v", failures[2])
	}
}
