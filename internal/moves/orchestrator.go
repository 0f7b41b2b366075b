package moves

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"binfleet-backend/internal/models"
)

// DefaultConcurrency caps in-flight gateway calls per phase
const DefaultConcurrency = 8

var validate = validator.New()

// Gateway is the persistence side of a batch: it creates move records and assigns them
type Gateway interface {
	CreateMoveRecord(ctx context.Context, req models.CreateBinMoveRequest) (string, error)
	AssignToUser(ctx context.Context, moveID, userID string) error
	AssignToShift(ctx context.Context, moveID, shiftID string, insertAfterBinID, insertPosition *string) error
}

// BinFailure is one bin that failed a phase
type BinFailure struct {
	BinID string `json:"bin_id"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

func newFailure(binID string, err error) BinFailure {
	return BinFailure{BinID: binID, Error: err.Error(), Err: err}
}

// BatchResult reports one Execute run. Lists follow the order of the input bins.
type BatchResult struct {
	Created            []string          `json:"created"`
	MoveIDs            map[string]string `json:"move_ids"`
	Assigned           []string          `json:"assigned"`
	CreationFailures   []BinFailure      `json:"creation_failures"`
	AssignmentFailures []BinFailure      `json:"assignment_failures"`
}

// HasFailures is true when any bin failed either phase
func (r BatchResult) HasFailures() bool {
	return len(r.CreationFailures) > 0 || len(r.AssignmentFailures) > 0
}

// FailedBinIDs lists every bin that needs a retry, creation failures first
func (r BatchResult) FailedBinIDs() []string {
	ids := make([]string, 0, len(r.CreationFailures)+len(r.AssignmentFailures))
	for _, f := range r.CreationFailures {
		ids = append(ids, f.BinID)
	}
	for _, f := range r.AssignmentFailures {
		ids = append(ids, f.BinID)
	}
	return ids
}

// Orchestrator runs the create-then-assign batch
type Orchestrator struct {
	gateway     Gateway
	concurrency int
	log         zerolog.Logger
}

func NewOrchestrator(gateway Gateway, concurrency int, log zerolog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		gateway:     gateway,
		concurrency: concurrency,
		log:         log.With().Str("component", "bulk_move").Logger(),
	}
}

// BuildCreateRequest turns a bin's config into its creation payload.
// Destination fields are only sent for relocations, which must carry coordinates.
func BuildCreateRequest(binID string, cfg MoveConfig) (models.CreateBinMoveRequest, error) {
	if !cfg.MoveType.Valid() {
		return models.CreateBinMoveRequest{}, fmt.Errorf("%w: unknown move type %q", ErrValidation, cfg.MoveType)
	}
	if cfg.ScheduledDate.IsZero() {
		return models.CreateBinMoveRequest{}, fmt.Errorf("%w: scheduled date is required", ErrValidation)
	}

	req := models.CreateBinMoveRequest{
		BinID:         binID,
		ScheduledDate: cfg.ScheduledDate.Unix(),
		MoveType:      string(cfg.MoveType),
		Reason:        optional(cfg.Reason),
		Notes:         optional(cfg.Notes),
	}

	if cfg.MoveType == MoveTypeRelocation {
		d := cfg.Destination
		if !d.HasCoords() {
			return models.CreateBinMoveRequest{}, fmt.Errorf("%w: relocation needs destination coordinates", ErrValidation)
		}
		req.NewLatitude = d.Latitude
		req.NewLongitude = d.Longitude
		req.NewStreet = optional(d.Street)
		req.NewCity = optional(d.City)
		req.NewZip = optional(d.Zip)
	}

	if err := validate.Struct(req); err != nil {
		return models.CreateBinMoveRequest{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return req, nil
}

// ValidateConfigs is the pre-flight check callers run before Execute. It reports
// every bin whose config could not be submitted or whose assignment selection
// would be rejected.
func ValidateConfigs(bins []models.Bin, configs map[string]MoveConfig) []BinFailure {
	var failures []BinFailure
	for _, b := range bins {
		cfg, ok := configs[b.ID]
		if !ok {
			failures = append(failures, newFailure(b.ID, ErrNotConfigured))
			continue
		}
		if _, err := BuildCreateRequest(b.ID, cfg); err != nil {
			failures = append(failures, newFailure(b.ID, err))
			continue
		}
		if _, err := ResolveAssignment(cfg.Assignment); err != nil {
			failures = append(failures, newFailure(b.ID, err))
		}
	}
	return failures
}

type slot struct {
	binID     string
	moveID    string
	createErr error
	assignErr error
	assigned  bool
}

// Execute creates a move record for every bin, then assigns each created record.
// Calls within a phase run concurrently and fail independently. Assignment for a
// bin only starts after its creation settled, and created records are never
// rolled back. Only an empty bin list is an error; everything else is reported
// per bin in the result.
func (o *Orchestrator) Execute(ctx context.Context, bins []models.Bin, configs map[string]MoveConfig) (BatchResult, error) {
	if len(bins) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}

	// in-flight calls finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	slots := make([]*slot, 0, len(bins))
	seen := make(map[string]bool, len(bins))
	for _, b := range bins {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		slots = append(slots, &slot{binID: b.ID})
	}

	o.log.Info().Int("bins", len(slots)).Msg("📦 Starting bulk move")

	o.runPhase(func(s *slot) {
		o.create(ctx, s, configs)
	}, slots)

	o.runPhase(func(s *slot) {
		if s.createErr != nil {
			return
		}
		o.assign(ctx, s, configs[s.binID])
	}, slots)

	result := collect(slots)
	o.log.Info().
		Int("created", len(result.Created)).
		Int("assigned", len(result.Assigned)).
		Int("creation_failures", len(result.CreationFailures)).
		Int("assignment_failures", len(result.AssignmentFailures)).
		Msg("✅ Bulk move finished")
	return result, nil
}

// runPhase runs fn for every slot and waits for all of them.
// fn never returns an error, so one slot can't cancel the others.
func (o *Orchestrator) runPhase(fn func(s *slot), slots []*slot) {
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for _, s := range slots {
		g.Go(func() error {
			fn(s)
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) create(ctx context.Context, s *slot, configs map[string]MoveConfig) {
	cfg, ok := configs[s.binID]
	if !ok {
		s.createErr = fmt.Errorf("%w: %s", ErrNotConfigured, s.binID)
		return
	}
	req, err := BuildCreateRequest(s.binID, cfg)
	if err != nil {
		s.createErr = err
		o.log.Warn().Err(err).Str("bin_id", s.binID).Str("phase", "create").Msg("Move config rejected")
		return
	}

	moveID, err := o.gateway.CreateMoveRecord(ctx, req)
	if err != nil {
		s.createErr = classify(err)
		o.log.Error().Err(err).Str("bin_id", s.binID).Str("phase", "create").Msg("❌ Failed to create move request")
		return
	}
	s.moveID = moveID
	o.log.Debug().Str("bin_id", s.binID).Str("move_id", moveID).Str("phase", "create").Msg("Move request created")
}

func (o *Orchestrator) assign(ctx context.Context, s *slot, cfg MoveConfig) {
	payload, err := ResolveAssignment(cfg.Assignment)
	if err != nil {
		s.assignErr = err
		return
	}

	switch payload.Kind {
	case PayloadNone:
		return
	case PayloadUser:
		err = o.gateway.AssignToUser(ctx, s.moveID, payload.TargetID)
	case PayloadShift:
		err = o.gateway.AssignToShift(ctx, s.moveID, payload.TargetID, payload.InsertAfterBinID, payload.InsertPosition)
	}
	if err != nil {
		s.assignErr = classify(err)
		o.log.Error().Err(err).Str("bin_id", s.binID).Str("move_id", s.moveID).Str("phase", "assign").Msg("❌ Failed to assign move request")
		return
	}
	s.assigned = true
}

func collect(slots []*slot) BatchResult {
	result := BatchResult{
		Created:            []string{},
		MoveIDs:            make(map[string]string),
		Assigned:           []string{},
		CreationFailures:   []BinFailure{},
		AssignmentFailures: []BinFailure{},
	}
	for _, s := range slots {
		if s.createErr != nil {
			result.CreationFailures = append(result.CreationFailures, newFailure(s.binID, s.createErr))
			continue
		}
		result.Created = append(result.Created, s.moveID)
		result.MoveIDs[s.binID] = s.moveID
		if s.assignErr != nil {
			result.AssignmentFailures = append(result.AssignmentFailures, newFailure(s.binID, s.assignErr))
		}
		if s.assigned {
			result.Assigned = append(result.Assigned, s.binID)
		}
	}
	return result
}

// classify tags gateway errors that are not validation errors as transport errors
func classify(err error) error {
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
