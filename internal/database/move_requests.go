package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/models"
)

const moveRequestColumns = `id, bin_id, scheduled_date, urgency, requested_by, status,
	original_latitude, original_longitude, original_address,
	new_latitude, new_longitude, new_address, move_type, reason, notes,
	assignment_type, assigned_shift_id, assigned_user_id, completed_at, created_at, updated_at`

type MoveRequestRepository struct {
	db *sqlx.DB
}

func NewMoveRequestRepository(db *sqlx.DB) *MoveRequestRepository {
	return &MoveRequestRepository{db: db}
}

func (r *MoveRequestRepository) GetMoveRequest(ctx context.Context, id string) (*models.BinMoveRequest, error) {
	var move models.BinMoveRequest
	err := r.db.GetContext(ctx, &move, `SELECT `+moveRequestColumns+` FROM bin_move_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get move request: %w", err)
	}
	return &move, nil
}

// ListByBin returns every move request for a bin, newest first
func (r *MoveRequestRepository) ListByBin(ctx context.Context, binID string) ([]models.BinMoveRequest, error) {
	moves := []models.BinMoveRequest{}
	err := r.db.SelectContext(ctx, &moves, `
		SELECT `+moveRequestColumns+` FROM bin_move_requests
		WHERE bin_id = $1
		ORDER BY created_at DESC
	`, binID)
	if err != nil {
		return nil, fmt.Errorf("list move requests: %w", err)
	}
	return moves, nil
}

// Insert creates a pending move request for the bin and marks the bin as
// pending a move. The bin's current coordinates become the move's origin.
func (r *MoveRequestRepository) Insert(ctx context.Context, req models.CreateBinMoveRequest, requestedBy string) (*models.BinMoveRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var bin models.Bin
	err = tx.GetContext(ctx, &bin, `SELECT `+binColumns+` FROM bins WHERE id = $1 FOR UPDATE`, req.BinID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bin: %w", err)
	}
	if !bin.HasLocation() {
		return nil, ErrBinHasNoLocation
	}

	now := time.Now().Unix()
	move := models.BinMoveRequest{
		ID:                uuid.New().String(),
		BinID:             bin.ID,
		ScheduledDate:     req.ScheduledDate,
		Urgency:           models.Urgency(req.ScheduledDate, now),
		RequestedBy:       requestedBy,
		Status:            "pending",
		OriginalLatitude:  *bin.Latitude,
		OriginalLongitude: *bin.Longitude,
		OriginalAddress:   bin.Address(),
		NewLatitude:       req.NewLatitude,
		NewLongitude:      req.NewLongitude,
		MoveType:          req.MoveType,
		Reason:            req.Reason,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.MoveType == models.MoveTypeRelocation && req.NewStreet != nil && req.NewCity != nil && req.NewZip != nil {
		addr := models.FormatAddress(*req.NewStreet, *req.NewCity, *req.NewZip)
		move.NewAddress = &addr
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO bin_move_requests (
			id, bin_id, scheduled_date, urgency, requested_by, status,
			original_latitude, original_longitude, original_address,
			new_latitude, new_longitude, new_address, move_type, reason, notes,
			created_at, updated_at
		) VALUES (
			:id, :bin_id, :scheduled_date, :urgency, :requested_by, :status,
			:original_latitude, :original_longitude, :original_address,
			:new_latitude, :new_longitude, :new_address, :move_type, :reason, :notes,
			:created_at, :updated_at
		)
	`, move)
	if err != nil {
		return nil, fmt.Errorf("insert move request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bins SET status = $1, move_requested = TRUE, updated_at = $2 WHERE id = $3
	`, models.BinStatusPendingMove, now, bin.ID)
	if err != nil {
		return nil, fmt.Errorf("mark bin pending move: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("move_id", move.ID).Int("bin_number", bin.BinNumber).Str("urgency", move.Urgency).
		Msg("📦 Move request created")
	return &move, nil
}

// AssignToUser hands a pending move to a user as a one-off task outside any shift
func (r *MoveRequestRepository) AssignToUser(ctx context.Context, moveID, userID string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE bin_move_requests
		SET assignment_type = $1, assigned_user_id = $2, assigned_shift_id = NULL,
		    status = 'assigned', updated_at = $3
		WHERE id = $4 AND status = 'pending'
	`, models.AssignmentTypeManual, userID, time.Now().Unix(), moveID)
	if err != nil {
		return nil, fmt.Errorf("assign move to user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetMoveRequest(ctx, moveID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: move %s is not pending", ErrInvalidState, moveID)
	}

	log.Info().Str("move_id", moveID).Str("user", user.Name).Msg("👤 Move assigned to user")
	return &user, nil
}

// ShiftAssignment describes where a move landed in a shift's route
type ShiftAssignment struct {
	Shift         models.Shift
	DriverName    string
	SequenceOrder int
}

// InsertIntoShift adds the move's bin to a shift's route as a stop and marks the
// move assigned to that shift. Stops at or after the insert point move down by one.
func (r *MoveRequestRepository) InsertIntoShift(ctx context.Context, moveID, shiftID string, insertAfterBinID, insertPosition *string) (*ShiftAssignment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var shift models.Shift
	err = tx.GetContext(ctx, &shift, `
		SELECT id, driver_id, status, start_time, end_time, total_bins, completed_bins, created_at, updated_at
		FROM shifts WHERE id = $1 FOR UPDATE
	`, shiftID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: shift %s", ErrNotFound, shiftID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if !shift.IsInProgress() && !shift.IsFuture() {
		return nil, fmt.Errorf("%w: shift %s is %s", ErrInvalidState, shiftID, shift.Status)
	}

	var move models.BinMoveRequest
	err = tx.GetContext(ctx, &move, `SELECT `+moveRequestColumns+` FROM bin_move_requests WHERE id = $1 FOR UPDATE`, moveID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: move %s", ErrNotFound, moveID)
	}
	if err != nil {
		return nil, fmt.Errorf("get move request: %w", err)
	}
	if move.Status != "pending" {
		return nil, fmt.Errorf("%w: move %s is %s", ErrInvalidState, moveID, move.Status)
	}

	stops, err := listStops(ctx, tx, shift.ID)
	if err != nil {
		return nil, err
	}

	seq, err := InsertSequence(shift, stops, insertAfterBinID, insertPosition)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()

	_, err = tx.ExecContext(ctx, `
		UPDATE shift_bins
		SET sequence_order = sequence_order + 1
		WHERE shift_id = $1 AND sequence_order >= $2
	`, shift.ID, seq)
	if err != nil {
		return nil, fmt.Errorf("failed to shift sequence order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shift_bins (shift_id, bin_id, sequence_order, is_completed, stop_type, move_request_id, created_at)
		VALUES ($1, $2, $3, 0, 'pickup', $4, $5)
	`, shift.ID, move.BinID, seq, move.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert move stop: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bin_move_requests
		SET assignment_type = $1, assigned_shift_id = $2, assigned_user_id = $3,
		    status = 'assigned', updated_at = $4
		WHERE id = $5
	`, models.AssignmentTypeShift, shift.ID, shift.DriverID, now, move.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update move request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE shifts SET total_bins = total_bins + 1, updated_at = $1 WHERE id = $2
	`, now, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}

	var driverName string
	if err := tx.GetContext(ctx, &driverName, `SELECT name FROM users WHERE id = $1`, shift.DriverID); err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("move_id", move.ID).Str("shift_id", shift.ID).Int("sequence", seq).
		Str("shift_status", string(shift.Status)).Msg("🚚 Move inserted into shift route")

	return &ShiftAssignment{Shift: shift, DriverName: driverName, SequenceOrder: seq}, nil
}

// InsertSequence picks the sequence_order a new stop takes in a route.
// Stops must be sorted by sequence_order.
//
// In-progress shift with insertAfterBinID: right after that stop.
// Ready shift with a position: first, or after the last stop.
// Otherwise: right after the driver's current stop (first uncompleted one),
// or at the end when everything is done.
func InsertSequence(shift models.Shift, stops []models.ShiftBin, insertAfterBinID, insertPosition *string) (int, error) {
	end := 1
	if len(stops) > 0 {
		end = stops[len(stops)-1].SequenceOrder + 1
	}

	if shift.IsInProgress() && insertAfterBinID != nil && *insertAfterBinID != "" {
		for _, s := range stops {
			if s.BinID == *insertAfterBinID {
				return s.SequenceOrder + 1, nil
			}
		}
		return 0, fmt.Errorf("%w: bin %s is not on shift %s", ErrNotFound, *insertAfterBinID, shift.ID)
	}

	if shift.IsFuture() && insertPosition != nil {
		if *insertPosition == "start" {
			return 1, nil
		}
		return end, nil
	}

	for _, s := range stops {
		if s.IsCompleted == 0 {
			return s.SequenceOrder + 1, nil
		}
	}
	return end, nil
}
