package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"binfleet-backend/internal/models"
)

type ShiftRepository struct {
	db *sqlx.DB
}

func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListAssignableShifts returns shifts a move can still be added to:
// in-progress shifts first, then ready ones
func (r *ShiftRepository) ListAssignableShifts(ctx context.Context) ([]models.AssignableShift, error) {
	shifts := []models.AssignableShift{}
	err := r.db.SelectContext(ctx, &shifts, `
		SELECT s.id, s.driver_id, u.name AS driver_name, s.status, s.total_bins, s.completed_bins
		FROM shifts s
		JOIN users u ON u.id = s.driver_id
		WHERE s.status IN ('active', 'paused', 'ready')
		ORDER BY
			CASE s.status
				WHEN 'active' THEN 1
				WHEN 'paused' THEN 2
				ELSE 3
			END ASC,
			s.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list assignable shifts: %w", err)
	}
	return shifts, nil
}

// ListStops returns a shift's route in sequence order
func (r *ShiftRepository) ListStops(ctx context.Context, shiftID string) ([]models.ShiftBin, error) {
	return listStops(ctx, r.db, shiftID)
}

func listStops(ctx context.Context, q sqlx.QueryerContext, shiftID string) ([]models.ShiftBin, error) {
	stops := []models.ShiftBin{}
	err := sqlx.SelectContext(ctx, q, &stops, `
		SELECT id, shift_id, bin_id, sequence_order, is_completed, stop_type, move_request_id
		FROM shift_bins
		WHERE shift_id = $1
		ORDER BY sequence_order ASC
	`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list shift stops: %w", err)
	}
	return stops, nil
}
