package helpers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/models"
)

// Actor is who a history entry is attributed to
type Actor struct {
	ID   string
	Name string
	Role string
}

// LogMoveRequestCreated logs when a move request is created
func LogMoveRequestCreated(ctx context.Context, db sqlx.ExecerContext, moveRequestID string, actor Actor, notes *string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO move_request_history (
			id, move_request_id, action_type, actor_id, actor_name, actor_role, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.New().String(),
		moveRequestID,
		"created",
		actor.ID,
		actor.Name,
		actor.Role,
		notes,
		time.Now().Unix(),
	)
	if err != nil {
		log.Error().Err(err).Str("move_id", moveRequestID).Msg("[HISTORY] Failed to log 'created' action")
	}
	return err
}

// LogMoveRequestAssigned logs when a move request is assigned
func LogMoveRequestAssigned(ctx context.Context, db sqlx.ExecerContext, moveRequestID string, actor Actor,
	assignmentType string, assignedUserID, assignedUserName, assignedShiftID *string) error {

	_, err := db.ExecContext(ctx, `
		INSERT INTO move_request_history (
			id, move_request_id, action_type, actor_id, actor_name, actor_role,
			new_assignment_type, new_assigned_user_id, new_assigned_user_name, new_assigned_shift_id,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.New().String(),
		moveRequestID,
		"assigned",
		actor.ID,
		actor.Name,
		actor.Role,
		assignmentType,
		assignedUserID,
		assignedUserName,
		assignedShiftID,
		time.Now().Unix(),
	)
	if err != nil {
		log.Error().Err(err).Str("move_id", moveRequestID).Msg("[HISTORY] Failed to log 'assigned' action")
	}
	return err
}

// GetMoveRequestHistory retrieves the full history for a move request
func GetMoveRequestHistory(ctx context.Context, db sqlx.QueryerContext, moveRequestID string) ([]models.MoveRequestHistoryResponse, error) {
	var history []models.MoveRequestHistory
	err := sqlx.SelectContext(ctx, db, &history, `
		SELECT
			id, move_request_id, action_type, actor_id, actor_name, actor_role,
			new_assignment_type, new_assigned_user_id, new_assigned_user_name, new_assigned_shift_id,
			notes, created_at
		FROM move_request_history
		WHERE move_request_id = $1
		ORDER BY created_at ASC
	`, moveRequestID)
	if err != nil {
		log.Error().Err(err).Str("move_id", moveRequestID).Msg("[HISTORY] Failed to fetch history")
		return nil, err
	}

	responses := make([]models.MoveRequestHistoryResponse, len(history))
	for i, h := range history {
		responses[i] = h.ToHistoryResponse()
	}
	return responses, nil
}
