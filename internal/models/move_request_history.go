package models

import "time"

// MoveRequestHistory represents an audit log entry for a move request
type MoveRequestHistory struct {
	ID            string `json:"id" db:"id"`
	MoveRequestID string `json:"move_request_id" db:"move_request_id"`

	ActionType string  `json:"action_type" db:"action_type"` // 'created', 'assigned'
	ActorID    string  `json:"actor_id" db:"actor_id"`
	ActorName  string  `json:"actor_name" db:"actor_name"`
	ActorRole  *string `json:"actor_role,omitempty" db:"actor_role"`

	NewAssignmentType   *string `json:"new_assignment_type,omitempty" db:"new_assignment_type"`
	NewAssignedUserID   *string `json:"new_assigned_user_id,omitempty" db:"new_assigned_user_id"`
	NewAssignedUserName *string `json:"new_assigned_user_name,omitempty" db:"new_assigned_user_name"`
	NewAssignedShiftID  *string `json:"new_assigned_shift_id,omitempty" db:"new_assigned_shift_id"`

	Notes     *string `json:"notes,omitempty" db:"notes"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// MoveRequestHistoryResponse includes formatted timestamp and user-friendly display
type MoveRequestHistoryResponse struct {
	ID                  string  `json:"id"`
	MoveRequestID       string  `json:"move_request_id"`
	ActionType          string  `json:"action_type"`
	ActorID             string  `json:"actor_id"`
	ActorName           string  `json:"actor_name"`
	ActorRole           *string `json:"actor_role,omitempty"`
	NewAssignmentType   *string `json:"new_assignment_type,omitempty"`
	NewAssignedUserID   *string `json:"new_assigned_user_id,omitempty"`
	NewAssignedUserName *string `json:"new_assigned_user_name,omitempty"`
	NewAssignedShiftID  *string `json:"new_assigned_shift_id,omitempty"`
	Description         string  `json:"description"`
	Notes               *string `json:"notes,omitempty"`
	CreatedAtIso        string  `json:"created_at_iso"`
	CreatedAt           int64   `json:"created_at"`
}

// ToHistoryResponse converts MoveRequestHistory to MoveRequestHistoryResponse
func (h *MoveRequestHistory) ToHistoryResponse() MoveRequestHistoryResponse {
	return MoveRequestHistoryResponse{
		ID:                  h.ID,
		MoveRequestID:       h.MoveRequestID,
		ActionType:          h.ActionType,
		ActorID:             h.ActorID,
		ActorName:           h.ActorName,
		ActorRole:           h.ActorRole,
		NewAssignmentType:   h.NewAssignmentType,
		NewAssignedUserID:   h.NewAssignedUserID,
		NewAssignedUserName: h.NewAssignedUserName,
		NewAssignedShiftID:  h.NewAssignedShiftID,
		Description:         h.BuildDescription(),
		Notes:               h.Notes,
		CreatedAtIso:        time.Unix(h.CreatedAt, 0).Format(time.RFC3339),
		CreatedAt:           h.CreatedAt,
	}
}

// BuildDescription creates a human-readable description of the history event
func (h *MoveRequestHistory) BuildDescription() string {
	switch h.ActionType {
	case "created":
		if h.Notes != nil && *h.Notes != "" {
			return "Created move request (" + *h.Notes + ")"
		}
		return "Created move request"

	case "assigned":
		if h.NewAssignmentType != nil && *h.NewAssignmentType == AssignmentTypeShift && h.NewAssignedUserName != nil {
			return "Assigned to " + *h.NewAssignedUserName + "'s shift (added to their route)"
		} else if h.NewAssignmentType != nil && *h.NewAssignmentType == AssignmentTypeManual && h.NewAssignedUserName != nil {
			return "Manually assigned to " + *h.NewAssignedUserName + " (one-off task, not part of shift route)"
		} else if h.NewAssignedUserName != nil {
			return "Assigned to " + *h.NewAssignedUserName
		}
		return "Assigned"

	default:
		return "Modified"
	}
}
