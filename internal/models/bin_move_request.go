package models

import "time"

// Move types accepted on bin_move_requests.move_type
const (
	MoveTypeStore      = "store"
	MoveTypeRelocation = "relocation"
)

// Assignment types stored on bin_move_requests.assignment_type
const (
	AssignmentTypeShift  = "shift"
	AssignmentTypeManual = "manual"
)

type BinMoveRequest struct {
	ID            string `json:"id" db:"id"`
	BinID         string `json:"bin_id" db:"bin_id"`
	ScheduledDate int64  `json:"scheduled_date" db:"scheduled_date"` // Unix timestamp
	Urgency       string `json:"urgency" db:"urgency"`               // 'urgent' or 'scheduled'
	RequestedBy   string `json:"requested_by" db:"requested_by"`     // User ID
	Status        string `json:"status" db:"status"`                 // 'pending', 'assigned', 'in_progress', 'completed', 'cancelled'

	// Original location
	OriginalLatitude  float64 `json:"original_latitude" db:"original_latitude"`
	OriginalLongitude float64 `json:"original_longitude" db:"original_longitude"`
	OriginalAddress   string  `json:"original_address" db:"original_address"`

	// New location (nil for store moves)
	NewLatitude  *float64 `json:"new_latitude,omitempty" db:"new_latitude"`
	NewLongitude *float64 `json:"new_longitude,omitempty" db:"new_longitude"`
	NewAddress   *string  `json:"new_address,omitempty" db:"new_address"`

	MoveType string  `json:"move_type" db:"move_type"` // 'store' or 'relocation'
	Reason   *string `json:"reason,omitempty" db:"reason"`
	Notes    *string `json:"notes,omitempty" db:"notes"`

	// Assignment (shift-based or manual), NULL type for unassigned
	AssignmentType  *string `json:"assignment_type,omitempty" db:"assignment_type"`
	AssignedShiftID *string `json:"assigned_shift_id,omitempty" db:"assigned_shift_id"`
	AssignedUserID  *string `json:"assigned_user_id,omitempty" db:"assigned_user_id"`
	CompletedAt     *int64  `json:"completed_at,omitempty" db:"completed_at"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// BinMoveRequestResponse includes ISO formatted timestamps for client
type BinMoveRequestResponse struct {
	ID               string `json:"id"`
	BinID            string `json:"bin_id"`
	ScheduledDate    int64  `json:"scheduled_date"`
	ScheduledDateIso string `json:"scheduled_date_iso"`
	Urgency          string `json:"urgency"`
	RequestedBy      string `json:"requested_by"`
	Status           string `json:"status"`

	OriginalLatitude  float64 `json:"original_latitude"`
	OriginalLongitude float64 `json:"original_longitude"`
	OriginalAddress   string  `json:"original_address"`

	NewStreet    *string  `json:"new_street,omitempty"`
	NewCity      *string  `json:"new_city,omitempty"`
	NewZip       *string  `json:"new_zip,omitempty"`
	NewLatitude  *float64 `json:"new_latitude,omitempty"`
	NewLongitude *float64 `json:"new_longitude,omitempty"`
	NewAddress   *string  `json:"new_address,omitempty"`

	MoveType string  `json:"move_type"`
	Reason   *string `json:"reason,omitempty"`
	Notes    *string `json:"notes,omitempty"`

	AssignmentType  *string `json:"assignment_type,omitempty"`
	AssignedShiftID *string `json:"assigned_shift_id,omitempty"`
	AssignedUserID  *string `json:"assigned_user_id,omitempty"`
	CompletedAtIso  *string `json:"completed_at_iso,omitempty"`

	CreatedAtIso string `json:"created_at_iso"`
	UpdatedAtIso string `json:"updated_at_iso"`
}

// CreateBinMoveRequest is the creation payload for one move record.
// Destination fields are only set for relocation moves.
type CreateBinMoveRequest struct {
	BinID         string `json:"bin_id" validate:"required"`
	ScheduledDate int64  `json:"scheduled_date" validate:"required,gt=0"` // Unix timestamp
	MoveType      string `json:"move_type" validate:"required,oneof=store relocation"`

	NewLatitude  *float64 `json:"new_latitude,omitempty"`
	NewLongitude *float64 `json:"new_longitude,omitempty"`
	NewStreet    *string  `json:"new_street,omitempty"`
	NewCity      *string  `json:"new_city,omitempty"`
	NewZip       *string  `json:"new_zip,omitempty"`

	Reason *string `json:"reason,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Urgency derives 'urgent' (< 24h away) or 'scheduled' from a scheduled date
func Urgency(scheduledDate, now int64) string {
	hoursUntil := float64(scheduledDate-now) / 3600.0
	if hoursUntil < 24 {
		return "urgent"
	}
	return "scheduled"
}

// ToBinMoveRequestResponse converts BinMoveRequest to BinMoveRequestResponse
func (bmr *BinMoveRequest) ToBinMoveRequestResponse() BinMoveRequestResponse {
	resp := BinMoveRequestResponse{
		ID:                bmr.ID,
		BinID:             bmr.BinID,
		ScheduledDate:     bmr.ScheduledDate,
		ScheduledDateIso:  time.Unix(bmr.ScheduledDate, 0).Format(time.RFC3339),
		Urgency:           bmr.Urgency,
		RequestedBy:       bmr.RequestedBy,
		Status:            bmr.Status,
		OriginalLatitude:  bmr.OriginalLatitude,
		OriginalLongitude: bmr.OriginalLongitude,
		OriginalAddress:   bmr.OriginalAddress,
		NewLatitude:       bmr.NewLatitude,
		NewLongitude:      bmr.NewLongitude,
		NewAddress:        bmr.NewAddress,
		MoveType:          bmr.MoveType,
		Reason:            bmr.Reason,
		Notes:             bmr.Notes,
		AssignmentType:    bmr.AssignmentType,
		AssignedShiftID:   bmr.AssignedShiftID,
		AssignedUserID:    bmr.AssignedUserID,
		CreatedAtIso:      time.Unix(bmr.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAtIso:      time.Unix(bmr.UpdatedAt, 0).Format(time.RFC3339),
	}

	if bmr.NewAddress != nil {
		if street, city, zip, ok := ParseAddress(*bmr.NewAddress); ok {
			resp.NewStreet = &street
			resp.NewCity = &city
			resp.NewZip = &zip
		}
	}

	if bmr.CompletedAt != nil {
		iso := time.Unix(*bmr.CompletedAt, 0).Format(time.RFC3339)
		resp.CompletedAtIso = &iso
	}

	return resp
}
