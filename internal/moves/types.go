// Package moves holds the per-bin move configuration for a scheduling session and
// the two-phase batch that turns it into assigned move requests.
package moves

import (
	"time"

	"binfleet-backend/internal/models"
)

type MoveType string

const (
	MoveTypeStore      MoveType = models.MoveTypeStore
	MoveTypeRelocation MoveType = models.MoveTypeRelocation
)

// Valid reports whether t is a known move type
func (t MoveType) Valid() bool {
	return t == MoveTypeStore || t == MoveTypeRelocation
}

// Destination is only meaningful for relocation moves
type Destination struct {
	Street    string   `json:"street"`
	City      string   `json:"city"`
	Zip       string   `json:"zip"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoords reports whether both coordinates are set
func (d Destination) HasCoords() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// MoveConfig is one bin's configuration in a scheduling session
type MoveConfig struct {
	MoveType      MoveType            `json:"move_type"`
	ScheduledDate time.Time           `json:"scheduled_date"`
	Destination   Destination         `json:"destination"`
	Reason        string              `json:"reason"`
	Notes         string              `json:"notes"`
	Assignment    AssignmentSelection `json:"assignment"`
}

// ConfigPatch is a partial update. Nil fields are left alone.
type ConfigPatch struct {
	MoveType      *MoveType            `json:"move_type,omitempty"`
	ScheduledDate *time.Time           `json:"scheduled_date,omitempty"`
	Destination   *Destination         `json:"destination,omitempty"`
	Reason        *string              `json:"reason,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	Assignment    *AssignmentSelection `json:"assignment,omitempty"`
}

func (p ConfigPatch) apply(cfg MoveConfig) MoveConfig {
	if p.MoveType != nil {
		cfg.MoveType = *p.MoveType
	}
	if p.ScheduledDate != nil {
		cfg.ScheduledDate = *p.ScheduledDate
	}
	if p.Destination != nil {
		cfg.Destination = *p.Destination
	}
	if p.Reason != nil {
		cfg.Reason = *p.Reason
	}
	if p.Notes != nil {
		cfg.Notes = *p.Notes
	}
	if p.Assignment != nil {
		cfg.Assignment = *p.Assignment
	}
	return cfg
}

type AssignmentKind string

const (
	AssignUnassigned  AssignmentKind = "unassigned"
	AssignUser        AssignmentKind = "user"
	AssignActiveShift AssignmentKind = "active_shift"
	AssignFutureShift AssignmentKind = "future_shift"
)

// Insert positions for future shifts
const (
	InsertStart = "start"
	InsertEnd   = "end"
)

// AssignmentSelection says who a move goes to once it is created.
// The zero value is unassigned.
type AssignmentSelection struct {
	Kind             AssignmentKind `json:"kind"`
	UserID           string         `json:"user_id,omitempty"`
	ShiftID          string         `json:"shift_id,omitempty"`
	InsertAfterBinID string         `json:"insert_after_bin_id,omitempty"`
	InsertPosition   string         `json:"insert_position,omitempty"`
}

func Unassigned() AssignmentSelection {
	return AssignmentSelection{Kind: AssignUnassigned}
}

func ToUser(userID string) AssignmentSelection {
	return AssignmentSelection{Kind: AssignUser, UserID: userID}
}

// ToActiveShift targets a shift in progress. insertAfterBinID may be empty,
// in which case the move goes right after the driver's next stop.
func ToActiveShift(shiftID, insertAfterBinID string) AssignmentSelection {
	return AssignmentSelection{Kind: AssignActiveShift, ShiftID: shiftID, InsertAfterBinID: insertAfterBinID}
}

// ToFutureShift targets a shift that has not started. An empty position means end.
func ToFutureShift(shiftID, position string) AssignmentSelection {
	return AssignmentSelection{Kind: AssignFutureShift, ShiftID: shiftID, InsertPosition: position}
}

// PlanLookup finds a pending relocation plan for a bin
type PlanLookup interface {
	Plan(binID string) (models.RelocationPlan, bool)
}
