package models

// ShiftStatus represents the current status of a shift
type ShiftStatus string

const (
	ShiftStatusReady     ShiftStatus = "ready"     // Route assigned, not started
	ShiftStatusActive    ShiftStatus = "active"    // Shift in progress
	ShiftStatusPaused    ShiftStatus = "paused"    // On break
	ShiftStatusEnded     ShiftStatus = "ended"     // Completed or manually ended
	ShiftStatusCancelled ShiftStatus = "cancelled" // Cancelled by manager
)

// Shift represents a driver's work shift
type Shift struct {
	ID            string      `json:"id" db:"id"`
	DriverID      string      `json:"driver_id" db:"driver_id"`
	Status        ShiftStatus `json:"status" db:"status"`
	StartTime     *int64      `json:"start_time" db:"start_time"`
	EndTime       *int64      `json:"end_time" db:"end_time"`
	TotalBins     int         `json:"total_bins" db:"total_bins"`
	CompletedBins int         `json:"completed_bins" db:"completed_bins"`
	CreatedAt     int64       `json:"created_at" db:"created_at"`
	UpdatedAt     int64       `json:"updated_at" db:"updated_at"`
}

// IsInProgress is true for shifts a driver is currently working (active or on break)
func (s *Shift) IsInProgress() bool {
	return s.Status == ShiftStatusActive || s.Status == ShiftStatusPaused
}

// IsFuture is true for shifts that have a route but have not started
func (s *Shift) IsFuture() bool {
	return s.Status == ShiftStatusReady
}

// AssignableShift is a shift listed as an assignment target, with the driver's name
type AssignableShift struct {
	ID            string      `json:"id" db:"id"`
	DriverID      string      `json:"driver_id" db:"driver_id"`
	DriverName    string      `json:"driver_name" db:"driver_name"`
	Status        ShiftStatus `json:"status" db:"status"`
	TotalBins     int         `json:"total_bins" db:"total_bins"`
	CompletedBins int         `json:"completed_bins" db:"completed_bins"`
}

// ShiftBin is one stop in a shift's route
type ShiftBin struct {
	ID            int     `json:"id" db:"id"`
	ShiftID       string  `json:"shift_id" db:"shift_id"`
	BinID         string  `json:"bin_id" db:"bin_id"`
	SequenceOrder int     `json:"sequence_order" db:"sequence_order"`
	IsCompleted   int     `json:"is_completed" db:"is_completed"`
	StopType      string  `json:"stop_type" db:"stop_type"`
	MoveRequestID *string `json:"move_request_id,omitempty" db:"move_request_id"`
}

// FCMToken represents a Firebase Cloud Messaging token for a user
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // "ios" or "android"
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}
