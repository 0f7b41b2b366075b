package models

import "time"

// BinStatus values stored in bins.status
const (
	BinStatusActive      = "active"
	BinStatusMissing     = "missing"
	BinStatusRetired     = "retired"
	BinStatusInStorage   = "in_storage"
	BinStatusPendingMove = "pending_move"
	BinStatusNeedsCheck  = "needs_check"
)

type Bin struct {
	ID             string   `json:"id" db:"id"`
	BinNumber      int      `json:"bin_number" db:"bin_number"`
	CurrentStreet  string   `json:"current_street" db:"current_street"`
	City           string   `json:"city" db:"city"`
	Zip            string   `json:"zip" db:"zip"`
	LastMoved      *int64   `json:"last_moved,omitempty" db:"last_moved"`     // Unix timestamp
	LastChecked    *int64   `json:"last_checked,omitempty" db:"last_checked"` // Unix timestamp
	Status         string   `json:"status" db:"status"`
	FillPercentage *int     `json:"fill_percentage,omitempty" db:"fill_percentage"`
	Checked        bool     `json:"checked" db:"checked"`
	MoveRequested  bool     `json:"move_requested" db:"move_requested"`
	Latitude       *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64 `json:"longitude,omitempty" db:"longitude"`
	ReasonCategory *string  `json:"reason_category,omitempty" db:"reason_category"`
	ReasonNotes    *string  `json:"reason_notes,omitempty" db:"reason_notes"`
	CreatedAt      int64    `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt      int64    `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// HasLocation reports whether both coordinates are stored
func (b *Bin) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// Address returns the "street, city zip" form used for move requests
func (b *Bin) Address() string {
	return FormatAddress(b.CurrentStreet, b.City, b.Zip)
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	ID             string   `json:"id"`
	BinNumber      int      `json:"bin_number"`
	CurrentStreet  string   `json:"current_street"`
	City           string   `json:"city"`
	Zip            string   `json:"zip"`
	LastMovedIso   *string  `json:"lastMovedIso,omitempty"`
	LastCheckedIso *string  `json:"lastCheckedIso,omitempty"`
	Status         string   `json:"status"`
	FillPercentage *int     `json:"fill_percentage,omitempty"`
	Checked        bool     `json:"checked"`
	MoveRequested  bool     `json:"move_requested"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	ReasonCategory *string  `json:"reason_category,omitempty"`
	ReasonNotes    *string  `json:"reason_notes,omitempty"`
}

// ProposedBinState is the candidate edit an operator submits for a bin.
// Coordinates are optional: nil means "not supplied", not "cleared".
type ProposedBinState struct {
	BinNumber      int      `json:"bin_number" validate:"required,gt=0"`
	CurrentStreet  string   `json:"current_street" validate:"required"`
	City           string   `json:"city" validate:"required"`
	Zip            string   `json:"zip" validate:"required"`
	Status         string   `json:"status" validate:"required,oneof=active missing retired in_storage pending_move needs_check"`
	FillPercentage *int     `json:"fill_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// ProposedFromBin returns a proposal identical to the bin's current state
func ProposedFromBin(b Bin) ProposedBinState {
	return ProposedBinState{
		BinNumber:      b.BinNumber,
		CurrentStreet:  b.CurrentStreet,
		City:           b.City,
		Zip:            b.Zip,
		Status:         b.Status,
		FillPercentage: b.FillPercentage,
		Latitude:       b.Latitude,
		Longitude:      b.Longitude,
	}
}

// UpdateBinRequest is the request body for PATCH /api/bins/:id
type UpdateBinRequest struct {
	ProposedBinState
	ReasonCategory *string `json:"reason_category,omitempty"`
	ReasonNotes    *string `json:"reason_notes,omitempty"`
	CreateNoGoZone bool    `json:"create_no_go_zone"`
}

// ToBinResponse converts a Bin to BinResponse
func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		ID:             b.ID,
		BinNumber:      b.BinNumber,
		CurrentStreet:  b.CurrentStreet,
		City:           b.City,
		Zip:            b.Zip,
		Status:         b.Status,
		FillPercentage: b.FillPercentage,
		Checked:        b.Checked,
		MoveRequested:  b.MoveRequested,
		Latitude:       b.Latitude,
		Longitude:      b.Longitude,
		ReasonCategory: b.ReasonCategory,
		ReasonNotes:    b.ReasonNotes,
	}

	if b.LastMoved != nil {
		t := time.Unix(*b.LastMoved, 0)
		iso := t.Format(time.RFC3339)
		resp.LastMovedIso = &iso
	}

	if b.LastChecked != nil {
		t := time.Unix(*b.LastChecked, 0)
		iso := t.Format(time.RFC3339)
		resp.LastCheckedIso = &iso
	}

	return resp
}
