package binedit

import (
	"errors"
	"fmt"
)

var (
	ErrReasonRequired       = errors.New("a reason category is required for this change")
	ErrReasonNotOffered     = errors.New("reason category is not allowed for this change")
	ErrZoneToggleNotOffered = errors.New("zone toggle is only available for relocation requests")
)

// Justification is what the operator picked for an edit
type Justification struct {
	Category   *ReasonCategory
	Notes      *string
	CreateZone bool
}

// CheckJustification validates the operator's choice against a classification
// and returns the category to persist. The skip path returns nil and ignores the
// choice. The auto path always returns the auto category.
func CheckJustification(res ClassificationResult, j Justification) (*ReasonCategory, error) {
	if res.SkipJustification {
		return nil, nil
	}
	if res.AutoCategory != nil {
		return category(*res.AutoCategory), nil
	}
	if j.Category == nil || *j.Category == "" {
		return nil, ErrReasonRequired
	}
	if !res.Offers(*j.Category) {
		return nil, fmt.Errorf("%w: %s", ErrReasonNotOffered, *j.Category)
	}
	// incident categories create their zone anyway, so the flag is harmless there
	if j.CreateZone && *j.Category != ReasonRelocationRequest && !j.Category.AutoZone() {
		return nil, fmt.Errorf("%w: got %s", ErrZoneToggleNotOffered, *j.Category)
	}
	return category(*j.Category), nil
}
