package moves

import "fmt"

type PayloadKind string

const (
	PayloadNone  PayloadKind = "none"
	PayloadUser  PayloadKind = "user"
	PayloadShift PayloadKind = "shift"
)

// AssignmentPayload is the exact shape of the assignment call for one move
type AssignmentPayload struct {
	Kind             PayloadKind `json:"kind"`
	TargetID         string      `json:"target_id,omitempty"`
	InsertAfterBinID *string     `json:"insert_after_bin_id,omitempty"`
	InsertPosition   *string     `json:"insert_position,omitempty"`
}

// ResolveAssignment maps a selection to its assignment payload.
// Unassigned resolves to PayloadNone, meaning no call is needed.
func ResolveAssignment(sel AssignmentSelection) (AssignmentPayload, error) {
	switch sel.Kind {
	case "", AssignUnassigned:
		return AssignmentPayload{Kind: PayloadNone}, nil

	case AssignUser:
		if sel.UserID == "" {
			return AssignmentPayload{}, fmt.Errorf("%w: %w: user_id", ErrValidation, ErrMissingTarget)
		}
		return AssignmentPayload{Kind: PayloadUser, TargetID: sel.UserID}, nil

	case AssignActiveShift:
		if sel.ShiftID == "" {
			return AssignmentPayload{}, fmt.Errorf("%w: %w: shift_id", ErrValidation, ErrMissingTarget)
		}
		payload := AssignmentPayload{Kind: PayloadShift, TargetID: sel.ShiftID}
		if sel.InsertAfterBinID != "" {
			after := sel.InsertAfterBinID
			payload.InsertAfterBinID = &after
		}
		return payload, nil

	case AssignFutureShift:
		if sel.ShiftID == "" {
			return AssignmentPayload{}, fmt.Errorf("%w: %w: shift_id", ErrValidation, ErrMissingTarget)
		}
		pos := sel.InsertPosition
		if pos == "" {
			pos = InsertEnd
		}
		if pos != InsertStart && pos != InsertEnd {
			return AssignmentPayload{}, fmt.Errorf("%w: insert_position must be 'start' or 'end', got %q", ErrValidation, pos)
		}
		return AssignmentPayload{Kind: PayloadShift, TargetID: sel.ShiftID, InsertPosition: &pos}, nil

	default:
		return AssignmentPayload{}, fmt.Errorf("%w: unknown assignment kind %q", ErrValidation, sel.Kind)
	}
}
