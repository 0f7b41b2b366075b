package database

import (
	"errors"
	"testing"

	"binfleet-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func route(completed ...int) []models.ShiftBin {
	stops := make([]models.ShiftBin, len(completed))
	for i, c := range completed {
		stops[i] = models.ShiftBin{
			ID:            i + 1,
			ShiftID:       "shift-1",
			BinID:         "bin-" + string(rune('a'+i)),
			SequenceOrder: i + 1,
			IsCompleted:   c,
		}
	}
	return stops
}

func TestInsertSequence(t *testing.T) {
	active := models.Shift{ID: "shift-1", Status: models.ShiftStatusActive}
	paused := models.Shift{ID: "shift-1", Status: models.ShiftStatusPaused}
	ready := models.Shift{ID: "shift-1", Status: models.ShiftStatusReady}

	tests := []struct {
		name     string
		shift    models.Shift
		stops    []models.ShiftBin
		after    *string
		position *string
		want     int
	}{
		{"active after specific bin", active, route(1, 0, 0), strPtr("bin-b"), nil, 3},
		{"paused after specific bin", paused, route(1, 1, 0), strPtr("bin-a"), nil, 2},
		{"active next after current stop", active, route(1, 1, 0, 0), nil, nil, 4},
		{"active all completed goes to end", active, route(1, 1), nil, nil, 3},
		{"active empty route", active, nil, nil, nil, 1},
		{"ready start", ready, route(0, 0, 0), nil, strPtr("start"), 1},
		{"ready end", ready, route(0, 0, 0), nil, strPtr("end"), 4},
		{"ready end on empty route", ready, nil, nil, strPtr("end"), 1},
		{"ready ignores insert-after", ready, route(0, 0), strPtr("bin-b"), strPtr("end"), 3},
		{"active ignores position", active, route(1, 0, 0), nil, strPtr("start"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InsertSequence(tt.shift, tt.stops, tt.after, tt.position)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("sequence = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInsertSequenceUnknownAnchor(t *testing.T) {
	shift := models.Shift{ID: "shift-1", Status: models.ShiftStatusActive}
	_, err := InsertSequence(shift, route(0, 0), strPtr("bin-zz"), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
