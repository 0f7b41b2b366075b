package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
)

func sampleReport() BatchReport {
	date := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	bins := []models.Bin{
		{ID: "b1", BinNumber: 1, CurrentStreet: "1 Elm St", City: "Dallas", Zip: "75201"},
		{ID: "b2", BinNumber: 2, CurrentStreet: "2 Oak Ave", City: "Dallas", Zip: "75202"},
		{ID: "b3", BinNumber: 3, CurrentStreet: "3 Pine Rd", City: "Plano", Zip: "75024"},
		{ID: "b4", BinNumber: 4, CurrentStreet: "4 Main St", City: "Irving", Zip: "75038"},
	}
	configs := map[string]moves.MoveConfig{}
	for _, b := range bins {
		configs[b.ID] = moves.MoveConfig{MoveType: moves.MoveTypeStore, ScheduledDate: date}
	}
	return BatchReport{
		SessionID:   "session-1",
		GeneratedAt: date,
		Bins:        bins,
		Configs:     configs,
		Result: moves.BatchResult{
			Created:            []string{"m1", "m2", "m4"},
			MoveIDs:            map[string]string{"b1": "m1", "b2": "m2", "b4": "m4"},
			Assigned:           []string{"b1"},
			CreationFailures:   []moves.BinFailure{{BinID: "b3", Error: "transport error: timeout"}},
			AssignmentFailures: []moves.BinFailure{{BinID: "b2", Error: "validation error: shift ended"}},
		},
	}
}

func TestRows(t *testing.T) {
	rows := sampleReport().Rows()

	want := []struct {
		binID   string
		outcome string
		moveID  string
	}{
		{"b1", OutcomeAssigned, "m1"},
		{"b2", OutcomeAssignmentFailed, "m2"},
		{"b3", OutcomeCreationFailed, ""},
		{"b4", OutcomeCreated, "m4"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, w := range want {
		got := rows[i]
		if got.BinID != w.binID || got.Outcome != w.outcome || got.MoveID != w.moveID {
			t.Fatalf("row %d = %+v, want %+v", i, got, w)
		}
	}
	if rows[2].Error != "transport error: timeout" {
		t.Fatalf("error text = %q", rows[2].Error)
	}
	if rows[0].Address != "1 Elm St, Dallas 75201" || rows[0].Scheduled != "2026-03-02" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
}

func TestGenerate(t *testing.T) {
	data, err := Generate(sampleReport())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Summary", "B4"); v != "3" {
		t.Fatalf("moves created cell = %q", v)
	}
	if v, _ := f.GetCellValue("Summary", "B6"); v != "1" {
		t.Fatalf("creation failures cell = %q", v)
	}

	rows, err := f.GetRows("Bins")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("bins sheet rows = %d, want header + 4", len(rows))
	}
	if rows[0][0] != "Bin #" || rows[3][6] != OutcomeCreationFailed {
		t.Fatalf("unexpected sheet content %v", rows)
	}
}
