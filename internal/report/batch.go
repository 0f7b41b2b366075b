// Package report renders bulk move runs as spreadsheets.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
)

// Outcome labels used in the Bins sheet
const (
	OutcomeAssigned         = "Assigned"
	OutcomeCreated          = "Created"
	OutcomeCreationFailed   = "Creation failed"
	OutcomeAssignmentFailed = "Assignment failed"
)

// BatchReport is one bulk move run to export
type BatchReport struct {
	SessionID   string
	GeneratedAt time.Time
	Bins        []models.Bin
	Configs     map[string]moves.MoveConfig
	Result      moves.BatchResult
}

// Row is one bin's line in the Bins sheet
type Row struct {
	BinID     string
	BinNumber int
	Address   string
	MoveType  string
	Scheduled string
	MoveID    string
	Outcome   string
	Error     string
}

// Rows flattens the run into one row per submitted bin, in submission order
func (r BatchReport) Rows() []Row {
	creationErr := failures(r.Result.CreationFailures)
	assignErr := failures(r.Result.AssignmentFailures)
	assigned := make(map[string]bool, len(r.Result.Assigned))
	for _, id := range r.Result.Assigned {
		assigned[id] = true
	}

	rows := make([]Row, 0, len(r.Bins))
	seen := make(map[string]bool, len(r.Bins))
	for _, b := range r.Bins {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true

		row := Row{BinID: b.ID, BinNumber: b.BinNumber, Address: b.Address()}
		if cfg, ok := r.Configs[b.ID]; ok {
			row.MoveType = string(cfg.MoveType)
			if !cfg.ScheduledDate.IsZero() {
				row.Scheduled = cfg.ScheduledDate.Format("2006-01-02")
			}
		}
		row.MoveID = r.Result.MoveIDs[b.ID]

		switch {
		case creationErr[b.ID] != "":
			row.Outcome, row.Error = OutcomeCreationFailed, creationErr[b.ID]
		case assignErr[b.ID] != "":
			row.Outcome, row.Error = OutcomeAssignmentFailed, assignErr[b.ID]
		case assigned[b.ID]:
			row.Outcome = OutcomeAssigned
		default:
			row.Outcome = OutcomeCreated
		}
		rows = append(rows, row)
	}
	return rows
}

// Generate writes the report as an XLSX workbook with a Summary and a Bins sheet
func Generate(r BatchReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Summary"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	writeSummary(file, summarySheet, r)

	binsSheet := "Bins"
	if _, err := file.NewSheet(binsSheet); err != nil {
		return nil, err
	}
	if err := writeBins(file, binsSheet, r.Rows()); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(file *excelize.File, sheet string, r BatchReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Session")
	set("B1", r.SessionID)
	set("A2", "Generated at")
	set("B2", r.GeneratedAt.Format(time.RFC3339))
	set("A3", "Bins submitted")
	set("B3", len(r.Result.Created)+len(r.Result.CreationFailures))
	set("A4", "Moves created")
	set("B4", len(r.Result.Created))
	set("A5", "Moves assigned")
	set("B5", len(r.Result.Assigned))
	set("A6", "Creation failures")
	set("B6", len(r.Result.CreationFailures))
	set("A7", "Assignment failures")
	set("B7", len(r.Result.AssignmentFailures))

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "B", 40)
}

func writeBins(file *excelize.File, sheet string, rows []Row) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Bin #", "Bin ID", "Address", "Move type", "Scheduled", "Move ID", "Outcome", "Error"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, row := range rows {
		n := i + 2
		set(fmt.Sprintf("A%d", n), row.BinNumber)
		set(fmt.Sprintf("B%d", n), row.BinID)
		set(fmt.Sprintf("C%d", n), row.Address)
		set(fmt.Sprintf("D%d", n), row.MoveType)
		set(fmt.Sprintf("E%d", n), row.Scheduled)
		set(fmt.Sprintf("F%d", n), row.MoveID)
		set(fmt.Sprintf("G%d", n), row.Outcome)
		set(fmt.Sprintf("H%d", n), row.Error)
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "B", 38)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "E", 12)
	_ = file.SetColWidth(sheet, "F", "F", 38)
	_ = file.SetColWidth(sheet, "G", "G", 18)
	_ = file.SetColWidth(sheet, "H", "H", 60)
	return nil
}

func failures(list []moves.BinFailure) map[string]string {
	out := make(map[string]string, len(list))
	for _, f := range list {
		out[f.BinID] = f.Error
	}
	return out
}
