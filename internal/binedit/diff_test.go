package binedit

import (
	"testing"

	"binfleet-backend/internal/models"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func baseBin() models.Bin {
	return models.Bin{
		ID:             "bin-1",
		BinNumber:      12,
		CurrentStreet:  "1 Main St",
		City:           "Dallas",
		Zip:            "75201",
		Status:         models.BinStatusActive,
		FillPercentage: intp(40),
		Latitude:       f64(32.78),
		Longitude:      f64(-96.80),
	}
}

func TestDiff(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *models.ProposedBinState)
		want   BinDiff
	}{
		{"unchanged", func(p *models.ProposedBinState) {}, BinDiff{}},
		{"status", func(p *models.ProposedBinState) { p.Status = models.BinStatusRetired }, BinDiff{StatusChanged: true}},
		{"street", func(p *models.ProposedBinState) { p.CurrentStreet = "2 Oak Ave" }, BinDiff{AddressChanged: true}},
		{"zip", func(p *models.ProposedBinState) { p.Zip = "75202" }, BinDiff{AddressChanged: true}},
		{"street case is literal", func(p *models.ProposedBinState) { p.CurrentStreet = "1 main st" }, BinDiff{AddressChanged: true}},
		{"coords", func(p *models.ProposedBinState) { p.Latitude = f64(33.0) }, BinDiff{CoordsChanged: true}},
		{"coords omitted", func(p *models.ProposedBinState) { p.Latitude, p.Longitude = nil, nil }, BinDiff{}},
		{"half coords omitted", func(p *models.ProposedBinState) { p.Longitude = nil; p.Latitude = f64(1) }, BinDiff{}},
		{"fill", func(p *models.ProposedBinState) { p.FillPercentage = intp(90) }, BinDiff{FillChanged: true}},
		{"fill cleared", func(p *models.ProposedBinState) { p.FillPercentage = nil }, BinDiff{FillChanged: true}},
		{"bin number", func(p *models.ProposedBinState) { p.BinNumber = 13 }, BinDiff{BinNumberChanged: true}},
		{
			"everything",
			func(p *models.ProposedBinState) {
				p.Status = models.BinStatusMissing
				p.City = "Austin"
				p.Latitude = f64(30.2)
				p.FillPercentage = intp(0)
				p.BinNumber = 99
			},
			BinDiff{StatusChanged: true, AddressChanged: true, CoordsChanged: true, FillChanged: true, BinNumberChanged: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bin := baseBin()
			p := models.ProposedFromBin(bin)
			tc.mutate(&p)
			if got := Diff(bin, p); got != tc.want {
				t.Fatalf("Diff() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDiffCoordsOnBinWithoutLocation(t *testing.T) {
	bin := baseBin()
	bin.Latitude, bin.Longitude = nil, nil
	p := models.ProposedFromBin(bin)
	p.Latitude, p.Longitude = f64(1), f64(2)

	if d := Diff(bin, p); !d.CoordsChanged || !d.LocationChanged() {
		t.Fatalf("expected coords change when bin had no location, got %+v", d)
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	bin := baseBin()
	p := models.ProposedFromBin(bin)
	p.Latitude = f64(50)
	Diff(bin, p)
	if *bin.Latitude != 32.78 || *p.Latitude != 50 {
		t.Fatalf("Diff mutated its inputs")
	}
}
