package binedit

import (
	"reflect"
	"testing"

	"binfleet-backend/internal/models"
)

func categories(opts []ReasonOption) []ReasonCategory {
	out := make([]ReasonCategory, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Category)
	}
	return out
}

func TestClassifyRules(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(p *models.ProposedBinState)
		rule       string
		skip       bool
		auto       *ReasonCategory
		options    []ReasonCategory
		defaultCat *ReasonCategory
	}{
		{
			name:    "nothing changed",
			mutate:  func(p *models.ProposedBinState) {},
			rule:    "telemetry_only",
			skip:    true,
			options: []ReasonCategory{},
		},
		{
			name:    "fill only",
			mutate:  func(p *models.ProposedBinState) { p.FillPercentage = intp(95) },
			rule:    "telemetry_only",
			skip:    true,
			options: []ReasonCategory{},
		},
		{
			name:    "fill and bin number",
			mutate:  func(p *models.ProposedBinState) { p.FillPercentage = intp(5); p.BinNumber = 7 },
			rule:    "telemetry_only",
			skip:    true,
			options: []ReasonCategory{},
		},
		{
			name:    "to storage",
			mutate:  func(p *models.ProposedBinState) { p.Status = models.BinStatusInStorage },
			rule:    "to_storage",
			auto:    category(ReasonPulledFromService),
			options: []ReasonCategory{},
		},
		{
			name: "to storage with new location",
			mutate: func(p *models.ProposedBinState) {
				p.Status = models.BinStatusInStorage
				p.CurrentStreet = "Warehouse"
			},
			rule:    "to_storage",
			auto:    category(ReasonPulledFromService),
			options: []ReasonCategory{},
		},
		{
			name:       "to missing",
			mutate:     func(p *models.ProposedBinState) { p.Status = models.BinStatusMissing },
			rule:       "to_missing",
			options:    []ReasonCategory{ReasonMissing, ReasonTheft, ReasonVandalism, ReasonLandlordComplaint, ReasonOther},
			defaultCat: category(ReasonMissing),
		},
		{
			name: "to missing with moved coords",
			mutate: func(p *models.ProposedBinState) {
				p.Status = models.BinStatusMissing
				p.Latitude = f64(1)
			},
			rule:       "to_missing",
			options:    []ReasonCategory{ReasonMissing, ReasonTheft, ReasonVandalism, ReasonLandlordComplaint, ReasonOther},
			defaultCat: category(ReasonMissing),
		},
		{
			name:       "retired",
			mutate:     func(p *models.ProposedBinState) { p.Status = models.BinStatusRetired },
			rule:       "status_only",
			options:    []ReasonCategory{ReasonOther},
			defaultCat: category(ReasonOther),
		},
		{
			name:       "unknown status",
			mutate:     func(p *models.ProposedBinState) { p.Status = "on_fire" },
			rule:       "status_only",
			options:    []ReasonCategory{ReasonOther},
			defaultCat: category(ReasonOther),
		},
		{
			name:       "street changed",
			mutate:     func(p *models.ProposedBinState) { p.CurrentStreet = "2 Oak Ave" },
			rule:       "location_only",
			options:    []ReasonCategory{ReasonRelocationRequest, ReasonLandlordComplaint, ReasonOther},
			defaultCat: category(ReasonRelocationRequest),
		},
		{
			name:       "coords changed with fill",
			mutate:     func(p *models.ProposedBinState) { p.Longitude = f64(-97); p.FillPercentage = intp(1) },
			rule:       "location_only",
			options:    []ReasonCategory{ReasonRelocationRequest, ReasonLandlordComplaint, ReasonOther},
			defaultCat: category(ReasonRelocationRequest),
		},
		{
			name: "mixed",
			mutate: func(p *models.ProposedBinState) {
				p.Status = models.BinStatusNeedsCheck
				p.City = "Austin"
			},
			rule:    "mixed",
			options: []ReasonCategory{ReasonMissing, ReasonTheft, ReasonVandalism, ReasonLandlordComplaint, ReasonRelocationRequest, ReasonOther},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bin := baseBin()
			p := models.ProposedFromBin(bin)
			tc.mutate(&p)

			got := Classify(bin, p)
			if got.Rule != tc.rule {
				t.Fatalf("rule = %q, want %q", got.Rule, tc.rule)
			}
			if got.SkipJustification != tc.skip {
				t.Fatalf("skip = %v, want %v", got.SkipJustification, tc.skip)
			}
			if !reflect.DeepEqual(got.AutoCategory, tc.auto) {
				t.Fatalf("auto = %v, want %v", got.AutoCategory, tc.auto)
			}
			if !reflect.DeepEqual(categories(got.AvailableOptions), tc.options) {
				t.Fatalf("options = %v, want %v", categories(got.AvailableOptions), tc.options)
			}
			if !reflect.DeepEqual(got.DefaultCategory, tc.defaultCat) {
				t.Fatalf("default = %v, want %v", got.DefaultCategory, tc.defaultCat)
			}
		})
	}
}

func TestClassifyExactlyOnePathActive(t *testing.T) {
	statuses := []string{
		models.BinStatusActive, models.BinStatusMissing, models.BinStatusRetired,
		models.BinStatusInStorage, models.BinStatusPendingMove, models.BinStatusNeedsCheck, "bogus",
	}
	streets := []string{"1 Main St", "2 Oak Ave"}

	for _, status := range statuses {
		for _, street := range streets {
			bin := baseBin()
			p := models.ProposedFromBin(bin)
			p.Status = status
			p.CurrentStreet = street

			res := Classify(bin, p)
			active := 0
			if res.SkipJustification {
				active++
			}
			if res.AutoCategory != nil {
				active++
			}
			if len(res.AvailableOptions) > 0 {
				active++
			}
			if active != 1 {
				t.Fatalf("status=%s street=%s: %d active paths in %+v", status, street, active, res)
			}
			if res.DefaultCategory != nil && !res.Offers(*res.DefaultCategory) {
				t.Fatalf("default %s not among options", *res.DefaultCategory)
			}
			if res.Offers(ReasonPulledFromService) {
				t.Fatalf("pulled_from_service must never be selectable")
			}
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	bin := baseBin()
	p := models.ProposedFromBin(bin)
	p.Status = models.BinStatusMissing

	a := Classify(bin, p)
	b := Classify(bin, p)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Classify not idempotent: %+v vs %+v", a, b)
	}

	// results must not share option slices
	a.AvailableOptions[0].Label = "changed"
	if c := Classify(bin, p); c.AvailableOptions[0].Label == "changed" {
		t.Fatalf("Classify returned a shared slice")
	}
}
