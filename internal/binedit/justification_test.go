package binedit

import (
	"errors"
	"testing"

	"binfleet-backend/internal/models"
)

func TestCheckJustification(t *testing.T) {
	bin := baseBin()

	skip := Classify(bin, models.ProposedFromBin(bin))

	storage := models.ProposedFromBin(bin)
	storage.Status = models.BinStatusInStorage
	auto := Classify(bin, storage)

	moved := models.ProposedFromBin(bin)
	moved.CurrentStreet = "2 Oak Ave"
	location := Classify(bin, moved)

	cases := []struct {
		name    string
		res     ClassificationResult
		j       Justification
		want    *ReasonCategory
		wantErr error
	}{
		{"skip ignores choice", skip, Justification{Category: category(ReasonTheft)}, nil, nil},
		{"auto wins over choice", auto, Justification{Category: category(ReasonTheft)}, category(ReasonPulledFromService), nil},
		{"missing reason", location, Justification{}, nil, ErrReasonRequired},
		{"empty reason", location, Justification{Category: category("")}, nil, ErrReasonRequired},
		{"not offered", location, Justification{Category: category(ReasonTheft)}, nil, ErrReasonNotOffered},
		{"offered", location, Justification{Category: category(ReasonLandlordComplaint)}, category(ReasonLandlordComplaint), nil},
		{"relocation with toggle", location, Justification{Category: category(ReasonRelocationRequest), CreateZone: true}, category(ReasonRelocationRequest), nil},
		{"other with toggle", location, Justification{Category: category(ReasonOther), CreateZone: true}, nil, ErrZoneToggleNotOffered},
		{"incident with toggle", location, Justification{Category: category(ReasonLandlordComplaint), CreateZone: true}, category(ReasonLandlordComplaint), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CheckJustification(tc.res, tc.j)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
				t.Fatalf("category = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestZoneFor(t *testing.T) {
	bin := baseBin()

	cases := []struct {
		name   string
		cat    ReasonCategory
		toggle bool
		want   bool
	}{
		{"theft", ReasonTheft, false, true},
		{"missing", ReasonMissing, false, true},
		{"vandalism", ReasonVandalism, false, true},
		{"landlord", ReasonLandlordComplaint, false, true},
		{"relocation off", ReasonRelocationRequest, false, false},
		{"relocation on", ReasonRelocationRequest, true, true},
		{"pulled from service", ReasonPulledFromService, true, false},
		{"other", ReasonOther, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			z := ZoneFor(bin, tc.cat, tc.toggle)
			if (z != nil) != tc.want {
				t.Fatalf("ZoneFor(%s, %v) = %+v, want zone=%v", tc.cat, tc.toggle, z, tc.want)
			}
			if z != nil && (z.Latitude != *bin.Latitude || z.Longitude != *bin.Longitude) {
				t.Fatalf("zone must sit at the pre-edit location, got %+v", z)
			}
		})
	}

	bin.Latitude = nil
	if z := ZoneFor(bin, ReasonTheft, false); z != nil {
		t.Fatalf("expected no zone for bin without coordinates, got %+v", z)
	}
}

func TestSelectableOptions(t *testing.T) {
	opts := SelectableOptions()
	if len(opts) != 6 {
		t.Fatalf("expected 6 selectable options, got %d", len(opts))
	}
	for _, o := range opts {
		if o.Category == ReasonPulledFromService {
			t.Fatalf("pulled_from_service must not be selectable")
		}
		want := o.Category == ReasonMissing || o.Category == ReasonTheft ||
			o.Category == ReasonVandalism || o.Category == ReasonLandlordComplaint
		if o.AutoZone != want {
			t.Fatalf("%s autoZone = %v, want %v", o.Category, o.AutoZone, want)
		}
	}
}
