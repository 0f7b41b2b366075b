package binedit

// ReasonCategory is the justification recorded with a bin edit
type ReasonCategory string

const (
	ReasonMissing           ReasonCategory = "missing"
	ReasonTheft             ReasonCategory = "theft"
	ReasonVandalism         ReasonCategory = "vandalism"
	ReasonLandlordComplaint ReasonCategory = "landlord_complaint"
	ReasonRelocationRequest ReasonCategory = "relocation_request"
	ReasonPulledFromService ReasonCategory = "pulled_from_service"
	ReasonOther             ReasonCategory = "other"
)

// ReasonOption is one entry of the reason catalog.
// AutoZone marks incident categories that create a no-go zone at the old location.
type ReasonOption struct {
	Category ReasonCategory `json:"category"`
	Label    string         `json:"label"`
	AutoZone bool           `json:"auto_zone"`
}

// catalog order is the order options are shown in
var catalog = []ReasonOption{
	{Category: ReasonMissing, Label: "Missing", AutoZone: true},
	{Category: ReasonTheft, Label: "Theft", AutoZone: true},
	{Category: ReasonVandalism, Label: "Vandalism", AutoZone: true},
	{Category: ReasonLandlordComplaint, Label: "Landlord complaint", AutoZone: true},
	{Category: ReasonRelocationRequest, Label: "Relocation request", AutoZone: false},
	{Category: ReasonPulledFromService, Label: "Pulled from service", AutoZone: false},
	{Category: ReasonOther, Label: "Other", AutoZone: false},
}

// Lookup returns the catalog entry for a category
func Lookup(category ReasonCategory) (ReasonOption, bool) {
	for _, opt := range catalog {
		if opt.Category == category {
			return opt, true
		}
	}
	return ReasonOption{}, false
}

// Valid reports whether the category belongs to the catalog
func (c ReasonCategory) Valid() bool {
	_, ok := Lookup(c)
	return ok
}

// AutoZone reports whether choosing the category creates a zone automatically
func (c ReasonCategory) AutoZone() bool {
	opt, ok := Lookup(c)
	return ok && opt.AutoZone
}

// SelectableOptions is the catalog minus the categories that are only ever auto-applied
func SelectableOptions() []ReasonOption {
	return options(
		ReasonMissing,
		ReasonTheft,
		ReasonVandalism,
		ReasonLandlordComplaint,
		ReasonRelocationRequest,
		ReasonOther,
	)
}

// options builds a fresh slice of catalog entries in the given order
func options(categories ...ReasonCategory) []ReasonOption {
	out := make([]ReasonOption, 0, len(categories))
	for _, c := range categories {
		if opt, ok := Lookup(c); ok {
			out = append(out, opt)
		}
	}
	return out
}
