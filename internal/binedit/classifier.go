package binedit

import "binfleet-backend/internal/models"

// ClassificationResult tells the caller how a bin edit must be justified.
// Exactly one path is active: SkipJustification, a non-nil AutoCategory, or a
// non-empty AvailableOptions menu.
type ClassificationResult struct {
	SkipJustification bool            `json:"skip_justification"`
	AutoCategory      *ReasonCategory `json:"auto_category"`
	AvailableOptions  []ReasonOption  `json:"available_options"`
	DefaultCategory   *ReasonCategory `json:"default_category"`
	Rule              string          `json:"rule"`
	Diff              BinDiff         `json:"diff"`
}

// rule is one row of the decision table. Rows are evaluated in order and the
// first row whose match returns true decides the result.
type rule struct {
	name   string
	match  func(d BinDiff, newStatus string) bool
	result func() ClassificationResult
}

var rules = []rule{
	{
		name: "telemetry_only",
		match: func(d BinDiff, _ string) bool {
			return !d.StatusChanged && !d.LocationChanged()
		},
		result: func() ClassificationResult {
			return ClassificationResult{SkipJustification: true}
		},
	},
	{
		name: "to_storage",
		match: func(d BinDiff, newStatus string) bool {
			return d.StatusChanged && newStatus == models.BinStatusInStorage
		},
		result: func() ClassificationResult {
			return ClassificationResult{AutoCategory: category(ReasonPulledFromService)}
		},
	},
	{
		name: "to_missing",
		match: func(d BinDiff, newStatus string) bool {
			return d.StatusChanged && newStatus == models.BinStatusMissing
		},
		result: func() ClassificationResult {
			return ClassificationResult{
				AvailableOptions: options(ReasonMissing, ReasonTheft, ReasonVandalism, ReasonLandlordComplaint, ReasonOther),
				DefaultCategory:  category(ReasonMissing),
			}
		},
	},
	{
		name: "status_only",
		match: func(d BinDiff, _ string) bool {
			return d.StatusChanged && !d.LocationChanged()
		},
		result: func() ClassificationResult {
			return ClassificationResult{
				AvailableOptions: options(ReasonOther),
				DefaultCategory:  category(ReasonOther),
			}
		},
	},
	{
		name: "location_only",
		match: func(d BinDiff, _ string) bool {
			return d.LocationChanged() && !d.StatusChanged
		},
		result: func() ClassificationResult {
			return ClassificationResult{
				AvailableOptions: options(ReasonRelocationRequest, ReasonLandlordComplaint, ReasonOther),
				DefaultCategory:  category(ReasonRelocationRequest),
			}
		},
	},
	{
		name:  "mixed",
		match: func(BinDiff, string) bool { return true },
		result: func() ClassificationResult {
			return ClassificationResult{AvailableOptions: SelectableOptions()}
		},
	},
}

// Classify runs the decision table for a proposed edit of bin.
// It is total: every input lands on exactly one rule.
func Classify(bin models.Bin, proposed models.ProposedBinState) ClassificationResult {
	diff := Diff(bin, proposed)
	for _, r := range rules {
		if !r.match(diff, proposed.Status) {
			continue
		}
		res := r.result()
		if res.AvailableOptions == nil {
			res.AvailableOptions = []ReasonOption{}
		}
		res.Rule = r.name
		res.Diff = diff
		return res
	}
	// unreachable, the last rule always matches
	return ClassificationResult{AvailableOptions: SelectableOptions(), Rule: "mixed", Diff: diff}
}

// Offers reports whether category is one of the selectable options
func (r ClassificationResult) Offers(c ReasonCategory) bool {
	for _, opt := range r.AvailableOptions {
		if opt.Category == c {
			return true
		}
	}
	return false
}

func category(c ReasonCategory) *ReasonCategory {
	return &c
}
