// Package binedit decides what justification a bin edit needs before it is saved.
package binedit

import "binfleet-backend/internal/models"

// BinDiff flags which fields a proposed edit changes
type BinDiff struct {
	StatusChanged    bool `json:"status_changed"`
	AddressChanged   bool `json:"address_changed"`
	CoordsChanged    bool `json:"coords_changed"`
	FillChanged      bool `json:"fill_changed"`
	BinNumberChanged bool `json:"bin_number_changed"`
}

// Diff compares a bin's stored state with a proposed edit.
// Address fields are compared literally. Coordinates only count as changed when
// the proposal carries both of them and they differ from what is stored.
func Diff(bin models.Bin, proposed models.ProposedBinState) BinDiff {
	return BinDiff{
		StatusChanged: bin.Status != proposed.Status,
		AddressChanged: bin.CurrentStreet != proposed.CurrentStreet ||
			bin.City != proposed.City ||
			bin.Zip != proposed.Zip,
		CoordsChanged:    coordsChanged(bin, proposed),
		FillChanged:      !sameInt(bin.FillPercentage, proposed.FillPercentage),
		BinNumberChanged: bin.BinNumber != proposed.BinNumber,
	}
}

// LocationChanged is true when either the address or the coordinates moved
func (d BinDiff) LocationChanged() bool {
	return d.AddressChanged || d.CoordsChanged
}

// Empty is true when nothing changed at all
func (d BinDiff) Empty() bool {
	return d == BinDiff{}
}

func coordsChanged(bin models.Bin, proposed models.ProposedBinState) bool {
	if proposed.Latitude == nil || proposed.Longitude == nil {
		return false
	}
	if !bin.HasLocation() {
		return true
	}
	return *bin.Latitude != *proposed.Latitude || *bin.Longitude != *proposed.Longitude
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
