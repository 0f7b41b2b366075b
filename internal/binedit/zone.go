package binedit

import (
	"fmt"

	"binfleet-backend/internal/models"
)

// DefaultZoneRadiusMeters is the radius of zones created from a bin edit
const DefaultZoneRadiusMeters = 100

// ZonePlan is a no-go zone that saving an edit will create
type ZonePlan struct {
	Name         string         `json:"name"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	RadiusMeters int            `json:"radius_meters"`
	Category     ReasonCategory `json:"category"`
}

// ZoneFor returns the zone implied by choosing category for an edit of bin, or nil.
// Incident categories always create one. relocation_request creates one only when
// the operator turned the toggle on. The zone sits at the bin's pre-edit
// location, so a bin with no stored coordinates never gets one.
func ZoneFor(bin models.Bin, c ReasonCategory, createZone bool) *ZonePlan {
	wants := c.AutoZone() || (c == ReasonRelocationRequest && createZone)
	if !wants || !bin.HasLocation() {
		return nil
	}
	return &ZonePlan{
		Name:         fmt.Sprintf("Bin #%d - %s", bin.BinNumber, bin.CurrentStreet),
		Latitude:     *bin.Latitude,
		Longitude:    *bin.Longitude,
		RadiusMeters: DefaultZoneRadiusMeters,
		Category:     c,
	}
}
