package models

import (
	"fmt"
	"strings"
)

// Address is a reverse-geocoded street address
type Address struct {
	Street           string  `json:"street"`
	City             string  `json:"city"`
	Zip              string  `json:"zip"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
}

// RelocationPlan is a pending destination captured by dropping a bin on the map.
// Coordinates are authoritative; the address fields are filled in best-effort
// once reverse geocoding returns.
type RelocationPlan struct {
	BinID      string  `json:"bin_id"`
	NewLat     float64 `json:"new_latitude"`
	NewLng     float64 `json:"new_longitude"`
	NewAddress *string `json:"new_address,omitempty"`
	NewCity    *string `json:"new_city,omitempty"`
	NewZip     *string `json:"new_zip,omitempty"`
}

// FormatAddress builds the "street, city zip" form stored on move requests
func FormatAddress(street, city, zip string) string {
	return fmt.Sprintf("%s, %s %s", street, city, zip)
}

// ParseAddress splits a "street, city zip" string back into its parts.
// ok is false when the string does not have that shape.
func ParseAddress(address string) (street, city, zip string, ok bool) {
	parts := strings.Split(address, ", ")
	if len(parts) < 2 {
		return "", "", "", false
	}
	street = parts[0]
	cityZip := strings.TrimSpace(parts[1])
	cityZipParts := strings.Split(cityZip, " ")
	if len(cityZipParts) < 2 {
		return "", "", "", false
	}
	city = strings.Join(cityZipParts[:len(cityZipParts)-1], " ")
	zip = cityZipParts[len(cityZipParts)-1]
	return street, city, zip, true
}
