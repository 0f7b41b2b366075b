package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/services"
	"binfleet-backend/pkg/utils"
)

// ReverseGeocodeRequest represents a request to reverse geocode coordinates
type ReverseGeocodeRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// ReverseGeocode handles POST /api/geocoding/reverse
func ReverseGeocode(geocoder services.ReverseGeocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReverseGeocodeRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		address, err := geocoder.ReverseGeocode(r.Context(), *req.Lat, *req.Lng)
		if err != nil {
			log.Error().Err(err).Float64("lat", *req.Lat).Float64("lng", *req.Lng).Msg("❌ Reverse geocoding failed")
			utils.RespondError(w, http.StatusBadGateway, "Geocoding service unavailable")
			return
		}
		if address == nil {
			utils.RespondError(w, http.StatusNotFound, "No address found for these coordinates")
			return
		}

		utils.RespondJSON(w, http.StatusOK, address)
	}
}

// ForwardGeocoder turns a typed address into coordinates
type ForwardGeocoder interface {
	Geocode(ctx context.Context, address string) (*models.Address, error)
}

type GeocodeRequest struct {
	Address string `json:"address" validate:"required,min=3"`
}

// Geocode handles POST /api/geocoding/forward, used when a relocation
// destination is typed in rather than dropped on the map
func Geocode(geocoder ForwardGeocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GeocodeRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		address, err := geocoder.Geocode(r.Context(), req.Address)
		if errors.Is(err, services.ErrNoGeocodeResult) {
			utils.RespondError(w, http.StatusNotFound, "No location found for this address")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("address", req.Address).Msg("❌ Geocoding failed")
			utils.RespondError(w, http.StatusBadGateway, "Geocoding service unavailable")
			return
		}

		utils.RespondJSON(w, http.StatusOK, address)
	}
}
