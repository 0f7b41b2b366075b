package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/services"
)

type stubGeocoder struct {
	addr *models.Address
	err  error
}

func (g stubGeocoder) ReverseGeocode(context.Context, float64, float64) (*models.Address, error) {
	return g.addr, g.err
}

func (g stubGeocoder) Geocode(context.Context, string) (*models.Address, error) {
	return g.addr, g.err
}

func TestReverseGeocode(t *testing.T) {
	found := &models.Address{Street: "1 Elm St", City: "Dallas", Zip: "75201"}
	tests := []struct {
		name   string
		body   string
		geo    stubGeocoder
		status int
	}{
		{"found", `{"lat": 32.7, "lng": -96.8}`, stubGeocoder{addr: found}, http.StatusOK},
		{"zero coordinates are valid", `{"lat": 0, "lng": 0}`, stubGeocoder{addr: found}, http.StatusOK},
		{"missing lng", `{"lat": 32.7}`, stubGeocoder{addr: found}, http.StatusBadRequest},
		{"no result", `{"lat": 32.7, "lng": -96.8}`, stubGeocoder{}, http.StatusNotFound},
		{"upstream down", `{"lat": 32.7, "lng": -96.8}`, stubGeocoder{err: errors.New("timeout")}, http.StatusBadGateway},
		{"bad json", `{"lat":`, stubGeocoder{}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/geocoding/reverse", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			ReverseGeocode(tc.geo)(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}

func TestForwardGeocode(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		geo    stubGeocoder
		status int
	}{
		{"found", `{"address": "1 Elm St, Dallas"}`, stubGeocoder{addr: &models.Address{Latitude: 32.7, Longitude: -96.8}}, http.StatusOK},
		{"too short", `{"address": "x"}`, stubGeocoder{}, http.StatusBadRequest},
		{"no result", `{"address": "nowhere at all"}`, stubGeocoder{err: fmt.Errorf("%w for address: nowhere", services.ErrNoGeocodeResult)}, http.StatusNotFound},
		{"upstream down", `{"address": "1 Elm St"}`, stubGeocoder{err: errors.New("status 500")}, http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/geocoding/forward", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			Geocode(tc.geo)(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}
