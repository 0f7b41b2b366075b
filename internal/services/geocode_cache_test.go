package services

import (
	"context"
	"testing"

	"binfleet-backend/internal/models"
)

type countingGeocoder struct{ calls int }

func (g *countingGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error) {
	g.calls++
	return &models.Address{Street: "1 Main St", Latitude: lat, Longitude: lng}, nil
}

func TestCachedGeocoderWithoutRedisPassesThrough(t *testing.T) {
	next := &countingGeocoder{}
	c := NewCachedGeocoder(next, nil)

	for i := 0; i < 3; i++ {
		addr, err := c.ReverseGeocode(context.Background(), 1, 2)
		if err != nil || addr == nil || addr.Street != "1 Main St" {
			t.Fatalf("unexpected result %+v, %v", addr, err)
		}
	}
	if next.calls != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", next.calls)
	}
}

func TestGeocodeKeyRounding(t *testing.T) {
	if geocodeKey(32.7767001, -96.7970004) != geocodeKey(32.7767002, -96.7970001) {
		t.Fatalf("nearby points should share a cache key")
	}
	if geocodeKey(32.7767, -96.797) == geocodeKey(32.7768, -96.797) {
		t.Fatalf("points ~10m apart should not share a key")
	}
}
