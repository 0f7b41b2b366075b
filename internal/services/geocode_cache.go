package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/models"
)

// ReverseGeocoder is anything that can turn coordinates into an address
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error)
}

const (
	geocodeHitTTL  = 30 * 24 * time.Hour
	geocodeMissTTL = time.Hour
)

// CachedGeocoder puts a Redis cache in front of a reverse geocoder.
// Coordinates are rounded to about one meter for the key. Misses are cached for
// a shorter time. With a nil client every call goes straight through.
type CachedGeocoder struct {
	next ReverseGeocoder
	rdb  *redis.Client
}

func NewCachedGeocoder(next ReverseGeocoder, rdb *redis.Client) *CachedGeocoder {
	return &CachedGeocoder{next: next, rdb: rdb}
}

func geocodeKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:rev:%.5f,%.5f", lat, lng)
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error) {
	if c.rdb == nil {
		return c.next.ReverseGeocode(ctx, lat, lng)
	}

	key := geocodeKey(lat, lng)
	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var addr *models.Address
		if jsonErr := json.Unmarshal([]byte(val), &addr); jsonErr == nil {
			return addr, nil
		}
	case !errors.Is(err, redis.Nil):
		// cache trouble never blocks geocoding
		log.Warn().Err(err).Str("key", key).Msg("Geocode cache read failed")
	}

	addr, err := c.next.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	ttl := geocodeHitTTL
	if addr == nil {
		ttl = geocodeMissTTL
	}
	if raw, jsonErr := json.Marshal(addr); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, raw, ttl).Err(); setErr != nil {
			log.Warn().Err(setErr).Str("key", key).Msg("Geocode cache write failed")
		}
	}
	return addr, nil
}
