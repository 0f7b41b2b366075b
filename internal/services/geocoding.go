package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"binfleet-backend/internal/models"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNoGeocodeResult is returned by forward geocoding when Google finds nothing
var ErrNoGeocodeResult = errors.New("no geocoding results")

// GeocodingService handles geocoding and reverse geocoding using Google Maps API
type GeocodingService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Coordinates represents latitude and longitude
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// GoogleGeocodeResponse represents the Google Maps Geocoding API response
type GoogleGeocodeResponse struct {
	Results []struct {
		FormattedAddress  string             `json:"formatted_address"`
		AddressComponents []addressComponent `json:"address_components"`
		Geometry          struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewGeocodingService creates a new geocoding service
func NewGeocodingService(apiKey string) (*GeocodingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}

	return &GeocodingService{
		apiKey:  apiKey,
		baseURL: googleGeocodeURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// WithBaseURL points the service at another endpoint (used by tests)
func (s *GeocodingService) WithBaseURL(baseURL string) *GeocodingService {
	s.baseURL = baseURL
	return s
}

// ReverseGeocode converts coordinates to an address.
// ZERO_RESULTS is not an error: it returns a nil address.
func (s *GeocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error) {
	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Add("key", s.apiKey)

	result, err := s.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if result.Status == "ZERO_RESULTS" || len(result.Results) == 0 {
		return nil, nil
	}

	first := result.Results[0]
	addr := addressFromComponents(first.AddressComponents)
	addr.FormattedAddress = first.FormattedAddress
	addr.Latitude = lat
	addr.Longitude = lng
	return &addr, nil
}

// Geocode converts an address string to coordinates
func (s *GeocodingService) Geocode(ctx context.Context, address string) (*models.Address, error) {
	params := url.Values{}
	params.Add("address", address)
	params.Add("key", s.apiKey)

	result, err := s.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if result.Status == "ZERO_RESULTS" || len(result.Results) == 0 {
		return nil, fmt.Errorf("%w for address: %s", ErrNoGeocodeResult, address)
	}

	first := result.Results[0]
	addr := addressFromComponents(first.AddressComponents)
	addr.FormattedAddress = first.FormattedAddress
	addr.Latitude = first.Geometry.Location.Lat
	addr.Longitude = first.Geometry.Location.Lng
	return &addr, nil
}

func (s *GeocodingService) get(ctx context.Context, params url.Values) (*GoogleGeocodeResponse, error) {
	fullURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	var result GoogleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		if result.ErrorMessage != "" {
			return nil, fmt.Errorf("geocoding API returned status: %s (%s)", result.Status, result.ErrorMessage)
		}
		return nil, fmt.Errorf("geocoding API returned status: %s", result.Status)
	}
	return &result, nil
}

// addressFromComponents picks street, city and zip out of Google's address components
func addressFromComponents(components []addressComponent) models.Address {
	var number, route, city, zip string
	for _, c := range components {
		switch {
		case hasType(c, "street_number"):
			number = c.LongName
		case hasType(c, "route"):
			route = c.ShortName
		case hasType(c, "locality"):
			city = c.LongName
		case hasType(c, "postal_town") && city == "":
			city = c.LongName
		case hasType(c, "postal_code"):
			zip = c.LongName
		}
	}
	return models.Address{
		Street: strings.TrimSpace(number + " " + route),
		City:   city,
		Zip:    zip,
	}
}

func hasType(c addressComponent, t string) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}
