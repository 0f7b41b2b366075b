package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"binfleet-backend/internal/models"
)

type fakeZoneStore struct {
	zones      []models.NoGoZone
	lastStatus string
}

func (s *fakeZoneStore) ListZones(_ context.Context, status string) ([]models.NoGoZone, error) {
	s.lastStatus = status
	var out []models.NoGoZone
	for _, z := range s.zones {
		if status == "" || z.Status == status {
			out = append(out, z)
		}
	}
	return out, nil
}

func (s *fakeZoneStore) ListIncidents(context.Context, string) ([]models.ZoneIncident, error) {
	return nil, nil
}

func TestGetNoGoZones(t *testing.T) {
	store := &fakeZoneStore{zones: []models.NoGoZone{
		{ID: "z1", Status: "active"},
		{ID: "z2", Status: "resolved"},
	}}

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"", http.StatusOK, 2},
		{"?status=active", http.StatusOK, 1},
		{"?status=archived", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		GetNoGoZones(store)(rec, httptest.NewRequest(http.MethodGet, "/api/no-go-zones"+tc.query, nil))
		if rec.Code != tc.status {
			t.Fatalf("%q: status = %d, want %d", tc.query, rec.Code, tc.status)
		}
		if tc.status != http.StatusOK {
			continue
		}
		var resp []models.NoGoZoneResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp) != tc.count {
			t.Fatalf("%q: got %d zones, want %d", tc.query, len(resp), tc.count)
		}
	}
}
