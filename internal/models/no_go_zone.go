package models

import "time"

type NoGoZone struct {
	ID               string  `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	CenterLatitude   float64 `json:"center_latitude" db:"center_latitude"`
	CenterLongitude  float64 `json:"center_longitude" db:"center_longitude"`
	RadiusMeters     int     `json:"radius_meters" db:"radius_meters"`
	ConflictScore    int     `json:"conflict_score" db:"conflict_score"`
	Status           string  `json:"status" db:"status"` // active, monitoring, resolved
	CreatedByUserID  *string `json:"created_by_user_id" db:"created_by_user_id"`
	CreatedAt        int64   `json:"created_at" db:"created_at"`
	UpdatedAt        int64   `json:"updated_at" db:"updated_at"`
	ResolvedByUserID *string `json:"resolved_by_user_id" db:"resolved_by_user_id"`
	ResolvedAt       *int64  `json:"resolved_at" db:"resolved_at"`
	ResolutionNotes  *string `json:"resolution_notes" db:"resolution_notes"`
}

type ZoneIncident struct {
	ID               string  `json:"id" db:"id"`
	ZoneID           string  `json:"zone_id" db:"zone_id"`
	BinID            string  `json:"bin_id" db:"bin_id"`
	IncidentType     string  `json:"incident_type" db:"incident_type"` // the reason category that triggered the zone
	ReportedByUserID *string `json:"reported_by_user_id" db:"reported_by_user_id"`
	ReportedAt       int64   `json:"reported_at" db:"reported_at"`
	Description      *string `json:"description" db:"description"`
	Status           string  `json:"status" db:"status"` // open, resolved, investigating
}

// Response DTOs with ISO timestamps
type NoGoZoneResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CenterLatitude   float64 `json:"center_latitude"`
	CenterLongitude  float64 `json:"center_longitude"`
	RadiusMeters     int     `json:"radius_meters"`
	ConflictScore    int     `json:"conflict_score"`
	Status           string  `json:"status"`
	CreatedByUserID  *string `json:"created_by_user_id,omitempty"`
	CreatedAtIso     string  `json:"created_at_iso"`
	UpdatedAtIso     string  `json:"updated_at_iso"`
	ResolvedByUserID *string `json:"resolved_by_user_id,omitempty"`
	ResolvedAtIso    *string `json:"resolved_at_iso,omitempty"`
	ResolutionNotes  *string `json:"resolution_notes,omitempty"`
}

func (z *NoGoZone) ToResponse() NoGoZoneResponse {
	resp := NoGoZoneResponse{
		ID:               z.ID,
		Name:             z.Name,
		CenterLatitude:   z.CenterLatitude,
		CenterLongitude:  z.CenterLongitude,
		RadiusMeters:     z.RadiusMeters,
		ConflictScore:    z.ConflictScore,
		Status:           z.Status,
		CreatedByUserID:  z.CreatedByUserID,
		CreatedAtIso:     time.Unix(z.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAtIso:     time.Unix(z.UpdatedAt, 0).Format(time.RFC3339),
		ResolvedByUserID: z.ResolvedByUserID,
		ResolutionNotes:  z.ResolutionNotes,
	}

	if z.ResolvedAt != nil {
		iso := time.Unix(*z.ResolvedAt, 0).Format(time.RFC3339)
		resp.ResolvedAtIso = &iso
	}

	return resp
}
