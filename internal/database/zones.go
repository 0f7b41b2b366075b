package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"binfleet-backend/internal/binedit"
	"binfleet-backend/internal/models"
)

type ZoneRepository struct {
	db *sqlx.DB
}

func NewZoneRepository(db *sqlx.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// ListZones returns zones, optionally filtered by status
func (r *ZoneRepository) ListZones(ctx context.Context, status string) ([]models.NoGoZone, error) {
	query := `
		SELECT id, name, center_latitude, center_longitude, radius_meters, conflict_score, status,
		       created_by_user_id, created_at, updated_at, resolved_by_user_id, resolved_at, resolution_notes
		FROM no_go_zones
	`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	zones := []models.NoGoZone{}
	if err := r.db.SelectContext(ctx, &zones, query, args...); err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

func (r *ZoneRepository) ListIncidents(ctx context.Context, zoneID string) ([]models.ZoneIncident, error) {
	incidents := []models.ZoneIncident{}
	err := r.db.SelectContext(ctx, &incidents, `
		SELECT id, zone_id, bin_id, incident_type, reported_by_user_id, reported_at, description, status
		FROM zone_incidents
		WHERE zone_id = $1
		ORDER BY reported_at DESC
	`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list zone incidents: %w", err)
	}
	return incidents, nil
}

// createZoneWithIncident opens a no-go zone and records the bin incident behind it
func createZoneWithIncident(ctx context.Context, tx *sqlx.Tx, binID, actorID string, notes *string, plan binedit.ZonePlan, now int64) (*models.NoGoZone, error) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	zone := models.NoGoZone{
		ID:              uuid.New().String(),
		Name:            plan.Name,
		CenterLatitude:  plan.Latitude,
		CenterLongitude: plan.Longitude,
		RadiusMeters:    plan.RadiusMeters,
		ConflictScore:   1,
		Status:          "active",
		CreatedByUserID: actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO no_go_zones (id, name, center_latitude, center_longitude, radius_meters,
			conflict_score, status, created_by_user_id, created_at, updated_at)
		VALUES (:id, :name, :center_latitude, :center_longitude, :radius_meters,
			:conflict_score, :status, :created_by_user_id, :created_at, :updated_at)
	`, zone)
	if err != nil {
		return nil, fmt.Errorf("insert zone: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO zone_incidents (id, zone_id, bin_id, incident_type, reported_by_user_id, reported_at, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'open')
	`, uuid.New().String(), zone.ID, binID, string(plan.Category), actor, now, notes)
	if err != nil {
		return nil, fmt.Errorf("insert zone incident: %w", err)
	}
	return &zone, nil
}
