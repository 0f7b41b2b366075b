package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"binfleet-backend/internal/binedit"
	"binfleet-backend/internal/models"
)

const binColumns = `id, bin_number, current_street, city, zip, last_moved, last_checked, status,
	fill_percentage, checked, move_requested, latitude, longitude, reason_category, reason_notes,
	created_at, updated_at`

type BinRepository struct {
	db *sqlx.DB
}

func NewBinRepository(db *sqlx.DB) *BinRepository {
	return &BinRepository{db: db}
}

func (r *BinRepository) ListBins(ctx context.Context) ([]models.Bin, error) {
	bins := []models.Bin{}
	err := r.db.SelectContext(ctx, &bins, `SELECT `+binColumns+` FROM bins ORDER BY bin_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	return bins, nil
}

func (r *BinRepository) GetBin(ctx context.Context, id string) (*models.Bin, error) {
	var bin models.Bin
	err := r.db.GetContext(ctx, &bin, `SELECT `+binColumns+` FROM bins WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bin: %w", err)
	}
	return &bin, nil
}

// GetBinsByIDs returns the bins in the order of ids. Unknown ids are reported
// back in missing instead of failing the whole lookup.
func (r *BinRepository) GetBinsByIDs(ctx context.Context, ids []string) (bins []models.Bin, missing []string, err error) {
	if len(ids) == 0 {
		return []models.Bin{}, nil, nil
	}

	var found []models.Bin
	err = r.db.SelectContext(ctx, &found, `SELECT `+binColumns+` FROM bins WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, nil, fmt.Errorf("get bins: %w", err)
	}

	byID := make(map[string]models.Bin, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	bins = make([]models.Bin, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			bins = append(bins, b)
		} else {
			missing = append(missing, id)
		}
	}
	return bins, missing, nil
}

// BinEdit is a justified change to a bin, with the zone it may create
type BinEdit struct {
	BinID          string
	Proposed       models.ProposedBinState
	Moved          bool
	ReasonCategory *string
	ReasonNotes    *string
	Zone           *binedit.ZonePlan
	ActorID        string
}

// ApplyBinEdit saves the edit and, when Zone is set, opens a no-go zone with an
// incident for the bin in the same transaction
func (r *BinRepository) ApplyBinEdit(ctx context.Context, edit BinEdit) (*models.Bin, *models.NoGoZone, error) {
	now := time.Now().Unix()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p := edit.Proposed
	res, err := tx.ExecContext(ctx, `
		UPDATE bins
		SET bin_number = $1, current_street = $2, city = $3, zip = $4, status = $5,
		    fill_percentage = $6,
		    latitude = COALESCE($7, latitude), longitude = COALESCE($8, longitude),
		    last_moved = CASE WHEN $9 THEN $10 ELSE last_moved END,
		    reason_category = COALESCE($11, reason_category),
		    reason_notes = COALESCE($12, reason_notes),
		    updated_at = $10
		WHERE id = $13
	`, p.BinNumber, p.CurrentStreet, p.City, p.Zip, p.Status, p.FillPercentage,
		p.Latitude, p.Longitude, edit.Moved, now, edit.ReasonCategory, edit.ReasonNotes, edit.BinID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, nil, fmt.Errorf("%w: bin number %d is taken", ErrDuplicate, p.BinNumber)
		}
		return nil, nil, fmt.Errorf("update bin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil, ErrNotFound
	}

	var zone *models.NoGoZone
	if edit.Zone != nil {
		zone, err = createZoneWithIncident(ctx, tx, edit.BinID, edit.ActorID, edit.ReasonNotes, *edit.Zone, now)
		if err != nil {
			return nil, nil, err
		}
	}

	var bin models.Bin
	if err := tx.GetContext(ctx, &bin, `SELECT `+binColumns+` FROM bins WHERE id = $1`, edit.BinID); err != nil {
		return nil, nil, fmt.Errorf("reload bin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &bin, zone, nil
}
