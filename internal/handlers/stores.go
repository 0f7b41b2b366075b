package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"binfleet-backend/internal/database"
	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

var validate = validator.New()

// UserStore is the user persistence the handlers need
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash, name, role string) (*models.User, error)
}

// BinStore is the bin persistence the handlers need
type BinStore interface {
	ListBins(ctx context.Context) ([]models.Bin, error)
	GetBin(ctx context.Context, id string) (*models.Bin, error)
	GetBinsByIDs(ctx context.Context, ids []string) ([]models.Bin, []string, error)
	ApplyBinEdit(ctx context.Context, edit database.BinEdit) (*models.Bin, *models.NoGoZone, error)
}

// ZoneStore lists no-go zones
type ZoneStore interface {
	ListZones(ctx context.Context, status string) ([]models.NoGoZone, error)
	ListIncidents(ctx context.Context, zoneID string) ([]models.ZoneIncident, error)
}

// ShiftStore lists shifts a move can be added to
type ShiftStore interface {
	ListAssignableShifts(ctx context.Context) ([]models.AssignableShift, error)
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(r, dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		utils.RespondValidation(w, err)
		return false
	}
	return true
}

// statusFor maps repository errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, database.ErrBinHasNoLocation), errors.Is(err, database.ErrInvalidState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
