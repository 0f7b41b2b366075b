package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/helpers"
	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

// MoveRequestReader reads persisted move requests
type MoveRequestReader interface {
	GetMoveRequest(ctx context.Context, id string) (*models.BinMoveRequest, error)
	ListByBin(ctx context.Context, binID string) ([]models.BinMoveRequest, error)
}

// GetMoveRequest returns one move request
func GetMoveRequest(moves MoveRequestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		move, err := moves.GetMoveRequest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := statusFor(err)
			if status == http.StatusNotFound {
				utils.RespondError(w, status, "Move request not found")
				return
			}
			log.Error().Err(err).Msg("❌ Failed to fetch move request")
			utils.RespondError(w, status, "Failed to fetch move request")
			return
		}
		utils.RespondJSON(w, http.StatusOK, move.ToBinMoveRequestResponse())
	}
}

// GetBinMoveRequests lists the move requests made for a bin
func GetBinMoveRequests(moves MoveRequestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := moves.ListByBin(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to list move requests")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list move requests")
			return
		}
		resp := make([]models.BinMoveRequestResponse, 0, len(list))
		for i := range list {
			resp = append(resp, list[i].ToBinMoveRequestResponse())
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

// GetMoveRequestHistory returns the audit trail of a move request
func GetMoveRequestHistory(db sqlx.QueryerContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := helpers.GetMoveRequestHistory(r.Context(), db, chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch move request history")
			return
		}
		if history == nil {
			history = []models.MoveRequestHistoryResponse{}
		}
		utils.RespondJSON(w, http.StatusOK, history)
	}
}
