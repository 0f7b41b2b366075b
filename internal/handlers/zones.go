package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

// GetNoGoZones lists zones, optionally filtered with ?status=
func GetNoGoZones(zones ZoneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		switch status {
		case "", "active", "monitoring", "resolved":
		default:
			utils.RespondError(w, http.StatusBadRequest, "status must be active, monitoring or resolved")
			return
		}

		list, err := zones.ListZones(r.Context(), status)
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to list zones")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list zones")
			return
		}

		resp := make([]models.NoGoZoneResponse, 0, len(list))
		for i := range list {
			resp = append(resp, list[i].ToResponse())
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

func GetZoneIncidents(zones ZoneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidents, err := zones.ListIncidents(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to list zone incidents")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list zone incidents")
			return
		}
		utils.RespondJSON(w, http.StatusOK, incidents)
	}
}
