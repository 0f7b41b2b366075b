package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/binedit"
	"binfleet-backend/internal/database"
	"binfleet-backend/internal/middleware"
	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

// GetBins returns all bins
func GetBins(bins BinStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := bins.ListBins(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to list bins")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list bins")
			return
		}

		resp := make([]models.BinResponse, 0, len(list))
		for i := range list {
			resp = append(resp, list[i].ToBinResponse())
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

func GetBin(bins BinStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bin, err := bins.GetBin(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondBinError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, bin.ToBinResponse())
	}
}

// ClassifyBinEdit tells the client which justification a proposed edit needs
// before it is submitted
func ClassifyBinEdit(bins BinStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var proposed models.ProposedBinState
		if !decodeAndValidate(w, r, &proposed) {
			return
		}

		bin, err := bins.GetBin(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondBinError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, binedit.Classify(*bin, proposed))
	}
}

// GetReasonCatalog lists the reasons an operator can pick by hand
func GetReasonCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, binedit.SelectableOptions())
	}
}

type UpdateBinResponse struct {
	Success        bool                         `json:"success"`
	Bin            models.BinResponse           `json:"bin"`
	Zone           *models.NoGoZoneResponse     `json:"zone,omitempty"`
	Classification binedit.ClassificationResult `json:"classification"`
}

type justificationError struct {
	Success        bool                         `json:"success"`
	Error          string                       `json:"error"`
	Classification binedit.ClassificationResult `json:"classification"`
}

// UpdateBin saves an edit once its justification checks out. Incident reasons
// open a no-go zone at the bin's old spot in the same transaction.
func UpdateBin(bins BinStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.UpdateBinRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		bin, err := bins.GetBin(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondBinError(w, err)
			return
		}

		classification := binedit.Classify(*bin, req.ProposedBinState)

		var chosen *binedit.ReasonCategory
		if req.ReasonCategory != nil {
			c := binedit.ReasonCategory(*req.ReasonCategory)
			chosen = &c
		}
		category, err := binedit.CheckJustification(classification, binedit.Justification{
			Category:   chosen,
			Notes:      req.ReasonNotes,
			CreateZone: req.CreateNoGoZone,
		})
		if err != nil {
			utils.RespondJSON(w, http.StatusBadRequest, justificationError{
				Success:        false,
				Error:          err.Error(),
				Classification: classification,
			})
			return
		}

		edit := database.BinEdit{
			BinID:    bin.ID,
			Proposed: req.ProposedBinState,
			Moved:    classification.Diff.LocationChanged(),
		}
		if claims, ok := middleware.GetUserFromContext(r); ok {
			edit.ActorID = claims.UserID
		}
		if category != nil {
			c := string(*category)
			edit.ReasonCategory = &c
			edit.ReasonNotes = req.ReasonNotes
			edit.Zone = binedit.ZoneFor(*bin, *category, req.CreateNoGoZone)
		}

		updated, zone, err := bins.ApplyBinEdit(r.Context(), edit)
		if err != nil {
			respondBinError(w, err)
			return
		}

		logEvent := log.Info().Str("bin_id", bin.ID).Int("bin_number", updated.BinNumber).Str("rule", classification.Rule)
		if category != nil {
			logEvent = logEvent.Str("reason", string(*category))
		}
		logEvent.Msg("✏️ Bin updated")

		resp := UpdateBinResponse{
			Success:        true,
			Bin:            updated.ToBinResponse(),
			Classification: classification,
		}
		if zone != nil {
			zr := zone.ToResponse()
			resp.Zone = &zr
			log.Info().Str("zone_id", zone.ID).Str("bin_id", bin.ID).Msg("🚫 No-go zone created")
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

func respondBinError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	switch {
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, status, "Bin not found")
	case errors.Is(err, database.ErrDuplicate):
		utils.RespondError(w, status, err.Error())
	default:
		log.Error().Err(err).Msg("❌ Bin request failed")
		utils.RespondError(w, status, "Failed to process bin request")
	}
}
