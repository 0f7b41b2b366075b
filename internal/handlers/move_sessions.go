package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/middleware"
	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
	"binfleet-backend/internal/report"
	"binfleet-backend/internal/services"
	"binfleet-backend/internal/sessions"
	"binfleet-backend/internal/websocket"
	"binfleet-backend/pkg/utils"
)

// RoleNotifier pushes an event to every connected user with a role
type RoleNotifier interface {
	NotifyRole(role, eventType string, data interface{})
}

// MoveSessionHandler serves the bulk move workspace: selecting bins,
// configuring their moves, dropping relocation pins and running the batch.
type MoveSessionHandler struct {
	registry     *sessions.Registry
	bins         BinStore
	orchestrator *moves.Orchestrator
	lock         *services.BatchLock
	notifier     RoleNotifier
}

func NewMoveSessionHandler(registry *sessions.Registry, bins BinStore, orchestrator *moves.Orchestrator, lock *services.BatchLock, notifier RoleNotifier) *MoveSessionHandler {
	return &MoveSessionHandler{
		registry:     registry,
		bins:         bins,
		orchestrator: orchestrator,
		lock:         lock,
		notifier:     notifier,
	}
}

// Routes mounts the session endpoints under the caller's prefix
func (h *MoveSessionHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)

		r.Post("/bins", h.AddBins)
		r.Patch("/bins/{binId}", h.UpdateBin)
		r.Delete("/bins/{binId}", h.RemoveBin)
		r.Post("/apply-all", h.ApplyAll)

		r.Post("/relocations", h.DropPin)
		r.Get("/relocations", h.ListRelocations)
		r.Delete("/relocations", h.ResetRelocations)
		r.Delete("/relocations/{binId}", h.ResetRelocation)

		r.Post("/validate", h.Validate)
		r.Post("/execute", h.Execute)
		r.Get("/report.xlsx", h.Report)
	})
}

type createSessionRequest struct {
	BinIDs []string `json:"bin_ids"`
}

type addBinsRequest struct {
	BinIDs []string `json:"bin_ids" validate:"required,min=1,dive,required"`
}

type addBinsResponse struct {
	Session sessions.SessionView `json:"session"`
	Added   []string             `json:"added"`
	Missing []string             `json:"missing"`
}

// Create opens a session, optionally selecting bins straight away
func (h *MoveSessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var bins []models.Bin
	var missing []string
	if len(req.BinIDs) > 0 {
		var err error
		bins, missing, err = h.bins.GetBinsByIDs(r.Context(), req.BinIDs)
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to load bins for move session")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load bins")
			return
		}
	}

	claims, _ := middleware.GetUserFromContext(r)
	s := h.registry.Create(claims.UserID)
	added := s.AddBins(bins)

	utils.RespondJSON(w, http.StatusCreated, addBinsResponse{
		Session: s.View(),
		Added:   nonNil(added),
		Missing: nonNil(missing),
	})
}

func (h *MoveSessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, s.View())
}

func (h *MoveSessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Delete(chi.URLParam(r, "id")) {
		utils.RespondError(w, http.StatusNotFound, "Move session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBins selects bins by id. Ids that do not exist are reported back, not
// treated as an error.
func (h *MoveSessionHandler) AddBins(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addBinsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bins, missing, err := h.bins.GetBinsByIDs(r.Context(), req.BinIDs)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("❌ Failed to load bins for move session")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load bins")
		return
	}

	added := s.AddBins(bins)
	utils.RespondJSON(w, http.StatusOK, addBinsResponse{
		Session: s.View(),
		Added:   nonNil(added),
		Missing: nonNil(missing),
	})
}

// configPatchRequest is the wire form of moves.ConfigPatch. Dates travel as
// unix seconds.
type configPatchRequest struct {
	MoveType      *string                    `json:"move_type,omitempty" validate:"omitempty,oneof=store relocation"`
	ScheduledDate *int64                     `json:"scheduled_date,omitempty" validate:"omitempty,gt=0"`
	Destination   *moves.Destination         `json:"destination,omitempty"`
	Reason        *string                    `json:"reason,omitempty"`
	Notes         *string                    `json:"notes,omitempty"`
	Assignment    *moves.AssignmentSelection `json:"assignment,omitempty"`
}

func (p configPatchRequest) toPatch() (moves.ConfigPatch, error) {
	var patch moves.ConfigPatch
	if p.MoveType != nil {
		t := moves.MoveType(*p.MoveType)
		patch.MoveType = &t
	}
	if p.ScheduledDate != nil {
		date := time.Unix(*p.ScheduledDate, 0)
		patch.ScheduledDate = &date
	}
	if p.Assignment != nil {
		if _, err := moves.ResolveAssignment(*p.Assignment); err != nil {
			return patch, err
		}
		patch.Assignment = p.Assignment
	}
	patch.Destination = p.Destination
	patch.Reason = p.Reason
	patch.Notes = p.Notes
	return patch, nil
}

func (h *MoveSessionHandler) UpdateBin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req configPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := s.Configs.Update(chi.URLParam(r, "binId"), patch)
	if errors.Is(err, moves.ErrNotConfigured) {
		utils.RespondError(w, http.StatusNotFound, "Bin is not in this session")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update move config")
		return
	}
	utils.RespondJSON(w, http.StatusOK, cfg)
}

func (h *MoveSessionHandler) RemoveBin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveBin(chi.URLParam(r, "binId"))
	utils.RespondJSON(w, http.StatusOK, s.View())
}

type applyAllRequest struct {
	MoveType      *string                    `json:"move_type,omitempty" validate:"omitempty,oneof=store relocation"`
	ScheduledDate *int64                     `json:"scheduled_date,omitempty" validate:"omitempty,gt=0"`
	Assignment    *moves.AssignmentSelection `json:"assignment,omitempty"`
}

// ApplyAll sets the move type, date or assignment on every selected bin
func (h *MoveSessionHandler) ApplyAll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req applyAllRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Assignment != nil {
		if _, err := moves.ResolveAssignment(*req.Assignment); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if req.MoveType != nil {
		s.Configs.ApplyMoveTypeToAll(moves.MoveType(*req.MoveType))
	}
	if req.ScheduledDate != nil {
		s.Configs.ApplyDateToAll(time.Unix(*req.ScheduledDate, 0))
	}
	if req.Assignment != nil {
		s.Configs.ApplyAssignmentToAll(*req.Assignment)
	}
	utils.RespondJSON(w, http.StatusOK, s.View())
}

type dropPinRequest struct {
	BinID  string   `json:"bin_id" validate:"required"`
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng    *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Select bool     `json:"select"`
}

// DropPin records a relocation pin for a bin. The address arrives later over
// the websocket once the reverse geocode settles. With select set, the bin
// joins the session (or switches to a relocation) using the pin as destination.
func (h *MoveSessionHandler) DropPin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dropPinRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// no plan (and no geocode) for a bin that does not exist
	bin, err := h.bins.GetBin(r.Context(), req.BinID)
	if err != nil {
		respondBinError(w, err)
		return
	}

	plan := s.Relocations.OnDrop(bin.ID, *req.Lat, *req.Lng)

	if req.Select {
		if _, selected := s.Bin(bin.ID); selected {
			relocation := moves.MoveTypeRelocation
			dest := moves.Destination{Latitude: req.Lat, Longitude: req.Lng}
			if _, err := s.Configs.Update(bin.ID, moves.ConfigPatch{MoveType: &relocation, Destination: &dest}); err != nil {
				log.Warn().Err(err).Str("bin_id", bin.ID).Msg("⚠️  Could not switch bin to relocation")
			}
		} else {
			s.AddBins([]models.Bin{*bin})
		}
	}

	utils.RespondJSON(w, http.StatusOK, plan)
}

func (h *MoveSessionHandler) ListRelocations(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, s.Relocations.Plans())
}

func (h *MoveSessionHandler) ResetRelocation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Relocations.Reset(chi.URLParam(r, "binId"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *MoveSessionHandler) ResetRelocations(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Relocations.ResetAll()
	w.WriteHeader(http.StatusNoContent)
}

type validateResponse struct {
	Valid    bool               `json:"valid"`
	Failures []moves.BinFailure `json:"failures"`
}

// Validate runs the pre-flight check without touching the database
func (h *MoveSessionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	failures := moves.ValidateConfigs(s.Bins(), s.Configs.Snapshot())
	if failures == nil {
		failures = []moves.BinFailure{}
	}
	utils.RespondJSON(w, http.StatusOK, validateResponse{Valid: len(failures) == 0, Failures: failures})
}

// Execute runs the bulk move for the session. A partial result is a 207 so
// the client knows to show the failure lists.
func (h *MoveSessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	release, err := h.lock.Acquire(r.Context(), s.ID)
	if errors.Is(err, services.ErrBatchInProgress) {
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("❌ Failed to take batch lock")
		utils.RespondError(w, http.StatusServiceUnavailable, "Could not start bulk move")
		return
	}
	defer release()

	run, err := s.Execute(r.Context(), h.orchestrator)
	if errors.Is(err, moves.ErrEmptyBatch) {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("❌ Bulk move failed")
		utils.RespondError(w, http.StatusInternalServerError, "Bulk move failed")
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyRole(models.RoleAdmin, websocket.EventBulkMoveCompleted, map[string]interface{}{
			"session_id":          s.ID,
			"created":             len(run.Result.Created),
			"assigned":            len(run.Result.Assigned),
			"creation_failures":   len(run.Result.CreationFailures),
			"assignment_failures": len(run.Result.AssignmentFailures),
		})
	}

	status := http.StatusOK
	if run.Result.HasFailures() {
		status = http.StatusMultiStatus
	}
	utils.RespondJSON(w, status, run.Result)
}

// Report downloads the last run as a spreadsheet
func (h *MoveSessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	run := s.LastRun()
	if run == nil {
		utils.RespondError(w, http.StatusNotFound, "No bulk move has run in this session")
		return
	}

	data, err := report.Generate(batchReport(s.ID, *run))
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("❌ Failed to build move report")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	filename := fmt.Sprintf("bulk-move-%s.xlsx", run.At.Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func batchReport(sessionID string, run sessions.Run) report.BatchReport {
	return report.BatchReport{
		SessionID:   sessionID,
		GeneratedAt: run.At,
		Bins:        run.Bins,
		Configs:     run.Configs,
		Result:      run.Result,
	}
}

func (h *MoveSessionHandler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	s, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Move session not found")
		return nil, false
	}
	return s, true
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
