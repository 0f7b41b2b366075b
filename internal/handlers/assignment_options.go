package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

// AssignmentOptions is everything the assignment picker offers
type AssignmentOptions struct {
	Users        []models.AssignableUser  `json:"users"`
	ActiveShifts []models.AssignableShift `json:"active_shifts"`
	FutureShifts []models.AssignableShift `json:"future_shifts"`
}

// GetAssignmentOptions returns the users and shifts a move can be assigned to
func GetAssignmentOptions(users UserStore, shifts ShiftStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			userList  []models.User
			shiftList []models.AssignableShift
		)

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			userList, err = users.ListUsers(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			shiftList, err = shifts.ListAssignableShifts(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Error().Err(err).Msg("❌ Failed to load assignment options")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load assignment options")
			return
		}

		resp := AssignmentOptions{
			Users:        make([]models.AssignableUser, 0, len(userList)),
			ActiveShifts: []models.AssignableShift{},
			FutureShifts: []models.AssignableShift{},
		}
		for i := range userList {
			resp.Users = append(resp.Users, userList[i].ToAssignableUser())
		}
		for _, s := range shiftList {
			shift := models.Shift{Status: s.Status}
			switch {
			case shift.IsInProgress():
				resp.ActiveShifts = append(resp.ActiveShifts, s)
			case shift.IsFuture():
				resp.FutureShifts = append(resp.FutureShifts, s)
			}
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
