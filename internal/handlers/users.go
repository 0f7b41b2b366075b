package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"binfleet-backend/internal/database"
	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=driver admin"`
}

type CreateUserResponse struct {
	Success bool                 `json:"success"`
	User    *models.UserResponse `json:"user,omitempty"`
	Message string               `json:"message,omitempty"`
}

// CreateUser creates a driver or admin account
func CreateUser(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to hash password")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		user, err := users.Create(r.Context(), req.Email, string(hashedPassword), req.Name, req.Role)
		if err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				utils.RespondError(w, http.StatusConflict, "User with this email already exists")
				return
			}
			log.Error().Err(err).Msg("❌ Failed to create user")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Info().Str("email", user.Email).Str("role", user.Role).Msg("✅ User created")

		resp := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusCreated, CreateUserResponse{
			Success: true,
			User:    &resp,
			Message: "User created successfully",
		})
	}
}

// ListUsers returns every account without password hashes
func ListUsers(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.ListUsers(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to list users")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list users")
			return
		}

		resp := make([]models.UserResponse, 0, len(list))
		for i := range list {
			resp = append(resp, list[i].ToUserResponse())
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
