package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"binfleet-backend/internal/database"
	"binfleet-backend/internal/models"
	"binfleet-backend/pkg/utils"
)

// tokenTTL is how long a login token stays valid
const tokenTTL = 7 * 24 * time.Hour

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func Login(users UserStore, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		log.Info().Str("email", req.Email).Msg("🔐 Login attempt")

		user, err := users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Error().Err(err).Msg("❌ Failed to look up user")
				utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
				return
			}
			log.Warn().Str("email", req.Email).Msg("❌ User not found")
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Warn().Str("email", req.Email).Msg("❌ Invalid password")
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
			"iat":     now.Unix(),
			"exp":     now.Add(tokenTTL).Unix(),
		})

		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to create token")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Info().Str("email", user.Email).Str("role", user.Role).Msg("✅ Login successful")

		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}
