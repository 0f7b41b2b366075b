package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"binfleet-backend/internal/middleware"
)

// HandleWebSocket upgrades HTTP connection to WebSocket. The token comes from
// the query string since browsers cannot set headers on the upgrade request.
func HandleWebSocket(hub *Hub, jwtSecret string, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	key := []byte(jwtSecret)

	return func(w http.ResponseWriter, r *http.Request) {
		var userClaims middleware.UserClaims

		if tokenString := r.URL.Query().Get("token"); tokenString != "" {
			claims, err := middleware.ParseToken(tokenString, key)
			if err != nil {
				log.Warn().Err(err).Msg("❌ Invalid token in query parameter")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			userClaims = claims
		} else {
			var ok bool
			userClaims, ok = middleware.GetUserFromContext(r)
			if !ok {
				log.Warn().Msg("❌ No user in context for WebSocket connection")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("❌ WebSocket upgrade failed")
			return
		}

		client := NewClient(userClaims.UserID, userClaims.Role, conn, hub)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()

		log.Info().Str("user", userClaims.Email).Str("user_id", userClaims.UserID).
			Msg("✅ WebSocket connection established")
	}
}

// originChecker allows any origin when the list is empty or contains "*"
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
