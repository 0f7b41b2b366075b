package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"binfleet-backend/internal/config"
	"binfleet-backend/internal/database"
	"binfleet-backend/internal/handlers"
	"binfleet-backend/internal/logger"
	"binfleet-backend/internal/middleware"
	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
	"binfleet-backend/internal/services"
	"binfleet-backend/internal/sessions"
	"binfleet-backend/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	log.Info().Msg("🚀 BINFLEET BACKEND SERVER STARTING")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ FATAL ERROR: Database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("❌ FATAL ERROR: Database migrations failed")
	}

	rdb, locker, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ FATAL ERROR: Redis connection failed")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	users := database.NewUserRepository(db)
	bins := database.NewBinRepository(db)
	zones := database.NewZoneRepository(db)
	shifts := database.NewShiftRepository(db)
	moveRequests := database.NewMoveRequestRepository(db)

	geocoding, err := services.NewGeocodingService(cfg.GoogleMapsAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ FATAL ERROR: Geocoding service unavailable")
	}
	geocoder := services.NewCachedGeocoder(geocoding, rdb)

	fcm := initFCM(cfg, log)

	// the hub outlives ctx so in-flight batches can still notify while the
	// server drains; it stops after Shutdown returns
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)
	log.Info().Msg("✅ WebSocket hub started")

	registry := sessions.NewRegistry(geocoder, cfg.Moves.GeocodeDebounce, cfg.Moves.SessionTTL, log)
	registry.OnPlanResolved = func(s *sessions.Session, plan models.RelocationPlan) {
		hub.Notify(s.OwnerID, websocket.EventRelocationPlanUpdated, map[string]interface{}{
			"session_id": s.ID,
			"plan":       plan,
		})
	}

	gateway := services.NewMoveGateway(db, moveRequests, users, bins, hub, fcm, log)
	orchestrator := moves.NewOrchestrator(gateway, cfg.Moves.Concurrency, log)
	sessionHandler := handlers.NewMoveSessionHandler(registry, bins, orchestrator, services.NewBatchLock(locker, cfg.Moves.ExecuteLockTTL), hub)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Post("/api/auth/login", handlers.Login(users, cfg.Auth.JWTSecret))

	// token travels as a query param, the handler checks it
	r.Get("/ws", websocket.HandleWebSocket(hub, cfg.Auth.JWTSecret, cfg.HTTP.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Post("/geocoding/reverse", handlers.ReverseGeocode(geocoder))
		r.Post("/geocoding/forward", handlers.Geocode(geocoding))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth.JWTSecret))

			r.Get("/bins", handlers.GetBins(bins))
			r.Get("/bins/reasons", handlers.GetReasonCatalog())
			r.Get("/bins/{id}", handlers.GetBin(bins))
			r.Post("/bins/{id}/classify", handlers.ClassifyBinEdit(bins))
			r.Patch("/bins/{id}", handlers.UpdateBin(bins))
			r.Get("/bins/{id}/move-requests", handlers.GetBinMoveRequests(moveRequests))

			r.Get("/no-go-zones", handlers.GetNoGoZones(zones))
			r.Get("/no-go-zones/{id}/incidents", handlers.GetZoneIncidents(zones))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth.JWTSecret))
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Get("/manager/assignment-options", handlers.GetAssignmentOptions(users, shifts))
			r.Route("/manager/move-sessions", sessionHandler.Routes)

			r.Get("/manager/move-requests/{id}", handlers.GetMoveRequest(moveRequests))
			r.Get("/manager/move-requests/{id}/history", handlers.GetMoveRequestHistory(db))

			r.Get("/users", handlers.ListUsers(users))
			r.Post("/users", handlers.CreateUser(users))
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTP.Port).Msg("🚀 Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ FATAL ERROR: Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	registry.Close()
	stopHub()
}

// initFCM returns nil when no credentials are configured; push is optional
func initFCM(cfg *config.Config, log zerolog.Logger) *services.FCMService {
	if cfg.Firebase.CredentialsBase64 != "" {
		fcm, err := services.NewFCMServiceFromBase64(cfg.Firebase.CredentialsBase64)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to initialize FCM from base64 (push notifications disabled)")
			return nil
		}
		log.Info().Msg("✅ Firebase Cloud Messaging initialized from base64 credentials")
		return fcm
	}

	file := cfg.Firebase.CredentialsFile
	if file == "" {
		file = "./firebase-service-account.json"
	}
	fcm, err := services.NewFCMService(file)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Failed to initialize FCM from file (push notifications disabled)")
		return nil
	}
	log.Info().Msg("✅ Firebase Cloud Messaging initialized from file")
	return fcm
}
