package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Port           string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret string
}

type FirebaseConfig struct {
	CredentialsBase64 string
	CredentialsFile   string
}

type MovesConfig struct {
	Concurrency     int
	GeocodeDebounce time.Duration
	SessionTTL      time.Duration
	ExecuteLockTTL  time.Duration
}

type Config struct {
	Environment      string
	HTTP             HTTPConfig
	DatabaseURL      string
	RedisURL         string
	Auth             AuthConfig
	GoogleMapsAPIKey string
	Firebase         FirebaseConfig
	Moves            MovesConfig
}

// Load reads .env (when present) and then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("BULK_MOVE_CONCURRENCY", 8)
	v.SetDefault("GEOCODE_DEBOUNCE_MS", 400)
	v.SetDefault("MOVE_SESSION_TTL_MINUTES", 120)
	v.SetDefault("EXECUTE_LOCK_TTL_SECONDS", 120)

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Port:           v.GetString("PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),
		Auth: AuthConfig{
			JWTSecret: v.GetString("APP_JWT_SECRET"),
		},
		GoogleMapsAPIKey: v.GetString("GOOGLE_MAPS_API_KEY"),
		Firebase: FirebaseConfig{
			CredentialsBase64: v.GetString("FIREBASE_CREDENTIALS_BASE64"),
			CredentialsFile:   v.GetString("FIREBASE_CREDENTIALS_FILE"),
		},
		Moves: MovesConfig{
			Concurrency:     v.GetInt("BULK_MOVE_CONCURRENCY"),
			GeocodeDebounce: time.Duration(v.GetInt("GEOCODE_DEBOUNCE_MS")) * time.Millisecond,
			SessionTTL:      time.Duration(v.GetInt("MOVE_SESSION_TTL_MINUTES")) * time.Minute,
			ExecuteLockTTL:  time.Duration(v.GetInt("EXECUTE_LOCK_TTL_SECONDS")) * time.Second,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("APP_JWT_SECRET is required")
	}
	if cfg.Moves.Concurrency < 1 {
		return fmt.Errorf("BULK_MOVE_CONCURRENCY must be at least 1")
	}
	if cfg.Moves.GeocodeDebounce < 0 {
		return fmt.Errorf("GEOCODE_DEBOUNCE_MS must not be negative")
	}
	if cfg.Moves.SessionTTL <= 0 {
		return fmt.Errorf("MOVE_SESSION_TTL_MINUTES must be positive")
	}
	if cfg.Moves.ExecuteLockTTL <= 0 {
		return fmt.Errorf("EXECUTE_LOCK_TTL_SECONDS must be positive")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
