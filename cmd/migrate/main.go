package main

import (
	"os"

	"github.com/joho/godotenv"

	"binfleet-backend/internal/database"
	"binfleet-backend/internal/logger"
)

// Creates the schema and loads the demo users, bins and shifts. Every step
// skips what already exists, so it is safe to rerun.
func main() {
	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("No .env file found, using environment variables\n")
	}

	log := logger.New(os.Getenv("APP_ENV"))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"users", func() error { return database.SeedUsers(db) }},
		{"bins", func() error { return database.SeedBins(db) }},
		{"shifts", func() error { return database.SeedShifts(db) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			log.Fatal().Err(err).Str("step", step.name).Msg("Seeding failed")
		}
	}

	log.Info().Msg("✅ Migration completed successfully!")
}
