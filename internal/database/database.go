package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Info().Int("url_length", len(dbURL)).Msg("🔌 Connecting to database")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Error().Err(err).Str("stage", "connect").Msg("❌ Database connection failed")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Error().Err(err).Str("stage", "ping").Msg("❌ Database connection failed")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("✅ Database connection successful")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('driver', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create bins table
		`CREATE TABLE IF NOT EXISTS bins (
			id TEXT PRIMARY KEY,
			bin_number INT NOT NULL UNIQUE,
			current_street TEXT NOT NULL,
			city TEXT NOT NULL,
			zip TEXT NOT NULL,
			last_moved BIGINT,
			last_checked BIGINT,
			status TEXT NOT NULL,
			fill_percentage INT,
			checked BOOLEAN NOT NULL DEFAULT FALSE,
			move_requested BOOLEAN NOT NULL DEFAULT FALSE,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Reason recorded with the last justified edit
		`ALTER TABLE bins ADD COLUMN IF NOT EXISTS reason_category TEXT`,
		`ALTER TABLE bins ADD COLUMN IF NOT EXISTS reason_notes TEXT`,

		`ALTER TABLE bins DROP CONSTRAINT IF EXISTS bins_status_check`,
		`ALTER TABLE bins ADD CONSTRAINT bins_status_check CHECK(status IN ('active', 'missing', 'retired', 'in_storage', 'pending_move', 'needs_check'))`,
		`CREATE INDEX IF NOT EXISTS idx_bins_status ON bins(status)`,

		// Create shifts table
		`CREATE TABLE IF NOT EXISTS shifts (
			id TEXT PRIMARY KEY,
			driver_id TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('ready', 'active', 'paused', 'ended', 'cancelled')),
			start_time BIGINT,
			end_time BIGINT,
			total_bins INT DEFAULT 0,
			completed_bins INT DEFAULT 0,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (driver_id) REFERENCES users(id) ON DELETE CASCADE,
			CHECK (completed_bins <= total_bins)
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create bin_move_requests table
		`CREATE TABLE IF NOT EXISTS bin_move_requests (
			id TEXT PRIMARY KEY,
			bin_id TEXT NOT NULL,
			scheduled_date BIGINT NOT NULL,
			urgency TEXT NOT NULL CHECK(urgency IN ('urgent', 'scheduled')),
			requested_by TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'assigned', 'in_progress', 'completed', 'cancelled')),
			original_latitude DOUBLE PRECISION NOT NULL,
			original_longitude DOUBLE PRECISION NOT NULL,
			original_address TEXT NOT NULL,
			new_latitude DOUBLE PRECISION,
			new_longitude DOUBLE PRECISION,
			new_address TEXT,
			move_type TEXT NOT NULL CHECK(move_type IN ('store', 'relocation')),
			reason TEXT,
			notes TEXT,
			assignment_type TEXT CHECK(assignment_type IN ('shift', 'manual')),
			assigned_shift_id TEXT,
			assigned_user_id TEXT,
			completed_at BIGINT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			FOREIGN KEY (requested_by) REFERENCES users(id) ON DELETE SET NULL,
			FOREIGN KEY (assigned_shift_id) REFERENCES shifts(id) ON DELETE SET NULL,
			FOREIGN KEY (assigned_user_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bin_move_requests_bin_id ON bin_move_requests(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bin_move_requests_status ON bin_move_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bin_move_requests_scheduled_date ON bin_move_requests(scheduled_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bin_move_requests_assigned_shift_id ON bin_move_requests(assigned_shift_id)`,

		// Create shift_bins table
		`CREATE TABLE IF NOT EXISTS shift_bins (
			id SERIAL PRIMARY KEY,
			shift_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			sequence_order INT NOT NULL,
			is_completed INT NOT NULL DEFAULT 0,
			completed_at BIGINT,
			stop_type TEXT NOT NULL DEFAULT 'collection' CHECK(stop_type IN ('collection', 'pickup', 'dropoff')),
			move_request_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (shift_id) REFERENCES shifts(id) ON DELETE CASCADE,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			FOREIGN KEY (move_request_id) REFERENCES bin_move_requests(id) ON DELETE SET NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_shift_bins_shift_id ON shift_bins(shift_id, sequence_order)`,
		`CREATE INDEX IF NOT EXISTS idx_shift_bins_move_request_id ON shift_bins(move_request_id)`,

		// Create move_request_history table (audit log)
		`CREATE TABLE IF NOT EXISTS move_request_history (
			id TEXT PRIMARY KEY,
			move_request_id TEXT NOT NULL,
			action_type TEXT NOT NULL CHECK(action_type IN ('created', 'assigned')),
			actor_id TEXT NOT NULL,
			actor_name TEXT NOT NULL,
			actor_role TEXT,
			new_assignment_type TEXT,
			new_assigned_user_id TEXT,
			new_assigned_user_name TEXT,
			new_assigned_shift_id TEXT,
			notes TEXT,
			created_at BIGINT NOT NULL,
			FOREIGN KEY (move_request_id) REFERENCES bin_move_requests(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_move_request_history_move_request_id ON move_request_history(move_request_id, created_at)`,

		// Create no_go_zones table
		`CREATE TABLE IF NOT EXISTS no_go_zones (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			center_latitude DOUBLE PRECISION NOT NULL,
			center_longitude DOUBLE PRECISION NOT NULL,
			radius_meters INT NOT NULL DEFAULT 500,
			conflict_score INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'monitoring', 'resolved')),
			created_by_user_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			resolved_by_user_id TEXT,
			resolved_at BIGINT,
			resolution_notes TEXT,
			FOREIGN KEY (created_by_user_id) REFERENCES users(id) ON DELETE SET NULL,
			FOREIGN KEY (resolved_by_user_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create zone_incidents table
		`CREATE TABLE IF NOT EXISTS zone_incidents (
			id TEXT PRIMARY KEY,
			zone_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			incident_type TEXT NOT NULL CHECK(incident_type IN ('missing', 'theft', 'vandalism', 'landlord_complaint', 'relocation_request')),
			reported_by_user_id TEXT,
			reported_at BIGINT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'resolved', 'investigating')),
			FOREIGN KEY (zone_id) REFERENCES no_go_zones(id) ON DELETE CASCADE,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			FOREIGN KEY (reported_by_user_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_zone_incidents_zone_id ON zone_incidents(zone_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Info().Int("statements", len(migrations)).Msg("✓ Database migrations completed")
	return nil
}
