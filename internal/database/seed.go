package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"binfleet-backend/internal/models"
)

type seedBin struct {
	number   int
	street   string
	city     string
	zip      string
	fill     int
	lat, lng float64
}

var seedBins = []seedBin{
	{1, "1500 Marilla St", "Dallas", "75201", 45, 32.7767, -96.7970},
	{2, "2201 N Field St", "Dallas", "75201", 67, 32.7895, -96.8053},
	{3, "3000 Swiss Ave", "Dallas", "75204", 23, 32.7923, -96.7794},
	{4, "1909 Woodall Rodgers Fwy", "Dallas", "75201", 89, 32.7896, -96.8010},
	{5, "400 S Ervay St", "Dallas", "75201", 12, 32.7774, -96.7977},
	{6, "2800 Routh St", "Dallas", "75201", 78, 32.8005, -96.8002},
	{7, "1717 Main St", "Dallas", "75201", 56, 32.7812, -96.7976},
	{8, "3400 Oak Lawn Ave", "Dallas", "75219", 34, 32.8123, -96.8105},
	{9, "5500 Greenville Ave", "Dallas", "75206", 91, 32.8478, -96.7696},
	{10, "4900 Bryan St", "Dallas", "75206", 15, 32.8037, -96.7709},
	{11, "1201 Elm St", "Dallas", "75270", 82, 32.7810, -96.8003},
	{12, "2500 Victory Ave", "Dallas", "75219", 47, 32.7887, -96.8101},
}

func SeedBins(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}
	if count > 0 {
		log.Info().Int("bins", count).Msg("✓ Bins already seeded, skipping...")
		return nil
	}

	log.Info().Int("bins", len(seedBins)).Msg("🌱 Seeding bins...")

	for _, b := range seedBins {
		_, err := db.Exec(`
			INSERT INTO bins (id, bin_number, current_street, city, zip, status, fill_percentage, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.New().String(), b.number, b.street, b.city, b.zip, models.BinStatusActive, b.fill, b.lat, b.lng)
		if err != nil {
			return err
		}
	}

	log.Info().Msg("✓ Successfully seeded bins")
	return nil
}

type seedUser struct {
	email    string
	name     string
	role     string
	password string
}

var seedUsers = []seedUser{
	{"admin@binfleet.dev", "Admin User", "admin", "admin123"},
	{"dispatch@binfleet.dev", "Dispatch Desk", "admin", "admin123"},
	{"maria@binfleet.dev", "Maria Driver", "driver", "driver123"},
	{"sam@binfleet.dev", "Sam Driver", "driver", "driver123"},
}

// SeedUsers inserts the default accounts that are missing, so it is safe to rerun
func SeedUsers(db *sqlx.DB) error {
	log.Info().Msg("🌱 Seeding users...")

	for _, u := range seedUsers {
		var exists bool
		if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", u.email); err != nil {
			return err
		}
		if exists {
			log.Info().Str("email", u.email).Msg("  ⏭️  User already exists")
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), u.email, string(hash), u.name, u.role)
		if err != nil {
			return err
		}
		log.Info().Str("email", u.email).Str("role", u.role).Msg("  ✓ Created user")
	}
	return nil
}

// SeedShifts gives each driver one shift so the assignment options are not empty:
// the first driver gets an active shift with a few stops, the rest a ready one.
func SeedShifts(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM shifts"); err != nil {
		return err
	}
	if count > 0 {
		log.Info().Msg("✓ Shifts already seeded, skipping...")
		return nil
	}

	var drivers []string
	if err := db.Select(&drivers, "SELECT id FROM users WHERE role = 'driver' ORDER BY email"); err != nil {
		return err
	}
	var binIDs []string
	if err := db.Select(&binIDs, "SELECT id FROM bins ORDER BY bin_number LIMIT 4"); err != nil {
		return err
	}

	now := time.Now().Unix()
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, driverID := range drivers {
		shiftID := uuid.New().String()
		status := models.ShiftStatusReady
		stops := []string{}
		if i == 0 {
			status = models.ShiftStatusActive
			stops = binIDs
		}

		_, err := tx.Exec(`
			INSERT INTO shifts (id, driver_id, status, start_time, total_bins, completed_bins, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
		`, shiftID, driverID, status, startTime(status, now), len(stops), now)
		if err != nil {
			return err
		}
		for seq, binID := range stops {
			if _, err := tx.Exec(`
				INSERT INTO shift_bins (shift_id, bin_id, sequence_order, created_at)
				VALUES ($1, $2, $3, $4)
			`, shiftID, binID, seq+1, now); err != nil {
				return err
			}
		}
		log.Info().Str("shift_id", shiftID).Str("status", string(status)).Int("stops", len(stops)).Msg("  ✓ Created shift")
	}

	return tx.Commit()
}

func startTime(status models.ShiftStatus, now int64) *int64 {
	if status == models.ShiftStatusActive {
		return &now
	}
	return nil
}
