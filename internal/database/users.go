package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"binfleet-backend/internal/models"
)

const userColumns = `id, email, password, name, role, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Create inserts a user. passwordHash must already be bcrypt-hashed.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash, name, role string) (*models.User, error) {
	now := time.Now().Unix()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  passwordHash,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password, name, role, created_at, updated_at)
		VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
	`, user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// LatestFCMToken returns the newest push token for a user, or ErrNotFound
func (r *UserRepository) LatestFCMToken(ctx context.Context, userID string) (*models.FCMToken, error) {
	var token models.FCMToken
	err := r.db.GetContext(ctx, &token, `
		SELECT id, user_id, token, device_type, created_at, updated_at
		FROM fcm_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fcm token: %w", err)
	}
	return &token, nil
}
