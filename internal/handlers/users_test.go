package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"binfleet-backend/internal/database"
	"binfleet-backend/internal/middleware"
	"binfleet-backend/internal/models"
)

type fakeUserStore struct {
	users   map[string]models.User
	listErr error
}

func newFakeUserStore(t *testing.T, password string, users ...models.User) *fakeUserStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		u.Password = string(hash)
		s.users[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) ListUsers(context.Context) ([]models.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, name, role string) (*models.User, error) {
	if _, ok := s.users[email]; ok {
		return nil, database.ErrDuplicate
	}
	u := models.User{ID: "u-" + name, Email: email, Password: passwordHash, Name: name, Role: role}
	s.users[email] = u
	return &u, nil
}

type fakeShiftStore struct {
	shifts []models.AssignableShift
}

func (s fakeShiftStore) ListAssignableShifts(context.Context) ([]models.AssignableShift, error) {
	return s.shifts, nil
}

func TestLogin(t *testing.T) {
	const secret = "test-secret"
	store := newFakeUserStore(t, "hunter22", models.User{ID: "a1", Email: "admin@binfleet.test", Name: "Ada", Role: models.RoleAdmin})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"email":"admin@binfleet.test","password":"hunter22"}`, http.StatusOK},
		{"wrong password", `{"email":"admin@binfleet.test","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"email":"ghost@binfleet.test","password":"hunter22"}`, http.StatusUnauthorized},
		{"bad email", `{"email":"not-an-email","password":"hunter22"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Login(store, secret)(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}

			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			claims, err := middleware.ParseToken(resp.Token, []byte(secret))
			if err != nil {
				t.Fatalf("issued token does not parse: %v", err)
			}
			if claims.UserID != "a1" || claims.Role != models.RoleAdmin {
				t.Fatalf("claims = %+v", claims)
			}
		})
	}
}

func TestCreateUser(t *testing.T) {
	store := newFakeUserStore(t, "hunter22", models.User{ID: "d1", Email: "taken@binfleet.test", Role: models.RoleDriver})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"created", `{"email":"new@binfleet.test","password":"longenough","name":"Sam","role":"driver"}`, http.StatusCreated},
		{"duplicate", `{"email":"taken@binfleet.test","password":"longenough","name":"Sam","role":"driver"}`, http.StatusConflict},
		{"short password", `{"email":"x@binfleet.test","password":"short","name":"Sam","role":"driver"}`, http.StatusBadRequest},
		{"unknown role", `{"email":"y@binfleet.test","password":"longenough","name":"Sam","role":"owner"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			CreateUser(store)(rec, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
		})
	}

	created := store.users["new@binfleet.test"]
	if bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("longenough")) != nil {
		t.Fatalf("stored password is not a bcrypt hash of the input")
	}
}

func TestGetAssignmentOptions(t *testing.T) {
	users := newFakeUserStore(t, "pw", models.User{ID: "d1", Email: "d1@binfleet.test", Name: "Dee", Role: models.RoleDriver})
	shifts := fakeShiftStore{shifts: []models.AssignableShift{
		{ID: "s-active", Status: models.ShiftStatusActive},
		{ID: "s-paused", Status: models.ShiftStatusPaused},
		{ID: "s-ready", Status: models.ShiftStatusReady},
	}}

	rec := httptest.NewRecorder()
	GetAssignmentOptions(users, shifts)(rec, httptest.NewRequest(http.MethodGet, "/api/manager/assignment-options", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp AssignmentOptions
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].ID != "d1" {
		t.Fatalf("users = %+v", resp.Users)
	}
	if len(resp.ActiveShifts) != 2 || len(resp.FutureShifts) != 1 || resp.FutureShifts[0].ID != "s-ready" {
		t.Fatalf("active = %+v future = %+v", resp.ActiveShifts, resp.FutureShifts)
	}

	users.listErr = errors.New("db down")
	rec = httptest.NewRecorder()
	GetAssignmentOptions(users, shifts)(rec, httptest.NewRequest(http.MethodGet, "/api/manager/assignment-options", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status with failing store = %d", rec.Code)
	}
}
