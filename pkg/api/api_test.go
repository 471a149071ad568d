package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gusamyky/ftpfs/pkg/store"
	"github.com/gusamyky/ftpfs/pkg/store/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) (http.Handler, store.Store, *JWTService) {
	t.Helper()
	s, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	jwtService, err := NewJWTService(JWTConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("failed to create JWT service: %v", err)
	}

	return NewRouter(s, jwtService), s, jwtService
}

func createAccount(t *testing.T, s store.Store, username, password, role string) *models.User {
	t.Helper()
	hash, err := models.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if _, err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	router, s, _ := newTestRouter(t)
	createAccount(t, s, "alice", "secret123", models.RoleUser)

	t.Run("valid credentials", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
			LoginRequest{Username: "alice", Password: "secret123"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("expected non-empty token pair")
		}
		if resp.User.Username != "alice" {
			t.Errorf("expected username alice, got %q", resp.User.Username)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
			LoginRequest{Username: "alice", Password: "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
			LoginRequest{Username: "nobody", Password: "secret123"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
			LoginRequest{Username: "alice"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRefresh(t *testing.T) {
	router, s, jwtService := newTestRouter(t)
	user := createAccount(t, s, "bob", "secret123", models.RoleUser)

	pair, err := jwtService.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("failed to generate token pair: %v", err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "",
			RefreshRequest{RefreshToken: pair.RefreshToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("access token rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "",
			RefreshRequest{RefreshToken: pair.AccessToken})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestMe(t *testing.T) {
	router, s, jwtService := newTestRouter(t)
	user := createAccount(t, s, "carol", "secret123", models.RoleUser)

	pair, err := jwtService.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("failed to generate token pair: %v", err)
	}

	t.Run("authenticated", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp UserResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Username != "carol" {
			t.Errorf("expected username carol, got %q", resp.Username)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestUserManagement(t *testing.T) {
	router, s, jwtService := newTestRouter(t)
	admin := createAccount(t, s, "admin", "secret123", models.RoleAdmin)
	regular := createAccount(t, s, "dave", "secret123", models.RoleUser)

	adminPair, err := jwtService.GenerateTokenPair(admin)
	if err != nil {
		t.Fatalf("failed to generate admin tokens: %v", err)
	}
	userPair, err := jwtService.GenerateTokenPair(regular)
	if err != nil {
		t.Fatalf("failed to generate user tokens: %v", err)
	}

	t.Run("list requires admin", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/users", userPair.AccessToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin lists users", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/users", adminPair.AccessToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp []UserResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp) != 2 {
			t.Errorf("expected 2 users, got %d", len(resp))
		}
	})

	t.Run("admin creates user", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/users", adminPair.AccessToken,
			CreateUserRequest{Username: "erin", Password: "secret123"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = doJSON(t, router, http.MethodGet, "/api/v1/users/erin", adminPair.AccessToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/users", adminPair.AccessToken,
			CreateUserRequest{Username: "dave", Password: "secret123"})
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("empty password rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/users", adminPair.AccessToken,
			CreateUserRequest{Username: "frank", Password: ""})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("admin deletes user", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/users/dave", adminPair.AccessToken, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}

		rec = doJSON(t, router, http.MethodGet, "/api/v1/users/dave", adminPair.AccessToken, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/users/admin", adminPair.AccessToken, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestJWTService(t *testing.T) {
	t.Run("short secret rejected", func(t *testing.T) {
		if _, err := NewJWTService(JWTConfig{Secret: "short"}); err != ErrInvalidSecretLength {
			t.Fatalf("expected ErrInvalidSecretLength, got %v", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		svc, err := NewJWTService(JWTConfig{
			Secret:              testSecret,
			AccessTokenDuration: -time.Minute,
		})
		if err != nil {
			t.Fatalf("failed to create JWT service: %v", err)
		}
		pair, err := svc.GenerateTokenPair(&models.User{ID: "id", Username: "u", Role: models.RoleUser})
		if err != nil {
			t.Fatalf("failed to generate token pair: %v", err)
		}
		if _, err := svc.ValidateAccessToken(pair.AccessToken); err != ErrExpiredToken {
			t.Fatalf("expected ErrExpiredToken, got %v", err)
		}
	})
}
