package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/mocks"
)

func newAuthHandler(env *testEnv, jwt *mocks.MockJWTService) *AuthHandler {
	cfg := &config.AuthConfig{TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 1440}
	return NewAuthHandler(env.userService, jwt, cfg, env.log).
		WithTimeFunc(func() time.Time { return testNow })
}

func TestNewAuthHandlerPanicsWithoutLogger(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		NewAuthHandler(nil, &mocks.MockJWTService{}, &config.AuthConfig{}, nil)
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates member and issues tokens", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		h := newAuthHandler(env, &mocks.MockJWTService{})

		rec := httptest.NewRecorder()
		h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name":                  "Ana",
			"email":                 "ana@example.com",
			"password":              "secret123",
			"password_confirmation": "secret123",
		}, nil, nil))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp AuthResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "access:"+resp.UserID.String(), resp.AccessToken)
		assert.Equal(t, "refresh:"+resp.UserID.String(), resp.RefreshToken)
		assert.Equal(t, "2025-06-18T15:30:00Z", resp.ExpiresAt)
		require.NotNil(t, resp.User)
		assert.Equal(t, domain.UserRoleMember, resp.User.Role)
		assert.NotContains(t, rec.Body.String(), "secret123")
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		existing := testUser(t, "Ana", "ana@example.com", domain.UserRoleMember)
		env := newTestEnv(t, existing)
		h := newAuthHandler(env, &mocks.MockJWTService{})

		rec := httptest.NewRecorder()
		h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Ana", "email": "ana@example.com", "password": "secret123",
		}, nil, nil))

		assertError(t, rec, http.StatusConflict, "Email already exists")
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		h := newAuthHandler(env, &mocks.MockJWTService{})

		rec := httptest.NewRecorder()
		h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Ana", "email": "ana@example.com", "password": "secret123", "password_confirmation": "other123",
		}, nil, nil))

		assertError(t, rec, http.StatusBadRequest, "Invalid password_confirmation: does not match password")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		h := newAuthHandler(env, &mocks.MockJWTService{})

		rec := httptest.NewRecorder()
		h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", `{"name":`, nil, nil))

		assertError(t, rec, http.StatusBadRequest, "Invalid request format")
	})

	t.Run("token failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		h := newAuthHandler(env, &mocks.MockJWTService{
			GenerateTokenFn: func(context.Context, uuid.UUID) (string, error) {
				return "", errors.New("signing failed")
			},
		})

		rec := httptest.NewRecorder()
		h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Ana", "email": "ana@example.com", "password": "secret123",
		}, nil, nil))

		assertError(t, rec, http.StatusInternalServerError, "Failed to generate authentication token")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ana := testUser(t, "Ana", "ana@example.com", domain.UserRoleMember)

	tests := []struct {
		name     string
		body     interface{}
		status   int
		errorMsg string
	}{
		{"valid", map[string]string{"email": "ana@example.com", "password": "password123"}, http.StatusOK, ""},
		{"wrong password", map[string]string{"email": "ana@example.com", "password": "nope"},
			http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": "password123"},
			http.StatusUnauthorized, "Invalid credentials"},
		{"missing email", map[string]string{"password": "password123"},
			http.StatusBadRequest, "Invalid email: required field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, ana)
			h := newAuthHandler(env, &mocks.MockJWTService{})

			rec := httptest.NewRecorder()
			h.Login(rec, newRequest(t, http.MethodPost, "/api/auth/login", tt.body, nil, nil))

			if tt.errorMsg != "" {
				assertError(t, rec, tt.status, tt.errorMsg)
				return
			}
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var resp AuthResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, ana.ID, resp.UserID)
			assert.Equal(t, "access:"+ana.ID.String(), resp.AccessToken)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	ana := testUser(t, "Ana", "ana@example.com", domain.UserRoleMember)
	ghost := uuid.New()

	tests := []struct {
		name     string
		token    string
		status   int
		errorMsg string
	}{
		{"valid", "refresh:" + ana.ID.String(), http.StatusOK, ""},
		{"access token rejected", "access:" + ana.ID.String(), http.StatusUnauthorized, "Invalid refresh token"},
		{"deleted user", "refresh:" + ghost.String(), http.StatusUnauthorized, "Invalid refresh token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, ana)
			h := newAuthHandler(env, &mocks.MockJWTService{})

			rec := httptest.NewRecorder()
			h.RefreshToken(rec, newRequest(t, http.MethodPost, "/api/auth/refresh",
				map[string]string{"refresh_token": tt.token}, nil, nil))

			if tt.errorMsg != "" {
				assertError(t, rec, tt.status, tt.errorMsg)
				return
			}
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var resp RefreshTokenResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, "access:"+ana.ID.String(), resp.AccessToken)
			assert.Equal(t, "refresh:"+ana.ID.String(), resp.RefreshToken)
		})
	}
}
