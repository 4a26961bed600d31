package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/service/auth"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		validateErr    error
		expectedStatus int
	}{
		{name: "valid token", authHeader: "Bearer access:" + userID.String(), expectedStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer access:" + userID.String(), expectedStatus: http.StatusOK},
		{name: "missing auth header", expectedStatus: http.StatusUnauthorized},
		{name: "invalid auth format", authHeader: "InvalidFormat", expectedStatus: http.StatusUnauthorized},
		{name: "empty token", authHeader: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "refresh token used", authHeader: "Bearer refresh:" + userID.String(), expectedStatus: http.StatusUnauthorized},
		{name: "expired token", authHeader: "Bearer x", validateErr: auth.ErrExpiredToken, expectedStatus: http.StatusUnauthorized},
		{name: "wrong token type", authHeader: "Bearer x", validateErr: auth.ErrWrongTokenType, expectedStatus: http.StatusUnauthorized},
		{name: "unexpected failure", authHeader: "Bearer x", validateErr: errors.New("keystore offline"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			jwtService := &mocks.MockJWTService{}
			if tt.validateErr != nil {
				err := tt.validateErr
				jwtService.ValidateTokenFn = func(context.Context, string) (*auth.Claims, error) {
					return nil, err
				}
			}

			var capturedUserID uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedUserID, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			NewAuthMiddleware(jwtService).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, capturedUserID)
			} else {
				assert.Equal(t, uuid.Nil, capturedUserID)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	userID, ok := GetUserID(req)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, userID)
}
