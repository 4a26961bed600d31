package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/config"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testSecret, time.Hour, 24*time.Hour, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 60})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 1440})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, func() time.Time { return fixedTime })
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Failures(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	issuer := newTestService(t, func() time.Time { return issued })

	access, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	wrongKey, err := newHMACJWTService("another-secret-that-is-long-enough-too", time.Hour, time.Hour, func() time.Time { return issued })
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{"expired", newTestService(t, func() time.Time { return issued.Add(2 * time.Hour) }), access, ErrExpiredToken},
		{"within clock skew", newTestService(t, func() time.Time { return issued.Add(time.Hour + time.Minute) }), access, nil},
		{"wrong signature", wrongKey, access, ErrInvalidToken},
		{"malformed", issuer, "not.a.token", ErrInvalidToken},
		{"refresh used as access", issuer, refresh, ErrWrongTokenType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestService(t, func() time.Time { return issued })

	refresh, err := svc.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)
	access, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = svc.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	later := newTestService(t, func() time.Time { return issued.Add(48 * time.Hour) })
	_, err = later.ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)

	_, err = svc.ValidateRefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
