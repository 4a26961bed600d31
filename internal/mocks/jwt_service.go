package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/service/auth"
)

// MockJWTService implements auth.JWTService. By default tokens are
// "access:<uuid>" and "refresh:<uuid>" and validate back to their user.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, token string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements auth.JWTService
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return auth.TokenTypeAccess + ":" + userID.String(), nil
}

// ValidateToken implements auth.JWTService
func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return parseMockToken(token, auth.TokenTypeAccess, auth.ErrInvalidToken)
}

// GenerateRefreshToken implements auth.JWTService
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return auth.TokenTypeRefresh + ":" + userID.String(), nil
}

// ValidateRefreshToken implements auth.JWTService
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, token)
	}
	return parseMockToken(token, auth.TokenTypeRefresh, auth.ErrInvalidRefreshToken)
}

func parseMockToken(token, tokenType string, invalid error) (*auth.Claims, error) {
	prefix := tokenType + ":"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, invalid
	}
	id, err := uuid.Parse(token[len(prefix):])
	if err != nil {
		return nil, invalid
	}
	now := time.Now()
	return &auth.Claims{
		UserID:    id,
		TokenType: tokenType,
		Subject:   id.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}
