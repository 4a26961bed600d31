package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/phrazzld/taskhub/internal/store"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	authConfig  *config.AuthConfig
	timeFunc    func() time.Time
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. It panics on a nil logger.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		authConfig:  authConfig,
		timeFunc:    time.Now,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// WithTimeFunc replaces the clock used for expiry timestamps.
func (h *AuthHandler) WithTimeFunc(timeFunc func() time.Time) *AuthHandler {
	h.timeFunc = timeFunc
	return h
}

type tokenPair struct {
	access, refresh, expiresAt string
}

func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (tokenPair, error) {
	access, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return tokenPair{}, err
	}
	expiresAt := h.timeFunc().UTC().Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute)
	return tokenPair{access: access, refresh: refresh, expiresAt: expiresAt.Format(time.RFC3339)}, nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	tokens, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	resp := userToResponse(user)
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID:       user.ID,
		User:         &resp,
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
		ExpiresAt:    tokens.expiresAt,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	tokens, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	resp := userToResponse(user)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:       user.ID,
		User:         &resp,
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
		ExpiresAt:    tokens.expiresAt,
	})
}

// RefreshToken handles POST /auth/refresh. The refresh token is exchanged for
// a new pair as long as its user still exists.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	if _, err := h.userService.GetUser(r.Context(), claims.UserID); err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("refresh token for deleted user", slog.String("user_id", claims.UserID.String()))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	tokens, err := h.issueTokens(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
		ExpiresAt:    tokens.expiresAt,
	})
}
