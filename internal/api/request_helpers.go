package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/store"
)

var validateStruct = shared.ValidateStruct

// getUserIDFromContext returns the ID set by the auth middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID parses the named chi URL parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}
	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format")
	}
	return id, nil
}

// decodeAndValidate reads the JSON body into req and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// currentUser loads the authenticated user. A token whose user no longer
// exists is treated as unauthenticated.
func currentUser(w http.ResponseWriter, r *http.Request, users service.UserService) (*domain.User, bool) {
	log := logger.FromContext(r.Context())

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return nil, false
	}

	user, err := users.GetUser(r.Context(), userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("token for unknown user", slog.String("user_id", userID.String()))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
			return nil, false
		}
		HandleAPIError(w, r, err, "Failed to load current user")
		return nil, false
	}
	return user, true
}

// actorAndPathUUID combines currentUser and getPathUUID.
func actorAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	users service.UserService,
	paramName string,
) (*domain.User, uuid.UUID, bool) {
	actor, ok := currentUser(w, r, users)
	if !ok {
		return nil, uuid.Nil, false
	}
	id, err := getPathUUID(r, paramName)
	if err != nil {
		logger.FromContext(r.Context()).Warn("invalid "+paramName,
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return nil, uuid.Nil, false
	}
	return actor, id, true
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "has invalid format")
	}
	return &id, nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
// A missing parameter or an explicit 0 yields 0, which callers treat as unset.
func queryInt(r *http.Request, name string, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err == nil && n == 0 {
		return 0, nil
	}
	if err != nil || n < lo || n > hi {
		return 0, domain.NewValidationError(name, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
	return n, nil
}

// queryStatus parses an optional task status query parameter.
func queryStatus(r *http.Request) (domain.TaskStatus, error) {
	status := domain.TaskStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		return "", domain.ErrInvalidTaskStatus
	}
	return status, nil
}

// parseDate converts an optional YYYY-MM-DD field.
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(*value)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}
