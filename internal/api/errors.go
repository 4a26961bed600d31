package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/phrazzld/taskhub/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error itself.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		isValidatorError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that carries
// no internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, domain.ErrUnauthorized):
		return "You do not have permission to perform this action"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, store.ErrMemberNotFound):
		return "Project member not found"
	case errors.Is(err, store.ErrModuleNotFound):
		return "Module not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	case isValidatorError(err):
		return SanitizeValidationError(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	default:
		return "An unexpected error occurred"
	}
}

func isValidatorError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// SanitizeValidationError turns a request validation failure into
// "Invalid <field>: <reason>" for its first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()))
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly reasons.
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "gte":
		return "must be at least " + param
	case "lte":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "eqfield":
		return "does not match " + strings.ToLower(param)
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. fallback
// replaces the generic message on 500 responses when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
