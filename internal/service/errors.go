package service

import (
	"errors"
	"fmt"
)

// Sentinel errors callers check with errors.Is. The API layer maps them to
// status codes.
var (
	// ErrForbidden means the actor is authenticated but not allowed to act on
	// the resource. Maps to 403.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	// Maps to 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ServiceError adds service and operation context to an unexpected failure.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with service and operation context.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Err: err}
}
