package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hashedPassword, password string) error
}

// BcryptVerifier verifies bcrypt hashes as written by the Postgres user store.
type BcryptVerifier struct{}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

// NewBcryptVerifier creates a BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare returns nil on a match. A wrong password wraps both
// ErrPasswordMismatch and bcrypt's mismatch error; a malformed hash is
// returned as is.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%w: %w", ErrPasswordMismatch, err)
	}
	return err
}
