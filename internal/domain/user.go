package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User validation errors.
var (
	ErrEmptyUserID         = NewValidationError("id", "user ID cannot be empty")
	ErrEmptyUserName       = NewValidationError("name", "cannot be empty")
	ErrUserNameTooLong     = NewValidationError("name", "must be at most 255 characters")
	ErrEmptyEmail          = NewValidationError("email", "cannot be empty")
	ErrInvalidEmail        = NewValidationError("email", "invalid email format")
	ErrPasswordTooShort    = NewValidationError("password", "must be at least 6 characters long")
	ErrPasswordTooLong     = NewValidationError("password", "must be at most 72 characters long")
	ErrEmptyPassword       = NewValidationError("password", "cannot be empty")
	ErrInvalidUserRole     = NewValidationError("role", "must be admin or member")
	ErrEmptyHashedPassword = NewValidationError("password", "hashed password cannot be empty")
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
	maxNameLength     = 255
)

// UserRole is the application-wide role of a user. It is persisted with the
// user record; project-level roles are separate (see MemberRole).
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleMember
}

// User is an account that can own projects, create tasks and be assigned work.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           UserRole  `json:"role"`
	Password       string    `json:"-"` // plaintext, only set while creating or changing the password
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a member-role user with a fresh ID. The caller hashes the
// password before the user is stored.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      UserRoleMember,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// IsAdmin reports whether the user holds the application admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// Validate checks the user's fields. A user without a plaintext password must
// already carry a hash.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Name == "" {
		return ErrEmptyUserName
	}
	if len(u.Name) > maxNameLength {
		return ErrUserNameTooLong
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidUserRole
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidatePassword checks the plaintext password length rules.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < minPasswordLength:
		return ErrPasswordTooShort
	case len(password) > maxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}
