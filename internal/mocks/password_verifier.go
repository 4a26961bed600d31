package mocks

import "github.com/phrazzld/taskhub/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier against the
// "hashed:<password>" convention used by MockUserStore.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error

	CompareCallCount int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare returns auth.ErrPasswordMismatch unless hashedPassword is
// "hashed:" + password.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
