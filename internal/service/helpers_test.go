package service_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/domain"
)

// newTxDB returns a sqlmock database for services that open transactions.
// Expectations are checked when the test ends.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// newUser builds a stored-looking user with the mock store's hash convention.
func newUser(t *testing.T, name, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email, "password123")
	require.NoError(t, err)
	user.Role = role
	user.HashedPassword = "hashed:" + user.Password
	user.Password = ""
	return user
}

// newProject builds a project owned by owner with owner as project admin.
func newProject(t *testing.T, name string, owner *domain.User) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(name, "", &owner.ID, owner.ID)
	require.NoError(t, err)
	project.Members = []domain.ProjectMember{{
		ProjectID: project.ID,
		UserID:    owner.ID,
		Name:      owner.Name,
		Email:     owner.Email,
		Role:      domain.MemberRoleAdmin,
	}}
	project.Modules = []domain.ProjectModule{}
	return project
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func hours(h float64) *float64 { return &h }

func idPtr(id uuid.UUID) *uuid.UUID { return &id }
