package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_project_id_fkey"}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode}, store.ErrInvalidEntity},
		{"numeric out of range", &pgconn.PgError{Code: numericOutOfRangeCode}, store.ErrInvalidEntity},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tt.err), tt.want)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, MapError(boom))

		other := &pgconn.PgError{Code: "42P01"}
		assert.Equal(t, error(other), MapError(other))
	})
}

func TestViolationHelpers(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("unique")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.Equal(t, "tasks_parent_id_fkey", constraintName(&pgconn.PgError{ConstraintName: "tasks_parent_id_fkey"}))
	assert.Empty(t, constraintName(errors.New("x")))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrTaskNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrTaskNotFound), store.ErrTaskNotFound)

	err := CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), store.ErrTaskNotFound)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows affected")

	assert.Error(t, CheckRowsAffected(nil, store.ErrTaskNotFound))
}
