package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

const (
	insertQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	selectQuery = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+email=\$1\s*$`
)

func newStoreWithMock(t *testing.T) (*PostgresUsers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresUsers(sqlx.NewDb(db, "sqlmock"), time.Second), mock
}

func TestPostgresUsers_Create(t *testing.T) {
	s, mock := newStoreWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("a@x.com", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	u, err := s.Create(context.Background(), "a@x.com", "hash", models.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, created, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_Create_Duplicate(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("a@x.com", "hash", "user").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := s.Create(context.Background(), "a@x.com", "hash", models.RoleUser)
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostgresUsers_Create_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("a@x.com", "hash", "admin").
		WillReturnError(errors.New("db down"))

	_, err := s.Create(context.Background(), "a@x.com", "hash", models.RoleAdmin)
	require.ErrorContains(t, err, "db error: db down")
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostgresUsers_GetByEmail(t *testing.T) {
	s, mock := newStoreWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectQuery).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow(int64(3), "a@x.com", "hash", "admin", created))

	u, err := s.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, &models.User{ID: 3, Email: "a@x.com", Password: "hash", Role: models.RoleAdmin, CreatedAt: created}, u)
}

func TestPostgresUsers_GetByEmail_NotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	_, err := s.GetByEmail(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUsers_GetByEmail_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("a@x.com").WillReturnError(errors.New("db err"))

	_, err := s.GetByEmail(context.Background(), "a@x.com")
	require.ErrorContains(t, err, "db error: db err")
}
