package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

const uniqueViolation = "23505"

type PostgresUsers struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresUsers returns a store bounding every query by timeout
// (no bound when timeout is zero).
func NewPostgresUsers(db *sqlx.DB, timeout time.Duration) *PostgresUsers {
	return &PostgresUsers{db: db, timeout: timeout}
}

func (s *PostgresUsers) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresUsers) Create(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	u := &models.User{Email: email, Password: passwordHash, Role: role}
	err := s.db.QueryRowxContext(ctx, query, email, passwordHash, string(role)).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (s *PostgresUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE email=$1
	`, email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &u, nil
}
