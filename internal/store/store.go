// Package store is the credential store: the only code that reads or writes
// user records.
package store

import (
	"context"
	"errors"

	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Users persists user records. Create must rely on the storage layer for
// email uniqueness and report a clash as ErrDuplicateEmail.
type Users interface {
	Create(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
