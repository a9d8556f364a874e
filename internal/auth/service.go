// Package auth registers and authenticates users and issues and verifies
// their session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vaughan-dsouza/fileshelf/internal/apperr"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
	"github.com/vaughan-dsouza/fileshelf/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "invalid credentials"

// Session is what a successful login hands back to the client.
type Session struct {
	Token string
	User  *models.User
}

type Service struct {
	users  store.Users
	secret []byte
	cost   int
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(users store.Users, secret string, opts ...Option) *Service {
	s := &Service{
		users:  users,
		secret: []byte(secret),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates a user with role user.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	return s.CreateUser(ctx, email, password, models.RoleUser)
}

// CreateUser creates a user with an explicit role. It is not reachable from
// the HTTP API; operators use it through EnsureAdmin and cmd/useradd.
func (s *Service) CreateUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password required")
	}
	if !role.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown role %q", role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	u, err := s.users.Create(ctx, email, string(hash), role)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, apperr.Conflict("user with this email already exists")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return u, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password produce the same AuthFailed error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.AuthFailed(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, apperr.AuthFailed(msgInvalidCredentials)
	}

	token, err := GenerateToken(u.ID, u.Role, s.secret, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Session{Token: token, User: u}, nil
}

// Verify validates a session token without touching the store.
func (s *Service) Verify(token string) (models.Identity, error) {
	claims, err := VerifyToken(token, s.secret, s.now)
	if err != nil {
		return models.Identity{}, err
	}
	return claims.Identity(), nil
}

// EnsureAdmin creates an admin account unless one with this email already
// exists. An existing account keeps whatever role it has.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	_, err = s.CreateUser(ctx, email, password, models.RoleAdmin)
	if apperr.Is(err, apperr.KindConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
