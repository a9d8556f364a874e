package store

import (
	"context"
	"sync"
	"time"

	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

// MemoryUsers keeps users in process memory. Nothing survives a restart.
type MemoryUsers struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byEmail: make(map[string]models.User)}
}

func (s *MemoryUsers) Create(_ context.Context, email, passwordHash string, role models.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return nil, ErrDuplicateEmail
	}

	s.nextID++
	u := models.User{
		ID:        s.nextID,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	s.byEmail[email] = u

	return &u, nil
}

func (s *MemoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
