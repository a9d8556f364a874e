package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

func TestMemoryUsers_CreateAndGet(t *testing.T) {
	s := NewMemoryUsers()
	ctx := context.Background()

	u, err := s.Create(ctx, "a@x.com", "hash", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	got, err := s.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = s.GetByEmail(ctx, "A@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUsers_ConcurrentDuplicate(t *testing.T) {
	s := NewMemoryUsers()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(context.Background(), "same@x.com", "h", models.RoleUser); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrDuplicateEmail)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
