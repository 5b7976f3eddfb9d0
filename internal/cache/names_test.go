package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"discord-invite-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	calls atomic.Int32
	users map[string]*models.User
}

func (s *stubUsers) FetchUser(ctx context.Context, userID string) (*models.User, error) {
	s.calls.Add(1)
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestNamesCachesLookups(t *testing.T) {
	c, err := NewCache(nil, Config{})
	require.NoError(t, err)
	defer c.Close()

	users := &stubUsers{users: map[string]*models.User{"1": {ID: "1", Username: "alice"}}}
	names := NewNames(c, users)
	ctx := context.Background()

	assert.Equal(t, "alice", names.Username(ctx, "1"))
	assert.Equal(t, "alice", names.Username(ctx, "1"))
	assert.Equal(t, int32(1), users.calls.Load())

	m := c.GetMetrics()
	assert.Equal(t, uint64(1), m.L1Hits)
	assert.Equal(t, uint64(1), m.L1Misses)
	assert.InDelta(t, 0.5, m.L1HitRate, 0.001)
}

func TestNamesUnknownUser(t *testing.T) {
	c, err := NewCache(nil, Config{})
	require.NoError(t, err)
	defer c.Close()

	users := &stubUsers{users: map[string]*models.User{"2": {ID: "2"}}}
	names := NewNames(c, users)
	ctx := context.Background()

	assert.Equal(t, UnknownUser, names.Username(ctx, "404"))
	assert.Equal(t, UnknownUser, names.Username(ctx, "2"))

	// Failures are not cached.
	assert.Equal(t, UnknownUser, names.Username(ctx, "404"))
	assert.Equal(t, int32(3), users.calls.Load())
}

func TestCacheDelete(t *testing.T) {
	c, err := NewCache(nil, Config{})
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (string, error) {
		loads++
		return "v", nil
	}
	_, err = c.Get(ctx, "k", load)
	require.NoError(t, err)
	c.Delete("k")
	_, err = c.Get(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}
