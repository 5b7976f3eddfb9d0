package invites

import (
	"context"
	"testing"

	"discord-invite-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCacheRefreshReplaces(t *testing.T) {
	p := newFakePlatform()
	p.push("G", models.Snapshot{{Code: "A", Uses: 1}}, models.Snapshot{{Code: "A", Uses: 2}})
	c := NewSnapshotCache(p, nil)
	ctx := context.Background()

	_, ok := c.Get("G")
	assert.False(t, ok)

	c.Refresh(ctx, "G")
	s, ok := c.Get("G")
	require.True(t, ok)
	assert.Equal(t, 1, s[0].Uses)

	got := c.Refresh(ctx, "G")
	assert.Equal(t, 2, got[0].Uses)
	s, _ = c.Get("G")
	assert.Equal(t, got, s)
}

func TestSnapshotCacheFetchFailureYieldsEmpty(t *testing.T) {
	p := newFakePlatform()
	p.push("G", models.Snapshot{{Code: "A", Uses: 1}})
	c := NewSnapshotCache(p, nil)
	ctx := context.Background()
	c.Refresh(ctx, "G")

	p.fetchErr = errBoom
	got := c.Refresh(ctx, "G")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	s, ok := c.Get("G")
	require.True(t, ok)
	assert.Empty(t, s)
}

func TestSnapshotCacheExchange(t *testing.T) {
	p := newFakePlatform()
	p.push("G", models.Snapshot{{Code: "A", Uses: 1}}, models.Snapshot{{Code: "A", Uses: 2}})
	c := NewSnapshotCache(p, nil)
	ctx := context.Background()

	prev, had, cur := c.Exchange(ctx, "G")
	assert.False(t, had)
	assert.Nil(t, prev)
	assert.Equal(t, 1, cur[0].Uses)

	prev, had, cur = c.Exchange(ctx, "G")
	assert.True(t, had)
	assert.Equal(t, 1, prev[0].Uses)
	assert.Equal(t, 2, cur[0].Uses)
}

func TestSnapshotCacheForget(t *testing.T) {
	p := newFakePlatform()
	c := NewSnapshotCache(p, nil)
	c.Set("G1", models.Snapshot{})
	c.Set("G2", models.Snapshot{})
	require.Equal(t, 2, c.Len())

	c.Forget("G1")
	_, ok := c.Get("G1")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}
