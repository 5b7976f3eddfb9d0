package invites

import (
	"context"
	"fmt"
	"sync"

	"discord-invite-tracker/internal/metrics"
	"discord-invite-tracker/internal/models"

	"go.uber.org/zap"
)

// InviteFetcher returns a guild's current invites.
type InviteFetcher interface {
	FetchInvites(ctx context.Context, guildID string) (models.Snapshot, error)
}

// SnapshotCache holds the last known invite snapshot of every guild.
//
// Each guild also has its own mutex so that "fetch, compare, replace" runs as
// one critical section: two joins in the same guild must not both be resolved
// against the same stale snapshot.
type SnapshotCache struct {
	fetcher InviteFetcher
	logger  *zap.Logger

	mu        sync.RWMutex
	snapshots map[string]models.Snapshot
	locks     map[string]*sync.Mutex
}

func NewSnapshotCache(fetcher InviteFetcher, logger *zap.Logger) *SnapshotCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotCache{
		fetcher:   fetcher,
		logger:    logger,
		snapshots: make(map[string]models.Snapshot),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (c *SnapshotCache) Get(guildID string) (models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.snapshots[guildID]
	return s, ok
}

func (c *SnapshotCache) Set(guildID string, s models.Snapshot) {
	c.mu.Lock()
	c.snapshots[guildID] = s
	n := len(c.snapshots)
	c.mu.Unlock()
	metrics.CachedGuilds.Set(float64(n))
}

// Forget drops a guild the bot has left.
func (c *SnapshotCache) Forget(guildID string) {
	c.mu.Lock()
	delete(c.snapshots, guildID)
	delete(c.locks, guildID)
	n := len(c.snapshots)
	c.mu.Unlock()
	metrics.CachedGuilds.Set(float64(n))
}

// Len returns the number of guilds with a cached snapshot.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

func (c *SnapshotCache) guildLock(guildID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[guildID] = l
	}
	return l
}

// Refresh re-fetches the guild's invites and replaces the cached entry.
// A failed fetch stores and returns an empty snapshot.
func (c *SnapshotCache) Refresh(ctx context.Context, guildID string) models.Snapshot {
	l := c.guildLock(guildID)
	l.Lock()
	defer l.Unlock()

	cur := c.fetch(ctx, guildID)
	c.Set(guildID, cur)
	return cur
}

// Exchange fetches the current snapshot and swaps it in, returning the one it
// replaced. hadPrev is false the first time a guild is seen.
func (c *SnapshotCache) Exchange(ctx context.Context, guildID string) (prev models.Snapshot, hadPrev bool, cur models.Snapshot) {
	l := c.guildLock(guildID)
	l.Lock()
	defer l.Unlock()

	prev, hadPrev = c.Get(guildID)
	cur = c.fetch(ctx, guildID)
	c.Set(guildID, cur)
	return prev, hadPrev, cur
}

func (c *SnapshotCache) fetch(ctx context.Context, guildID string) models.Snapshot {
	s, err := c.fetcher.FetchInvites(ctx, guildID)
	if err != nil {
		metrics.FetchFailures.Inc()
		c.logger.Warn("invite snapshot unavailable, using empty snapshot",
			zap.String("guild_id", guildID),
			zap.Error(fmt.Errorf("%w: %v", ErrFetchFailure, err)))
		return models.Snapshot{}
	}
	if s == nil {
		s = models.Snapshot{}
	}
	return s
}
