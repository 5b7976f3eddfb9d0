package invites

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"discord-invite-tracker/internal/metrics"
	"discord-invite-tracker/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 20
)

// Store persists the two durable tables. Every save replaces the whole table.
type Store interface {
	LoadCounts(ctx context.Context) ([]models.InviteCount, error)
	LoadAttribution(ctx context.Context) (map[string]string, error)
	SaveCounts(ctx context.Context, counts []models.InviteCount) error
	SaveAttribution(ctx context.Context, invitedBy map[string]string) error
}

// Counters owns the invite counts and the member -> inviter records.
// Writes are persisted while the lock is held so saves land in mutation order.
type Counters struct {
	store  Store
	logger *zap.Logger

	mu        sync.Mutex
	counts    map[string]int
	order     []string // first-seen order of inviters, the leaderboard tie-break
	invitedBy map[string]string
}

func NewCounters(store Store, logger *zap.Logger) *Counters {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counters{
		store:     store,
		logger:    logger,
		counts:    make(map[string]int),
		invitedBy: make(map[string]string),
	}
}

// Load replaces the in-memory tables with the stored ones.
func (c *Counters) Load(ctx context.Context) error {
	counts, err := c.store.LoadCounts(ctx)
	if err != nil {
		return fmt.Errorf("load invite counts: %w", err)
	}
	invitedBy, err := c.store.LoadAttribution(ctx)
	if err != nil {
		return fmt.Errorf("load invited-by records: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int, len(counts))
	c.order = c.order[:0]
	for _, row := range counts {
		if _, dup := c.counts[row.UserID]; !dup {
			c.order = append(c.order, row.UserID)
		}
		n := row.Count
		if n < 0 {
			n = 0
		}
		c.counts[row.UserID] = n
	}
	if invitedBy == nil {
		invitedBy = make(map[string]string)
	}
	c.invitedBy = invitedBy

	c.logger.Info("invite data loaded",
		zap.Int("inviters", len(c.counts)),
		zap.Int("attributions", len(c.invitedBy)))
	return nil
}

// Increment adds one invite to userID and returns the new total. A non-nil
// error is a persistence failure; the in-memory change is kept regardless.
func (c *Counters) Increment(ctx context.Context, userID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.addLocked(userID, 1)
	return n, c.saveCountsLocked(ctx)
}

// Decrement removes one invite from userID, never going below zero.
func (c *Counters) Decrement(ctx context.Context, userID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.addLocked(userID, -1)
	return n, c.saveCountsLocked(ctx)
}

func (c *Counters) addLocked(userID string, delta int) int {
	cur, ok := c.counts[userID]
	if !ok {
		c.order = append(c.order, userID)
	}
	cur += delta
	if cur < 0 {
		cur = 0
	}
	c.counts[userID] = cur
	return cur
}

// Record stores who invited memberID, replacing any earlier record.
func (c *Counters) Record(ctx context.Context, memberID, inviterID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invitedBy[memberID] = inviterID
	return c.saveAttributionLocked(ctx)
}

// Release undoes the credit given for memberID: the inviter loses one invite
// (floored at zero) and the record is deleted, each persisted in turn. ok is
// false when nobody is on record for the member.
func (c *Counters) Release(ctx context.Context, memberID string) (inviterID string, count int, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inviterID, ok = c.invitedBy[memberID]
	if !ok {
		return "", 0, false, nil
	}

	count = c.addLocked(inviterID, -1)
	err = c.saveCountsLocked(ctx)

	delete(c.invitedBy, memberID)
	if aerr := c.saveAttributionLocked(ctx); err == nil {
		err = aerr
	}
	return inviterID, count, true, err
}

func (c *Counters) Count(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[userID]
}

func (c *Counters) Inviter(memberID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.invitedBy[memberID]
	return id, ok
}

// Leaderboard returns up to limit inviters by count, highest first. Equal
// counts keep first-seen order. limit is capped at MaxLeaderboardSize and
// non-positive values mean DefaultLeaderboardSize.
func (c *Counters) Leaderboard(limit int) []models.InviteCount {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	c.mu.Lock()
	rows := c.rowsLocked()
	c.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Reset sets one user's count to zero and returns the previous value.
func (c *Counters) Reset(ctx context.Context, userID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.counts[userID]
	if _, ok := c.counts[userID]; !ok {
		c.order = append(c.order, userID)
	}
	c.counts[userID] = 0
	return old, c.saveCountsLocked(ctx)
}

// ResetAll clears both tables and returns how many inviters were dropped.
func (c *Counters) ResetAll(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.counts)
	c.counts = make(map[string]int)
	c.order = nil
	c.invitedBy = make(map[string]string)

	err := c.saveCountsLocked(ctx)
	if aerr := c.saveAttributionLocked(ctx); err == nil {
		err = aerr
	}
	return n, err
}

// Snapshot returns every count row in first-seen order.
func (c *Counters) Snapshot() []models.InviteCount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rowsLocked()
}

func (c *Counters) rowsLocked() []models.InviteCount {
	rows := make([]models.InviteCount, 0, len(c.order))
	for _, id := range c.order {
		rows = append(rows, models.InviteCount{UserID: id, Count: c.counts[id]})
	}
	return rows
}

func (c *Counters) saveCountsLocked(ctx context.Context) error {
	if err := c.store.SaveCounts(ctx, c.rowsLocked()); err != nil {
		metrics.PersistFailures.WithLabelValues("counts").Inc()
		c.logger.Error("saving invite counts failed", zap.Error(err))
		return fmt.Errorf("%w: counts: %v", ErrPersistenceFailure, err)
	}
	return nil
}

func (c *Counters) saveAttributionLocked(ctx context.Context) error {
	cp := make(map[string]string, len(c.invitedBy))
	for k, v := range c.invitedBy {
		cp[k] = v
	}
	if err := c.store.SaveAttribution(ctx, cp); err != nil {
		metrics.PersistFailures.WithLabelValues("invited_by").Inc()
		c.logger.Error("saving invited-by records failed", zap.Error(err))
		return fmt.Errorf("%w: invited_by: %v", ErrPersistenceFailure, err)
	}
	return nil
}
