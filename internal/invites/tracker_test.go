package invites

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"discord-invite-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	platform *fakePlatform
	notifier *fakeNotifier
	settings *fakeSettings
	store    *memStore
	tracker  *Tracker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		platform: newFakePlatform(),
		notifier: &fakeNotifier{},
		settings: &fakeSettings{features: map[string]bool{}},
		store:    &memStore{},
	}
	h.tracker = NewTracker(h.platform, h.notifier, h.settings, h.store, nil)
	require.NoError(t, h.tracker.Load(context.Background()))
	return h
}

func member(id string) models.Member {
	return models.Member{GuildID: "G", UserID: id, Username: "user-" + id}
}

func TestJoinAttributedByIncrement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G",
		models.Snapshot{{Code: "A", Uses: 3, CreatorID: "U1"}},
		models.Snapshot{{Code: "A", Uses: 4, CreatorID: "U1"}},
	)
	h.tracker.HandleGuildJoin(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))

	require.True(t, res.Resolved)
	assert.Equal(t, Attribution{InviterID: "U1", Code: "A"}, res.Attribution)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 1, h.tracker.GetCount("U1"))
	who, ok := h.tracker.GetInviter("M1")
	require.True(t, ok)
	assert.Equal(t, "U1", who)

	stored, ok := h.store.inviter("M1")
	require.True(t, ok)
	assert.Equal(t, "U1", stored)

	require.True(t, res.Notified)
	sent := h.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, NoticeJoin, sent[0].Kind)
	assert.Equal(t, "<@M1> invited by <@U1> (1)", sent[0].Text)
	assert.Equal(t, TitleNewMember, sent[0].Title)
}

func TestJoinAttributedByConsumedInvite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G",
		models.Snapshot{{Code: "B", Uses: 1, CreatorID: "U2"}},
		models.Snapshot{},
	)
	h.tracker.HandleGuildJoin(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))
	require.True(t, res.Resolved)
	assert.Equal(t, "U2", res.Attribution.InviterID)
	assert.Equal(t, "B", res.Attribution.Code)
	assert.Equal(t, 1, h.tracker.GetCount("U2"))
}

func TestJoinUnresolvedSendsDefaultGreeting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	snap := models.Snapshot{{Code: "A", Uses: 3, CreatorID: "U1"}}
	h.platform.push("G", snap, snap)
	h.tracker.HandleGuildJoin(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))
	assert.False(t, res.Resolved)
	assert.Equal(t, 0, h.tracker.GetCount("U1"))
	_, ok := h.tracker.GetInviter("M1")
	assert.False(t, ok)

	sent := h.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Welcome <@M1>!", sent[0].Text)
}

func TestJoinWithoutCreatorIsUnresolved(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G",
		models.Snapshot{{Code: "vanity", Uses: 10}},
		models.Snapshot{{Code: "vanity", Uses: 11}},
	)
	h.tracker.HandleGuildJoin(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))
	assert.False(t, res.Resolved)
	assert.Equal(t, "vanity", res.Attribution.Code)
	assert.Empty(t, h.tracker.GetLeaderboard(10))
	assert.Equal(t, "Welcome <@M1>!", res.Notice.Text)
}

func TestJoinFetchFailureStillWelcomes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G", models.Snapshot{{Code: "A", Uses: 1, CreatorID: "U1"}})
	h.tracker.HandleGuildJoin(ctx, "G")

	h.platform.fetchErr = errBoom
	res := h.tracker.HandleJoin(ctx, member("M1"))

	// Every cached code vanished from the empty snapshot, so the first one
	// is credited; the cache is reset to empty either way.
	assert.True(t, res.Resolved)
	assert.True(t, res.Notified)
	s, ok := h.tracker.Snapshots().Get("G")
	require.True(t, ok)
	assert.Empty(t, s)
}

func TestJoinFirstSightOfGuildIsUnresolved(t *testing.T) {
	h := newHarness(t)
	h.platform.push("G", models.Snapshot{{Code: "A", Uses: 4, CreatorID: "U1"}})

	res := h.tracker.HandleJoin(context.Background(), member("M1"))
	assert.False(t, res.Resolved)
	_, ok := h.tracker.Snapshots().Get("G")
	assert.True(t, ok)
}

func TestJoinIgnoresBots(t *testing.T) {
	h := newHarness(t)
	m := member("B1")
	m.Bot = true

	res := h.tracker.HandleJoin(context.Background(), m)
	assert.False(t, res.Notified)
	assert.Zero(t, h.platform.fetches)
	assert.Empty(t, h.notifier.sent())
}

func TestJoinSelfInviteNotCredited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G",
		models.Snapshot{{Code: "A", Uses: 0, CreatorID: "M1"}},
		models.Snapshot{{Code: "A", Uses: 1, CreatorID: "M1"}},
	)
	h.tracker.HandleGuildJoin(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))
	assert.False(t, res.Resolved)
	assert.Equal(t, 0, h.tracker.GetCount("M1"))
}

func TestJoinFeatureGates(t *testing.T) {
	t.Run("tracking off", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		h.settings.features[FeatureInviteTracking] = false
		h.platform.push("G",
			models.Snapshot{{Code: "A", Uses: 3, CreatorID: "U1"}},
			models.Snapshot{{Code: "A", Uses: 4, CreatorID: "U1"}},
		)
		h.tracker.HandleGuildJoin(ctx, "G")

		res := h.tracker.HandleJoin(ctx, member("M1"))
		assert.False(t, res.Resolved)
		assert.Equal(t, 0, h.tracker.GetCount("U1"))
		assert.True(t, res.Notified)

		// The baseline still moved forward.
		s, _ := h.tracker.Snapshots().Get("G")
		assert.Equal(t, 4, s[0].Uses)
	})

	t.Run("welcome messages off still attributes", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		h.settings.features[FeatureWelcomeMessages] = false
		h.platform.push("G",
			models.Snapshot{{Code: "A", Uses: 3, CreatorID: "U1"}},
			models.Snapshot{{Code: "A", Uses: 4, CreatorID: "U1"}},
		)
		h.tracker.HandleGuildJoin(ctx, "G")

		res := h.tracker.HandleJoin(ctx, member("M1"))
		assert.True(t, res.Resolved)
		assert.False(t, res.Notified)
		assert.Empty(t, h.notifier.sent())
		assert.Equal(t, 1, h.tracker.GetCount("U1"))
	})

	t.Run("member role", func(t *testing.T) {
		h := newHarness(t)
		h.settings.memberID = "member-role"
		h.tracker.HandleJoin(context.Background(), member("M1"))
		assert.Contains(t, h.platform.grants(), grant{"G", "M1", "member-role"})

		h = newHarness(t)
		h.settings.memberID = "member-role"
		h.settings.features[FeatureAutoRoleAssignment] = false
		h.tracker.HandleJoin(context.Background(), member("M1"))
		assert.Empty(t, h.platform.grants())
	})
}

func TestJoinGrantsMilestoneRoles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.settings.roles = []models.RoleThreshold{
		{MinCount: 1, RoleID: "r1"},
		{MinCount: 2, RoleID: "r2"},
		{MinCount: 1, RoleID: "r-broken"},
		{MinCount: 1, RoleID: "r-held"},
	}
	h.platform.roles["U1"] = []string{"r-held"}
	h.platform.grantErr["r-broken"] = errBoom
	h.platform.push("G",
		models.Snapshot{{Code: "A", Uses: 0, CreatorID: "U1"}},
		models.Snapshot{{Code: "A", Uses: 1, CreatorID: "U1"}},
		models.Snapshot{{Code: "A", Uses: 2, CreatorID: "U1"}},
	)
	h.tracker.HandleGuildJoin(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))
	assert.Equal(t, []string{"r1"}, res.Granted)
	assert.True(t, res.Notified)

	h.platform.roles["U1"] = []string{"r-held", "r1"}
	res = h.tracker.HandleJoin(ctx, member("M2"))
	assert.Equal(t, []string{"r2"}, res.Granted)
}

func TestJoinNotifierFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errBoom
	res := h.tracker.HandleJoin(context.Background(), member("M1"))
	assert.False(t, res.Notified)
}

func TestLeaveReleasesCredit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.counts = []models.InviteCount{{UserID: "U3", Count: 5}}
	h.store.invitedBy = map[string]string{"M1": "U3"}
	require.NoError(t, h.tracker.Load(ctx))
	h.platform.users["U3"] = &models.User{ID: "U3", Username: "three"}

	res := h.tracker.HandleLeave(ctx, member("M1"))

	require.True(t, res.Resolved)
	assert.Equal(t, "U3", res.InviterID)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, 4, h.tracker.GetCount("U3"))
	_, ok := h.tracker.GetInviter("M1")
	assert.False(t, ok)
	_, ok = h.store.inviter("M1")
	assert.False(t, ok)

	sent := h.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, NoticeLeave, sent[0].Kind)
	assert.Equal(t, "user-M1 left, <@U3> now has 4", sent[0].Text)
	assert.Zero(t, h.platform.fetches)
}

func TestLeaveUnknownInviterUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.counts = []models.InviteCount{{UserID: "U3", Count: 0}}
	h.store.invitedBy = map[string]string{"M1": "U3"}
	require.NoError(t, h.tracker.Load(ctx))

	res := h.tracker.HandleLeave(ctx, member("M1"))
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, "user-M1 left, Unknown User now has 0", res.Notice.Text)
}

func TestLeaveWithoutRecord(t *testing.T) {
	h := newHarness(t)
	res := h.tracker.HandleLeave(context.Background(), member("M9"))
	assert.False(t, res.Resolved)
	assert.Equal(t, "Goodbye user-M9!", res.Notice.Text)
	assert.True(t, res.Notified)
}

func TestLeaveFeatureGates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.counts = []models.InviteCount{{UserID: "U3", Count: 5}}
	h.store.invitedBy = map[string]string{"M1": "U3"}
	require.NoError(t, h.tracker.Load(ctx))

	h.settings.features[FeatureInviteTracking] = false
	h.settings.features[FeatureLeaveMessages] = false
	res := h.tracker.HandleLeave(ctx, member("M1"))

	assert.False(t, res.Resolved)
	assert.False(t, res.Notified)
	assert.Equal(t, 5, h.tracker.GetCount("U3"))
	_, ok := h.tracker.GetInviter("M1")
	assert.True(t, ok)
}

func TestPersistenceFailureDoesNotStopWorkflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G",
		models.Snapshot{{Code: "A", Uses: 3, CreatorID: "U1"}},
		models.Snapshot{{Code: "A", Uses: 4, CreatorID: "U1"}},
	)
	h.tracker.HandleGuildJoin(ctx, "G")
	h.store.fail = true

	res := h.tracker.HandleJoin(ctx, member("M1"))
	assert.True(t, res.Resolved)
	assert.True(t, res.Notified)
	assert.Equal(t, 1, h.tracker.GetCount("U1"))
}

func TestResetQueries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.counts = []models.InviteCount{{UserID: "U1", Count: 7}, {UserID: "U2", Count: 2}}
	h.store.invitedBy = map[string]string{"M1": "U1"}
	require.NoError(t, h.tracker.Load(ctx))

	assert.Equal(t, 7, h.tracker.ResetCount(ctx, "U1"))
	assert.Equal(t, 0, h.tracker.GetCount("U1"))

	assert.Equal(t, 2, h.tracker.ResetAll(ctx))
	assert.Equal(t, 0, h.tracker.ResetAll(ctx))
	assert.Empty(t, h.tracker.GetLeaderboard(10))
}

func TestConcurrentJoinsSameGuildAreSerialized(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const joins = 8
	snaps := make([]models.Snapshot, 0, joins+1)
	for i := 0; i <= joins; i++ {
		snaps = append(snaps, models.Snapshot{{Code: "A", Uses: i, CreatorID: "U1"}})
	}
	h.platform.push("G", snaps...)
	h.tracker.HandleGuildJoin(ctx, "G")

	// Widen the window between fetch and replace.
	h.platform.onFetched = func(string) { time.Sleep(time.Millisecond) }

	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.tracker.HandleJoin(ctx, member(fmt.Sprintf("M%d", i)))
		}()
	}
	wg.Wait()

	assert.Equal(t, joins, h.tracker.GetCount("U1"))
}

func TestWarmLoadsEveryGuild(t *testing.T) {
	h := newHarness(t)
	h.platform.guilds = []string{"G1", "G2", "G3"}
	h.platform.push("G1", models.Snapshot{{Code: "a"}})
	h.platform.push("G2", models.Snapshot{{Code: "b"}})

	require.NoError(t, h.tracker.Warm(context.Background()))
	assert.Equal(t, 3, h.tracker.Snapshots().Len())
}

func TestInviteCreatedRefreshesBaseline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.platform.push("G",
		models.Snapshot{{Code: "A", Uses: 2, CreatorID: "U1"}},
		models.Snapshot{{Code: "A", Uses: 2, CreatorID: "U1"}, {Code: "NEW", Uses: 0, CreatorID: "U2"}},
		models.Snapshot{{Code: "A", Uses: 2, CreatorID: "U1"}, {Code: "NEW", Uses: 1, CreatorID: "U2"}},
	)
	h.tracker.HandleGuildJoin(ctx, "G")
	h.tracker.HandleInviteCreated(ctx, "G")

	res := h.tracker.HandleJoin(ctx, member("M1"))
	require.True(t, res.Resolved)
	assert.Equal(t, "U2", res.Attribution.InviterID)
}

func TestGuildLeaveForgetsSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.tracker.HandleGuildJoin(ctx, "G")
	h.tracker.HandleGuildLeave("G")
	_, ok := h.tracker.Snapshots().Get("G")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "hi <@1>, {unknown}", Format("hi {user}, {unknown}", map[string]string{"user": "<@1>"}))
	assert.Equal(t, "plain", Format("plain", nil))
}
