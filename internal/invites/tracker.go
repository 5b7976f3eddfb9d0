package invites

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"discord-invite-tracker/internal/metrics"
	"discord-invite-tracker/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Feature flag names.
const (
	FeatureInviteTracking     = "invite_tracking"
	FeatureWelcomeMessages    = "welcome_messages"
	FeatureLeaveMessages      = "leave_messages"
	FeatureAutoRoleAssignment = "auto_role_assignment"
)

// Embed title keys.
const (
	TitleNewMember  = "new_member_title"
	TitleMemberLeft = "member_left_title"
)

const warmConcurrency = 4

// Platform is the chat platform as seen by the tracker.
type Platform interface {
	InviteFetcher
	Guilds(ctx context.Context) ([]string, error)
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	MemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
	FetchUser(ctx context.Context, userID string) (*models.User, error)
}

type NoticeKind int

const (
	NoticeJoin NoticeKind = iota
	NoticeLeave
)

// Notice is a welcome or goodbye message ready to be posted.
type Notice struct {
	Kind   NoticeKind
	Member models.Member
	Title  string
	Text   string
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Settings is the live configuration the workflow consults on every event.
type Settings interface {
	FeatureEnabled(name string) bool
	InviterRoles() []models.RoleThreshold
	MemberRoleID() string
	Greeting() string
	DefaultGreeting() string
	LeaveMessage() string
	DefaultLeaveMessage() string
	EmbedTitle(key string) string
}

// JoinResult describes what HandleJoin did.
type JoinResult struct {
	Attribution Attribution
	Resolved    bool
	Count       int
	Granted     []string
	Notice      Notice
	Notified    bool
}

// LeaveResult describes what HandleLeave did.
type LeaveResult struct {
	InviterID string
	Resolved  bool
	Count     int
	Notice    Notice
	Notified  bool
}

// Tracker ties the snapshot cache, the resolver and the counters together.
// Its handlers never return errors: every failure is logged and the event is
// carried through to its notification.
type Tracker struct {
	platform  Platform
	notifier  Notifier
	settings  Settings
	snapshots *SnapshotCache
	counters  *Counters
	logger    *zap.Logger
}

func NewTracker(platform Platform, notifier Notifier, settings Settings, store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		platform:  platform,
		notifier:  notifier,
		settings:  settings,
		snapshots: NewSnapshotCache(platform, logger.Named("snapshots")),
		counters:  NewCounters(store, logger.Named("counters")),
		logger:    logger,
	}
}

// Load reads the durable tables. Call once before handling events.
func (t *Tracker) Load(ctx context.Context) error {
	return t.counters.Load(ctx)
}

func (t *Tracker) Snapshots() *SnapshotCache { return t.snapshots }

// Warm loads the invite snapshot of every guild the bot is in.
func (t *Tracker) Warm(ctx context.Context) error {
	guilds, err := t.platform.Guilds(ctx)
	if err != nil {
		return fmt.Errorf("list guilds: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, id := range guilds {
		id := id
		g.Go(func() error {
			s := t.snapshots.Refresh(gctx, id)
			t.logger.Info("invite cache loaded", zap.String("guild_id", id), zap.Int("invites", len(s)))
			return nil
		})
	}
	return g.Wait()
}

// HandleInviteCreated refreshes the guild's snapshot so the new invite has a
// baseline before anyone uses it. Invite deletions go through here too.
func (t *Tracker) HandleInviteCreated(ctx context.Context, guildID string) {
	s := t.snapshots.Refresh(ctx, guildID)
	t.logger.Debug("invite cache updated", zap.String("guild_id", guildID), zap.Int("invites", len(s)))
}

func (t *Tracker) HandleGuildJoin(ctx context.Context, guildID string) {
	t.snapshots.Refresh(ctx, guildID)
}

func (t *Tracker) HandleGuildLeave(guildID string) {
	t.snapshots.Forget(guildID)
}

// HandleJoin attributes a new member to an invite, credits the inviter,
// grants milestone roles and posts the welcome message.
func (t *Tracker) HandleJoin(ctx context.Context, m models.Member) JoinResult {
	var res JoinResult
	if m.Bot {
		return res
	}
	start := time.Now()
	defer func() { metrics.WorkflowSeconds.WithLabelValues("join").Observe(time.Since(start).Seconds()) }()

	log := t.logger.With(zap.String("guild_id", m.GuildID), zap.String("member_id", m.UserID))

	t.grantMemberRole(ctx, m, log)

	prev, hadPrev, cur := t.snapshots.Exchange(ctx, m.GuildID)
	if hadPrev && t.settings.FeatureEnabled(FeatureInviteTracking) {
		att, ok := Resolve(prev, cur)
		res.Attribution = att
		switch {
		case !ok:
			log.Info("could not determine inviter", zap.Int("old_invites", len(prev)), zap.Int("new_invites", len(cur)))
		case !att.Known():
			log.Info("invite has no creator", zap.String("code", att.Code))
		case att.InviterID == m.UserID:
			log.Warn("member credited to themselves, ignoring", zap.String("code", att.Code))
		default:
			res.Resolved = true
		}
	}

	if res.Resolved {
		metrics.JoinsTotal.WithLabelValues("attributed").Inc()
		inviter := res.Attribution.InviterID
		log = log.With(zap.String("inviter_id", inviter), zap.String("code", res.Attribution.Code))

		n, err := t.counters.Increment(ctx, inviter)
		if err != nil {
			log.Warn("invite count kept in memory only", zap.Error(err))
		}
		res.Count = n
		if err := t.counters.Record(ctx, m.UserID, inviter); err != nil {
			log.Warn("invited-by record kept in memory only", zap.Error(err))
		}
		log.Info("join attributed", zap.Int("count", n))

		res.Granted = t.grantMilestones(ctx, m.GuildID, inviter, n, log)

		res.Notice = Notice{
			Kind:   NoticeJoin,
			Member: m,
			Title:  t.settings.EmbedTitle(TitleNewMember),
			Text: Format(t.settings.Greeting(), map[string]string{
				"user":    m.Mention(),
				"inviter": models.Mention(inviter),
				"count":   strconv.Itoa(n),
			}),
		}
	} else {
		metrics.JoinsTotal.WithLabelValues("unresolved").Inc()
		res.Notice = Notice{
			Kind:   NoticeJoin,
			Member: m,
			Title:  t.settings.EmbedTitle(TitleNewMember),
			Text:   Format(t.settings.DefaultGreeting(), map[string]string{"user": m.Mention()}),
		}
	}

	if t.settings.FeatureEnabled(FeatureWelcomeMessages) {
		res.Notified = t.notify(ctx, res.Notice, log)
	}
	return res
}

// HandleLeave takes back the invite credited for a departing member.
func (t *Tracker) HandleLeave(ctx context.Context, m models.Member) LeaveResult {
	var res LeaveResult
	if m.Bot {
		return res
	}
	start := time.Now()
	defer func() { metrics.WorkflowSeconds.WithLabelValues("leave").Observe(time.Since(start).Seconds()) }()

	log := t.logger.With(zap.String("guild_id", m.GuildID), zap.String("member_id", m.UserID))

	if t.settings.FeatureEnabled(FeatureInviteTracking) {
		inviter, n, ok, err := t.counters.Release(ctx, m.UserID)
		if err != nil {
			log.Warn("leave kept in memory only", zap.Error(err))
		}
		if ok {
			res.InviterID, res.Resolved, res.Count = inviter, true, n
			log.Info("invite count decreased", zap.String("inviter_id", inviter), zap.Int("count", n))
		}
	}

	if res.Resolved {
		metrics.LeavesTotal.WithLabelValues("attributed").Inc()
		inviterMention := "Unknown User"
		if u, err := t.platform.FetchUser(ctx, res.InviterID); err == nil && u != nil {
			inviterMention = u.Mention()
		} else {
			log.Debug("inviter lookup failed", zap.String("inviter_id", res.InviterID), zap.Error(err))
		}
		res.Notice = Notice{
			Kind:   NoticeLeave,
			Member: m,
			Title:  t.settings.EmbedTitle(TitleMemberLeft),
			Text: Format(t.settings.LeaveMessage(), map[string]string{
				"user":    m.Username,
				"inviter": inviterMention,
				"count":   strconv.Itoa(res.Count),
			}),
		}
	} else {
		metrics.LeavesTotal.WithLabelValues("untracked").Inc()
		res.Notice = Notice{
			Kind:   NoticeLeave,
			Member: m,
			Title:  t.settings.EmbedTitle(TitleMemberLeft),
			Text:   Format(t.settings.DefaultLeaveMessage(), map[string]string{"user": m.Username}),
		}
	}

	if t.settings.FeatureEnabled(FeatureLeaveMessages) {
		res.Notified = t.notify(ctx, res.Notice, log)
	}
	return res
}

func (t *Tracker) grantMemberRole(ctx context.Context, m models.Member, log *zap.Logger) {
	roleID := t.settings.MemberRoleID()
	if roleID == "" || !t.settings.FeatureEnabled(FeatureAutoRoleAssignment) {
		return
	}
	if err := t.platform.GrantRole(ctx, m.GuildID, m.UserID, roleID); err != nil {
		metrics.RoleGrantFailures.Inc()
		log.Warn("member role not assigned", zap.String("role_id", roleID),
			zap.Error(fmt.Errorf("%w: %v", ErrRoleGrantFailure, err)))
		return
	}
	log.Info("member role assigned", zap.String("role_id", roleID))
}

// grantMilestones grants every threshold role the inviter now qualifies for.
// One failed grant does not stop the others.
func (t *Tracker) grantMilestones(ctx context.Context, guildID, inviterID string, count int, log *zap.Logger) []string {
	table := t.settings.InviterRoles()
	if len(table) == 0 {
		return nil
	}

	held, err := t.platform.MemberRoles(ctx, guildID, inviterID)
	if err != nil {
		log.Debug("inviter roles unavailable, granting without filter", zap.Error(err))
	}

	var granted []string
	for _, roleID := range RolesToGrant(count, table, held) {
		if err := t.platform.GrantRole(ctx, guildID, inviterID, roleID); err != nil {
			metrics.RoleGrantFailures.Inc()
			log.Warn("milestone role not assigned", zap.String("role_id", roleID),
				zap.Error(fmt.Errorf("%w: %v", ErrRoleGrantFailure, err)))
			continue
		}
		granted = append(granted, roleID)
		log.Info("milestone role assigned", zap.String("role_id", roleID), zap.Int("count", count))
	}
	return granted
}

func (t *Tracker) notify(ctx context.Context, n Notice, log *zap.Logger) bool {
	if t.notifier == nil {
		return false
	}
	if err := t.notifier.Notify(ctx, n); err != nil {
		log.Warn("notification not sent", zap.Error(err))
		return false
	}
	return true
}

// Queries

func (t *Tracker) GetCount(userID string) int {
	return t.counters.Count(userID)
}

func (t *Tracker) GetLeaderboard(limit int) []models.InviteCount {
	return t.counters.Leaderboard(limit)
}

// GetInviter returns who invited memberID, or false when unknown.
func (t *Tracker) GetInviter(memberID string) (string, bool) {
	return t.counters.Inviter(memberID)
}

// ResetCount zeroes one user's count and returns the old value. A
// persistence failure is logged; the reset still holds in memory.
func (t *Tracker) ResetCount(ctx context.Context, userID string) int {
	old, err := t.counters.Reset(ctx, userID)
	if err != nil {
		t.logger.Warn("reset kept in memory only", zap.String("user_id", userID), zap.Error(err))
	}
	return old
}

// ResetAll clears every count and invited-by record and returns the number of
// inviters that were cleared.
func (t *Tracker) ResetAll(ctx context.Context) int {
	n, err := t.counters.ResetAll(ctx)
	if err != nil {
		t.logger.Warn("reset kept in memory only", zap.Error(err))
	}
	return n
}

// Format fills {name} placeholders. Unknown placeholders are left as is.
func Format(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
