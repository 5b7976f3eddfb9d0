package invites

import (
	"context"
	"errors"
	"sync"

	"discord-invite-tracker/internal/models"
)

var errBoom = errors.New("boom")

type memStore struct {
	mu        sync.Mutex
	counts    []models.InviteCount
	invitedBy map[string]string
	fail      bool
	saves     int
}

func (s *memStore) LoadCounts(ctx context.Context) ([]models.InviteCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.InviteCount(nil), s.counts...), nil
}

func (s *memStore) LoadAttribution(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.invitedBy))
	for k, v := range s.invitedBy {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) SaveCounts(ctx context.Context, counts []models.InviteCount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.fail {
		return errBoom
	}
	s.counts = append([]models.InviteCount(nil), counts...)
	return nil
}

func (s *memStore) SaveAttribution(ctx context.Context, invitedBy map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.fail {
		return errBoom
	}
	s.invitedBy = invitedBy
	return nil
}

func (s *memStore) count(userID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.counts {
		if row.UserID == userID {
			return row.Count, true
		}
	}
	return 0, false
}

func (s *memStore) inviter(memberID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.invitedBy[memberID]
	return id, ok
}

// fakePlatform serves invite snapshots from a per-guild queue. Once the queue
// runs dry the last snapshot keeps being returned.
type fakePlatform struct {
	mu        sync.Mutex
	queue     map[string][]models.Snapshot
	last      map[string]models.Snapshot
	fetchErr  error
	fetches   int
	guilds    []string
	roles     map[string][]string // userID -> held roles
	rolesErr  error
	grantErr  map[string]error // roleID -> error
	granted   []grant
	users     map[string]*models.User
	onFetched func(guildID string)
}

type grant struct {
	GuildID, UserID, RoleID string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		queue:    make(map[string][]models.Snapshot),
		last:     make(map[string]models.Snapshot),
		roles:    make(map[string][]string),
		grantErr: make(map[string]error),
		users:    make(map[string]*models.User),
	}
}

func (p *fakePlatform) push(guildID string, snaps ...models.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue[guildID] = append(p.queue[guildID], snaps...)
}

func (p *fakePlatform) FetchInvites(ctx context.Context, guildID string) (models.Snapshot, error) {
	p.mu.Lock()
	p.fetches++
	if p.fetchErr != nil {
		p.mu.Unlock()
		return nil, p.fetchErr
	}
	var s models.Snapshot
	if q := p.queue[guildID]; len(q) > 0 {
		s, p.queue[guildID] = q[0], q[1:]
		p.last[guildID] = s
	} else {
		s = p.last[guildID]
	}
	hook := p.onFetched
	p.mu.Unlock()

	if hook != nil {
		hook(guildID)
	}
	return append(models.Snapshot(nil), s...), nil
}

func (p *fakePlatform) Guilds(ctx context.Context) ([]string, error) {
	return p.guilds, nil
}

func (p *fakePlatform) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.grantErr[roleID]; err != nil {
		return err
	}
	p.granted = append(p.granted, grant{guildID, userID, roleID})
	return nil
}

func (p *fakePlatform) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rolesErr != nil {
		return nil, p.rolesErr
	}
	return p.roles[userID], nil
}

func (p *fakePlatform) FetchUser(ctx context.Context, userID string) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("unknown user")
}

func (p *fakePlatform) grants() []grant {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]grant(nil), p.granted...)
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []Notice
	err     error
}

func (n *fakeNotifier) Notify(ctx context.Context, notice Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notice)
	return nil
}

func (n *fakeNotifier) sent() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

type fakeSettings struct {
	features map[string]bool
	roles    []models.RoleThreshold
	memberID string
}

func (s *fakeSettings) FeatureEnabled(name string) bool {
	if v, ok := s.features[name]; ok {
		return v
	}
	return true
}

func (s *fakeSettings) InviterRoles() []models.RoleThreshold { return s.roles }
func (s *fakeSettings) MemberRoleID() string                 { return s.memberID }
func (s *fakeSettings) Greeting() string                     { return "{user} invited by {inviter} ({count})" }
func (s *fakeSettings) DefaultGreeting() string              { return "Welcome {user}!" }
func (s *fakeSettings) LeaveMessage() string                 { return "{user} left, {inviter} now has {count}" }
func (s *fakeSettings) DefaultLeaveMessage() string          { return "Goodbye {user}!" }
func (s *fakeSettings) EmbedTitle(key string) string         { return key }
