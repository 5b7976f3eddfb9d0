package bot

import (
	"context"
	"errors"
	"sort"
	"sync"

	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/models"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var errNoWelcomeChannel = errors.New("welcome channel is not configured")

// sessionPlatform adapts a discordgo session to invites.Platform.
type sessionPlatform struct {
	s *discordgo.Session

	mu     sync.RWMutex
	guilds map[string]struct{}
}

func newSessionPlatform(s *discordgo.Session) *sessionPlatform {
	return &sessionPlatform{s: s, guilds: make(map[string]struct{})}
}

func (p *sessionPlatform) addGuild(id string) {
	p.mu.Lock()
	p.guilds[id] = struct{}{}
	p.mu.Unlock()
}

func (p *sessionPlatform) removeGuild(id string) {
	p.mu.Lock()
	delete(p.guilds, id)
	p.mu.Unlock()
}

func (p *sessionPlatform) guildCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.guilds)
}

// Guilds lists the guilds seen in Ready and GuildCreate.
func (p *sessionPlatform) Guilds(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.guilds))
	for id := range p.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *sessionPlatform) FetchInvites(ctx context.Context, guildID string) (models.Snapshot, error) {
	list, err := p.s.GuildInvites(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	snap := make(models.Snapshot, 0, len(list))
	for _, inv := range list {
		if inv == nil {
			continue
		}
		entry := models.Invite{Code: inv.Code, Uses: inv.Uses}
		if inv.Inviter != nil {
			entry.CreatorID = inv.Inviter.ID
		}
		snap = append(snap, entry)
	}
	return snap, nil
}

func (p *sessionPlatform) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	m, err := p.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return m.Roles, nil
}

func (p *sessionPlatform) FetchUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := p.s.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &models.User{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL("")}, nil
}

// channelNotifier posts join and leave notices to the welcome channel.
type channelNotifier struct {
	s       *discordgo.Session
	channel func() string
}

func (n *channelNotifier) Notify(ctx context.Context, notice invites.Notice) error {
	channelID := n.channel()
	if channelID == "" {
		return errNoWelcomeChannel
	}
	color := utils.ColorGreen
	if notice.Kind == invites.NoticeLeave {
		color = utils.ColorRed
	}
	embed := utils.MemberEmbed(notice.Title, notice.Text, notice.Member.AvatarURL, color)
	_, err := n.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

func memberFromDiscord(guildID string, m *discordgo.Member) models.Member {
	out := models.Member{GuildID: guildID}
	if m == nil || m.User == nil {
		return out
	}
	out.UserID = m.User.ID
	out.Username = m.User.Username
	out.Bot = m.User.Bot
	out.AvatarURL = m.AvatarURL("")
	return out
}
