package bot

import (
	"log"
	"strings"

	"discord-invite-tracker/internal/commands"
	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/metrics"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) Ready(s *discordgo.Session, r *discordgo.Ready) {
	metrics.GatewayEvents.WithLabelValues("ready").Inc()
	// Manually populate state user since state tracking is disabled
	if s.State.User == nil {
		s.State.User = r.User
	}

	log.Printf("✅ Bot %s is ready!", r.User.Username)
	log.Printf("📊 Connected to %d servers", len(r.Guilds))

	for _, g := range r.Guilds {
		b.platform.addGuild(g.ID)
	}

	go func() {
		ctx, cancel := b.eventContext()
		defer cancel()
		if err := b.Tracker.Warm(ctx); err != nil {
			b.Logger.Error("invite cache warm-up failed", zap.Error(err))
			return
		}
		log.Printf("✅ Invite cache loaded for %d servers", b.Tracker.Snapshots().Len())
	}()
}

func (b *Bot) GuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	metrics.GatewayEvents.WithLabelValues("guild_create").Inc()
	b.platform.addGuild(g.ID)

	go func() {
		ctx, cancel := b.eventContext()
		defer cancel()
		b.Tracker.HandleGuildJoin(ctx, g.ID)
	}()
}

func (b *Bot) GuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	metrics.GatewayEvents.WithLabelValues("guild_delete").Inc()
	// Unavailable guilds are outages, not removals.
	if g.Unavailable {
		return
	}
	b.platform.removeGuild(g.ID)
	b.Tracker.HandleGuildLeave(g.ID)
	log.Printf("Left guild %s", g.ID)
}

func (b *Bot) GuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	metrics.GatewayEvents.WithLabelValues("member_add").Inc()
	if m.Member == nil {
		return
	}
	member := memberFromDiscord(m.GuildID, m.Member)

	go func() {
		ctx, cancel := b.eventContext()
		defer cancel()
		b.Tracker.HandleJoin(ctx, member)
	}()
}

func (b *Bot) GuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	metrics.GatewayEvents.WithLabelValues("member_remove").Inc()
	if m.Member == nil {
		return
	}
	member := memberFromDiscord(m.GuildID, m.Member)

	go func() {
		ctx, cancel := b.eventContext()
		defer cancel()
		b.Tracker.HandleLeave(ctx, member)
	}()
}

func (b *Bot) InviteCreate(s *discordgo.Session, i *discordgo.InviteCreate) {
	metrics.GatewayEvents.WithLabelValues("invite_create").Inc()
	if i.GuildID == "" {
		return
	}
	go func() {
		ctx, cancel := b.eventContext()
		defer cancel()
		b.Tracker.HandleInviteCreated(ctx, i.GuildID)
	}()
}

func (b *Bot) InviteDelete(s *discordgo.Session, i *discordgo.InviteDelete) {
	metrics.GatewayEvents.WithLabelValues("invite_delete").Inc()
	if i.GuildID == "" {
		return
	}
	go func() {
		ctx, cancel := b.eventContext()
		defer cancel()
		b.Tracker.HandleInviteCreated(ctx, i.GuildID)
	}()
}

func (b *Bot) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	metrics.GatewayEvents.WithLabelValues("interaction").Inc()
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		go commands.HandleSlash(s, i, b.deps)
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == commands.HelpSelectID {
			commands.HelpSelect(s, i)
		}
	}
}

func (b *Bot) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Fast-path: skip bots immediately
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	prefix := b.Config.Prefix()
	if !strings.HasPrefix(m.Content, prefix) {
		return
	}
	metrics.GatewayEvents.WithLabelValues("prefix_command").Inc()

	parts := strings.Fields(strings.TrimPrefix(m.Content, prefix))
	if len(parts) == 0 {
		return
	}
	ctx := framework.NewPrefixContext(s, m, parts[1:])
	go commands.Run(parts[0], ctx, b.deps)
}
