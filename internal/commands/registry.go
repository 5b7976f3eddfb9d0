package commands

import (
	"strings"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

// Helper for float pointers
func floatPtr(v float64) *float64 {
	return &v
}

type Handler func(ctx framework.Context, d *Deps)

var Commands = []*discordgo.ApplicationCommand{
	Invites,
	Leaderboard,
	WhoInvited,
	ResetInvites,
	SetStyle,
	Styles,
	ReloadConfig,
	Help,
	Ping,
	Stats,
}

var handlers = map[string]Handler{
	"invites":      InvitesCmd,
	"leaderboard":  LeaderboardCmd,
	"whoinvited":   WhoInvitedCmd,
	"resetinvites": ResetInvitesCmd,
	"setstyle":     SetStyleCmd,
	"styles":       StylesCmd,
	"reloadconfig": ReloadConfigCmd,
	"help":         HelpCmd,
	"ping":         PingCmd,
	"stats":        StatsCmd,
}

var aliases = map[string]string{
	"lb":  "leaderboard",
	"top": "leaderboard",
}

// Lookup resolves a command name or alias.
func Lookup(name string) (string, Handler, bool) {
	name = strings.ToLower(name)
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	h, ok := handlers[name]
	return name, h, ok
}

// Run executes the named command and counts it.
func Run(name string, ctx framework.Context, d *Deps) bool {
	canonical, h, ok := Lookup(name)
	if !ok {
		return false
	}
	metrics.CommandsTotal.WithLabelValues(canonical).Inc()
	h(ctx, d)
	return true
}

// HandleSlash runs an application command interaction.
func HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate, d *Deps) {
	ctx := framework.NewSlashContextWithArgs(s, i, slashArgs(i))
	Run(i.ApplicationCommandData().Name, ctx, d)
}
