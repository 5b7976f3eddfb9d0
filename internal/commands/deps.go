package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"discord-invite-tracker/internal/cache"
	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/config"
	"discord-invite-tracker/internal/database"
	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/models"
	"discord-invite-tracker/internal/redis"

	"github.com/bwmarrin/discordgo"
)

// Deps is everything a command handler may need. DB and Redis are nil when
// the bot runs on the file store without a cache.
type Deps struct {
	Tracker   *invites.Tracker
	Config    *config.Manager
	Names     *cache.Names
	Cache     *cache.Cache
	DB        *database.Database
	Redis     *redis.Client
	StartTime time.Time
	Guilds    func() int
}

// parseUserID accepts a raw ID or a <@id> / <@!id> mention.
func parseUserID(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "<@") && strings.HasSuffix(arg, ">") {
		arg = strings.TrimPrefix(arg[2:len(arg)-1], "!")
	}
	if arg == "" {
		return "", false
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return arg, true
}

// targetUser returns the user named by the first argument, or the author when
// there is none. ok is false when an argument was given but is not a user.
func targetUser(ctx framework.Context) (user *discordgo.User, explicit bool, ok bool) {
	args := ctx.GetArgs()
	if len(args) == 0 {
		return ctx.GetAuthor(), false, true
	}
	id, valid := parseUserID(args[0])
	if !valid {
		return nil, true, false
	}

	switch c := ctx.(type) {
	case *framework.PrefixContext:
		for _, u := range c.Message.Mentions {
			if u.ID == id {
				return u, true, true
			}
		}
	case *framework.SlashContext:
		if r := c.Interaction.ApplicationCommandData().Resolved; r != nil {
			if u, found := r.Users[id]; found {
				return u, true, true
			}
		}
	}

	if u, err := ctx.GetSession().User(id); err == nil {
		return u, true, true
	}
	return &discordgo.User{ID: id}, true, true
}

// isAdmin reports whether the author has the Administrator permission.
func isAdmin(ctx framework.Context) bool {
	if m := ctx.GetMember(); m != nil && m.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	author := ctx.GetAuthor()
	if author == nil {
		return false
	}
	perms, err := ctx.GetSession().UserChannelPermissions(author.ID, ctx.GetChannelID())
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func requireAdmin(ctx framework.Context, d *Deps) bool {
	if isAdmin(ctx) {
		return true
	}
	ctx.ReplyEphemeral(d.Config.Message("no_permission"))
	return false
}

func trackingEnabled(ctx framework.Context, d *Deps) bool {
	if d.Config.FeatureEnabled(invites.FeatureInviteTracking) {
		return true
	}
	ctx.Reply(d.Config.Message("feature_disabled"))
	return false
}

func format(tmpl string, vars map[string]string) string {
	return invites.Format(tmpl, vars)
}

// slashArgs flattens command options into positional args so slash and
// prefix invocations share one implementation.
func slashArgs(i *discordgo.InteractionCreate) []string {
	var args []string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionUser:
			args = append(args, models.Mention(fmt.Sprint(opt.Value)))
		default:
			args = append(args, strings.TrimSpace(optionString(opt)))
		}
	}
	return args
}

func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return strconv.FormatInt(opt.IntValue(), 10)
	case discordgo.ApplicationCommandOptionString:
		return opt.StringValue()
	}
	return ""
}
