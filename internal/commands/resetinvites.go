package commands

import (
	"context"
	"strconv"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var adminPerms int64 = discordgo.PermissionAdministrator

var ResetInvites = &discordgo.ApplicationCommand{
	Name:                     "resetinvites",
	Description:              "Reset invite counts for one member or everyone (admin)",
	DefaultMemberPermissions: &adminPerms,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to reset (omit to reset everyone)",
			Required:    false,
		},
	},
}

func ResetInvitesCmd(ctx framework.Context, d *Deps) {
	if !requireAdmin(ctx, d) || !trackingEnabled(ctx, d) {
		return
	}
	user, explicit, ok := targetUser(ctx)
	if !ok {
		ctx.ReplyEphemeral(utils.EmojiCross + " Please mention a valid user.")
		return
	}

	title := d.Config.EmbedTitle("reset_invites_title")
	if explicit {
		old := d.Tracker.ResetCount(context.Background(), user.ID)
		ctx.ReplyEmbed(utils.InfoEmbed(title, format(d.Config.Message("user_invites_reset"), map[string]string{
			"user":  user.Mention(),
			"count": strconv.Itoa(old),
		}), utils.ColorGreen))
		return
	}

	n := d.Tracker.ResetAll(context.Background())
	ctx.ReplyEmbed(utils.InfoEmbed(title, format(d.Config.Message("all_invites_reset"), map[string]string{
		"count": strconv.Itoa(n),
	}), utils.ColorGreen))
}
