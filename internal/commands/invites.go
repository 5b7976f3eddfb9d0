package commands

import (
	"strconv"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var Invites = &discordgo.ApplicationCommand{
	Name:        "invites",
	Description: "Check how many members someone has invited",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to check (defaults to you)",
			Required:    false,
		},
	},
}

func InvitesCmd(ctx framework.Context, d *Deps) {
	if !trackingEnabled(ctx, d) {
		return
	}
	user, _, ok := targetUser(ctx)
	if !ok {
		ctx.ReplyEphemeral(utils.EmojiCross + " Please mention a valid user.")
		return
	}

	count := d.Tracker.GetCount(user.ID)
	embed := utils.InfoEmbed(
		d.Config.EmbedTitle("invite_count_title"),
		format(d.Config.Message("invite_count_message"), map[string]string{
			"user":  user.Mention(),
			"count": strconv.Itoa(count),
		}),
		utils.ColorBlue,
	)
	ctx.ReplyEmbed(utils.WithThumbnail(embed, user.AvatarURL("")))
}
