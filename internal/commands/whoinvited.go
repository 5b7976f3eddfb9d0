package commands

import (
	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var WhoInvited = &discordgo.ApplicationCommand{
	Name:        "whoinvited",
	Description: "See who invited a member",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to look up (defaults to you)",
			Required:    false,
		},
	},
}

func WhoInvitedCmd(ctx framework.Context, d *Deps) {
	if !trackingEnabled(ctx, d) {
		return
	}
	user, _, ok := targetUser(ctx)
	if !ok {
		ctx.ReplyEphemeral(utils.EmojiCross + " Please mention a valid user.")
		return
	}

	title := d.Config.EmbedTitle("who_invited_title")
	vars := map[string]string{"user": user.Mention()}

	inviterID, found := d.Tracker.GetInviter(user.ID)
	if !found {
		ctx.ReplyEmbed(utils.InfoEmbed(title, format(d.Config.Message("inviter_unknown"), vars), utils.ColorOrange))
		return
	}

	inviter, err := ctx.GetSession().User(inviterID)
	if err != nil {
		ctx.ReplyEmbed(utils.InfoEmbed(title, format(d.Config.Message("inviter_not_found"), vars), utils.ColorRed))
		return
	}
	vars["inviter"] = inviter.Mention()
	embed := utils.InfoEmbed(title, format(d.Config.Message("invited_by_message"), vars), utils.ColorGreen)
	ctx.ReplyEmbed(utils.WithThumbnail(embed, inviter.AvatarURL("")))
}
