package commands

import (
	"fmt"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var Help = &discordgo.ApplicationCommand{
	Name:        "help",
	Description: "Show available commands",
}

// HelpSelectID is the custom ID of the help category menu.
const HelpSelectID = "help_category_select"

func HelpCmd(ctx framework.Context, d *Deps) {
	embed := &discordgo.MessageEmbed{
		Title:       "Bot Commands",
		Description: fmt.Sprintf("Select a category below to view commands.\nPrefix: `%s`", d.Config.Prefix()),
		Color:       utils.ColorDark,
	}

	menu := discordgo.SelectMenu{
		CustomID:    HelpSelectID,
		Placeholder: "Select a category",
		Options: []discordgo.SelectMenuOption{
			{Label: "Invites", Value: "help_invites", Description: "Invite counts and leaderboard"},
			{Label: "Styles", Value: "help_styles", Description: "Message styles and configuration"},
			{Label: "Utility", Value: "help_utility", Description: "General bot utilities"},
		},
	}

	ctx.ReplyComponent(embed, []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
	})
}

// HelpSelect answers the category menu posted by HelpCmd.
func HelpSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}

	var embed *discordgo.MessageEmbed
	switch data.Values[0] {
	case "help_invites":
		embed = &discordgo.MessageEmbed{
			Title: "Invite Commands",
			Color: utils.ColorDark,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "/invites [user]", Value: "Show how many members someone invited"},
				{Name: "/leaderboard [limit]", Value: "Top inviters (aliases: lb, top)"},
				{Name: "/whoinvited [user]", Value: "Show who invited a member"},
				{Name: "/resetinvites [user]", Value: "Reset one member or everyone (admin)"},
			},
		}
	case "help_styles":
		embed = &discordgo.MessageEmbed{
			Title: "Style Commands",
			Color: utils.ColorDark,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "/styles", Value: "List available message styles"},
				{Name: "/setstyle <name>", Value: "Switch message style (admin)"},
				{Name: "/reloadconfig", Value: "Reload configuration files (admin)"},
			},
		}
	case "help_utility":
		embed = &discordgo.MessageEmbed{
			Title: "Utility Commands",
			Color: utils.ColorDark,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "/help", Value: "Show this menu"},
				{Name: "/ping", Value: "Check bot latency"},
				{Name: "/stats", Value: "Bot and tracker statistics"},
			},
		}
	}

	if embed != nil {
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: i.Message.Components,
			},
		})
	}
}
