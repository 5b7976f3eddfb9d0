package commands

import (
	"fmt"
	"strings"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/config"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var SetStyle = &discordgo.ApplicationCommand{
	Name:                     "setstyle",
	Description:              "Change the bot's message style (admin)",
	DefaultMemberPermissions: &adminPerms,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "style",
			Description: "Style name, see /styles",
			Required:    true,
		},
	},
}

var Styles = &discordgo.ApplicationCommand{
	Name:        "styles",
	Description: "List the available message styles",
}

var ReloadConfig = &discordgo.ApplicationCommand{
	Name:                     "reloadconfig",
	Description:              "Reload configuration and style files (admin)",
	DefaultMemberPermissions: &adminPerms,
}

func SetStyleCmd(ctx framework.Context, d *Deps) {
	if !requireAdmin(ctx, d) {
		return
	}
	args := ctx.GetArgs()
	if len(args) == 0 {
		ctx.ReplyEphemeral(utils.EmojiCross + " Usage: setstyle <name>")
		return
	}

	if err := d.Config.SetStyle(args[0]); err != nil {
		lines := make([]string, 0)
		for _, name := range d.Config.AvailableStyles() {
			info := d.Config.StyleInfo(name)
			lines = append(lines, fmt.Sprintf("**%s** - %s (%s, %s)", name, info.Name, info.Language, info.Tone))
		}
		ctx.ReplyEmbed(utils.ErrorEmbed("Invalid Style", "**Available styles:**\n"+strings.Join(lines, "\n")))
		return
	}

	info := d.Config.CurrentStyleInfo()
	ctx.ReplyEmbed(utils.SuccessEmbed("Style Updated", describeStyle(info, true)))
}

func StylesCmd(ctx framework.Context, d *Deps) {
	current := d.Config.CurrentStyle()

	var blocks []string
	for _, name := range d.Config.AvailableStyles() {
		info := d.Config.StyleInfo(name)
		marker := utils.EmojiIdle
		if name == current {
			marker = utils.EmojiActive
		}
		blocks = append(blocks, fmt.Sprintf("%s **%s** - %s\n   📝 %s\n   🌍 %s | 🎭 %s",
			marker, name, info.Name, info.Description, info.Language, info.Tone))
	}

	embed := utils.InfoEmbed(utils.EmojiStyle+" Available Communication Styles", strings.Join(blocks, "\n\n"), utils.ColorBlue)
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s = Current style | Use %ssetstyle <name> to change", utils.EmojiActive, d.Config.Prefix()),
	}
	ctx.ReplyEmbed(embed)
}

func ReloadConfigCmd(ctx framework.Context, d *Deps) {
	if !requireAdmin(ctx, d) {
		return
	}
	if err := d.Config.Reload(); err != nil {
		ctx.ReplyEmbed(utils.ErrorEmbed("Reload Failed", fmt.Sprintf("Error reloading configuration: %v", err)))
		return
	}
	info := d.Config.CurrentStyleInfo()
	ctx.ReplyEmbed(utils.SuccessEmbed("Configuration Reloaded",
		"All configuration files have been reloaded successfully!\n\n"+describeStyle(info, false)))
}

func describeStyle(info config.StyleInfo, withDescription bool) string {
	s := fmt.Sprintf("**Style:** %s\n**Language:** %s\n**Tone:** %s", info.Name, info.Language, info.Tone)
	if withDescription {
		s += "\n**Description:** " + info.Description
	}
	return s
}
