package commands

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/pool"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var Leaderboard = &discordgo.ApplicationCommand{
	Name:        "leaderboard",
	Description: "Show the members who invited the most people",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limit",
			Description: "How many places to show (max 20)",
			Required:    false,
			MinValue:    floatPtr(1),
			MaxValue:    invites.MaxLeaderboardSize,
		},
	},
}

func LeaderboardCmd(ctx framework.Context, d *Deps) {
	if !trackingEnabled(ctx, d) {
		return
	}

	limit := invites.DefaultLeaderboardSize
	if args := ctx.GetArgs(); len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			ctx.ReplyEphemeral(utils.EmojiCross + " The limit must be a number.")
			return
		}
		limit = n
	}

	title := d.Config.EmbedTitle("leaderboard_title")
	top := d.Tracker.GetLeaderboard(limit)
	if len(top) == 0 {
		ctx.ReplyEmbed(utils.InfoEmbed(title, d.Config.Message("no_invites_yet"), utils.ColorBlue))
		return
	}

	sb := pool.GetBuilder()
	defer pool.PutBuilder(sb)
	rows := make([]utils.CardRow, 0, len(top))
	for idx, entry := range top {
		name := d.Names.Username(context.Background(), entry.UserID)
		place := fmt.Sprintf("%d.", idx+1)
		if idx < len(utils.Medals) {
			place = utils.Medals[idx]
		}
		sb.WriteString(fmt.Sprintf("%s **%s** - %d invites\n", place, name, entry.Count))
		rows = append(rows, utils.CardRow{Rank: idx + 1, Name: name, Count: entry.Count})
	}

	embed := utils.InfoEmbed(title, sb.String(), utils.ColorGold)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Top %d inviters", len(top))}

	png, err := utils.RenderLeaderboard(stripEmoji(title), rows)
	if err != nil {
		ctx.ReplyEmbed(embed)
		return
	}
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + utils.CardFileName}
	ctx.ReplyEmbedFile(embed, &discordgo.File{
		Name:        utils.CardFileName,
		ContentType: "image/png",
		Reader:      bytes.NewReader(png),
	})
}

// stripEmoji drops leading symbols the card font cannot draw.
func stripEmoji(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
