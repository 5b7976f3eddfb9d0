package commands

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var Ping = &discordgo.ApplicationCommand{
	Name:        "ping",
	Description: "Check bot latency",
}

func PingCmd(ctx framework.Context, d *Deps) {
	msg, _ := ctx.Reply(utils.EmojiTick + " Pong! Calculating...")

	// Latency from the snowflake of the triggering message or interaction.
	var timestamp int64
	if slashCtx, ok := ctx.(*framework.SlashContext); ok {
		id, _ := strconv.ParseInt(slashCtx.Interaction.ID, 10, 64)
		timestamp = (id >> 22) + 1420070400000
	} else if prefixCtx, ok := ctx.(*framework.PrefixContext); ok {
		id, _ := strconv.ParseInt(prefixCtx.Message.ID, 10, 64)
		timestamp = (id >> 22) + 1420070400000
	}
	botLatency := time.Since(time.UnixMilli(timestamp))
	apiLatency := ctx.GetSession().HeartbeatLatency()

	dbStatus, redisStatus := "`not configured`", "`not configured`"
	var wg sync.WaitGroup
	if d.DB != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dbStatus = measure(d.DB.Ping)
		}()
	}
	if d.Redis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			redisStatus = measure(d.Redis.Ping)
		}()
	}
	wg.Wait()

	embed := &discordgo.MessageEmbed{
		Title: utils.EmojiTick + " Pong!",
		Color: utils.ColorDark,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Latency", Value: fmt.Sprintf("`%dms`", botLatency.Milliseconds()), Inline: true},
			{Name: "API Latency", Value: fmt.Sprintf("`%dms`", apiLatency.Milliseconds()), Inline: true},
			{Name: "Database", Value: dbStatus, Inline: true},
			{Name: "Redis", Value: redisStatus, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", ctx.GetAuthor().Username),
			IconURL: ctx.GetAuthor().AvatarURL(""),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	ctx.EditReplyEmbed(msg, embed)
}

func measure(ping func() error) string {
	start := time.Now()
	if err := ping(); err != nil {
		return "`❌ Error`"
	}
	return fmt.Sprintf("`%dms`", time.Since(start).Milliseconds())
}
