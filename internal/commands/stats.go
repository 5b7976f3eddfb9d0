package commands

import (
	"fmt"
	"runtime"
	"time"

	"discord-invite-tracker/internal/commands/framework"
	"discord-invite-tracker/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var Stats = &discordgo.ApplicationCommand{
	Name:        "stats",
	Description: "Show bot statistics",
}

func StatsCmd(ctx framework.Context, d *Deps) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(d.StartTime)
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60
	uptimeStr := fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)

	guilds := 0
	if d.Guilds != nil {
		guilds = d.Guilds()
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot Statistics",
		Color: utils.ColorDark,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Bot Info",
				Value: fmt.Sprintf("**Uptime:** %s\n**Goroutines:** %d\n**Go Version:** %s", uptimeStr, runtime.NumGoroutine(), runtime.Version()),
			},
			{
				Name: "Invite Tracking",
				Value: fmt.Sprintf("**Guilds:** %d\n**Cached snapshots:** %d\n**Style:** %s",
					guilds, d.Tracker.Snapshots().Len(), d.Config.CurrentStyle()),
			},
			{
				Name:  "Name Cache",
				Value: cacheStats(d),
			},
			{
				Name:  "Memory",
				Value: fmt.Sprintf("**Alloc:** %v MB\n**Sys:** %v MB\n**NumGC:** %v", bToMb(m.Alloc), bToMb(m.Sys), m.NumGC),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", ctx.GetAuthor().Username),
			IconURL: ctx.GetAuthor().AvatarURL(""),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if u := ctx.GetSession().State.User; u != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("")}
	}

	ctx.ReplyEmbed(embed)
}

func cacheStats(d *Deps) string {
	if d.Cache == nil {
		return "disabled"
	}
	m := d.Cache.GetMetrics()
	return fmt.Sprintf("**L1:** %d hits (%.0f%%)\n**L2:** %d hits (%.0f%%)\n**Evicted:** %d",
		m.L1Hits, m.L1HitRate*100, m.L2Hits, m.L2HitRate*100, m.L1KeysEvicted)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
