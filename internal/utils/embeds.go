package utils

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// MemberEmbed is the welcome/goodbye card posted to the welcome channel.
func MemberEmbed(title, text, avatarURL string, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: text,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	return embed
}

// InfoEmbed is the plain embed used by invite queries.
func InfoEmbed(title, text string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: text,
		Color:       color,
	}
}

func WithThumbnail(embed *discordgo.MessageEmbed, url string) *discordgo.MessageEmbed {
	if url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}
