package utils

import (
	"github.com/bwmarrin/discordgo"
)

// ErrorEmbed builds the red error reply used by commands.
func ErrorEmbed(title, message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       EmojiCross + " " + title,
		Description: message,
		Color:       ColorRed,
	}
}

// SuccessEmbed builds the green confirmation reply used by commands.
func SuccessEmbed(title, message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       EmojiTick + " " + title,
		Description: message,
		Color:       ColorGreen,
	}
}
