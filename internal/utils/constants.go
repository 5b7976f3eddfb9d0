package utils

const (
	// Emojis
	EmojiTick   = "✅"
	EmojiCross  = "❌"
	EmojiWarn   = "⚠️"
	EmojiStyle  = "🎨"
	EmojiActive = "🔸"
	EmojiIdle   = "▫️"

	// Colors
	ColorDark   = 0x2f3136
	ColorGreen  = 0x2ecc71
	ColorRed    = 0xe74c3c
	ColorBlue   = 0x3498db
	ColorGold   = 0xf1c40f
	ColorOrange = 0xe67e22
)

// Medals for the top three leaderboard places.
var Medals = []string{"🥇", "🥈", "🥉"}
