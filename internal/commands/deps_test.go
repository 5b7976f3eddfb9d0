package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"123456789", "123456789", true},
		{"<@123>", "123", true},
		{"<@!123>", "123", true},
		{"  <@42>  ", "42", true},
		{"<@&123>", "", false},
		{"<#123>", "", false},
		{"abc", "", false},
		{"", "", false},
		{"<@>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseUserID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripEmoji(t *testing.T) {
	assert.Equal(t, "Invite Leaderboard", stripEmoji("🏆 Invite Leaderboard"))
	assert.Equal(t, "Plain", stripEmoji("Plain"))
	assert.Equal(t, "", stripEmoji("🎉"))
}

func TestLookupAliases(t *testing.T) {
	name, h, ok := Lookup("lb")
	assert.True(t, ok)
	assert.Equal(t, "leaderboard", name)
	assert.NotNil(t, h)

	name, _, ok = Lookup("INVITES")
	assert.True(t, ok)
	assert.Equal(t, "invites", name)

	_, _, ok = Lookup("gcreate")
	assert.False(t, ok)
}
