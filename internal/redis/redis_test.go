package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	c := &Client{prefix: "invites"}
	assert.Equal(t, "invites", c.Key())
	assert.Equal(t, "invites:name:123", c.Key("name", "123"))
	assert.Equal(t, "invites:leaderboard", c.LeaderboardKey())
}
