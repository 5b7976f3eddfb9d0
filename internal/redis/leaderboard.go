package redis

import (
	"context"

	"discord-invite-tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

// Leaderboard mirror. The durable store stays the source of truth; the
// sorted set lets dashboards read rankings without talking to the bot.

func (c *Client) LeaderboardKey() string {
	return c.Key("leaderboard")
}

// ReplaceLeaderboard rewrites the sorted set from a full counts table in one
// MULTI/EXEC so readers never see it half-built.
func (c *Client) ReplaceLeaderboard(ctx context.Context, counts []models.InviteCount) error {
	key := c.LeaderboardKey()
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(counts) == 0 {
			return nil
		}
		members := make([]redis.Z, 0, len(counts))
		for _, row := range counts {
			members = append(members, redis.Z{Score: float64(row.Count), Member: row.UserID})
		}
		pipe.ZAdd(ctx, key, members...)
		return nil
	})
	return err
}
