package cache

import (
	"context"
	"errors"

	"discord-invite-tracker/internal/models"
)

const UnknownUser = "Unknown User"

type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) (*models.User, error)
}

// Names resolves user IDs to usernames for leaderboards and leave messages.
type Names struct {
	cache *Cache
	users UserFetcher
}

func NewNames(c *Cache, users UserFetcher) *Names {
	return &Names{cache: c, users: users}
}

// Username returns the user's name, or UnknownUser if the lookup fails.
func (n *Names) Username(ctx context.Context, userID string) string {
	name, err := n.cache.Get(ctx, "username:"+userID, func(ctx context.Context) (string, error) {
		u, err := n.users.FetchUser(ctx, userID)
		if err != nil {
			return "", err
		}
		if u == nil || u.Username == "" {
			return "", errors.New("user has no name")
		}
		return u.Username, nil
	})
	if err != nil {
		return UnknownUser
	}
	return name
}
