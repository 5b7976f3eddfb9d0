package storage

import (
	"context"

	"discord-invite-tracker/internal/models"

	"go.uber.org/zap"
)

// Store is the durable table pair the tracker writes through.
type Store interface {
	LoadCounts(ctx context.Context) ([]models.InviteCount, error)
	LoadAttribution(ctx context.Context) (map[string]string, error)
	SaveCounts(ctx context.Context, counts []models.InviteCount) error
	SaveAttribution(ctx context.Context, invitedBy map[string]string) error
}

// LeaderboardMirror receives a copy of the counts table after every save.
type LeaderboardMirror interface {
	ReplaceLeaderboard(ctx context.Context, counts []models.InviteCount) error
}

// Mirrored forwards every call to Store and copies saved counts to Mirror.
// Mirror failures are logged and never fail the save.
type Mirrored struct {
	Store
	Mirror LeaderboardMirror
	logger *zap.Logger
}

func NewMirrored(store Store, mirror LeaderboardMirror, logger *zap.Logger) *Mirrored {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirrored{Store: store, Mirror: mirror, logger: logger}
}

func (m *Mirrored) SaveCounts(ctx context.Context, counts []models.InviteCount) error {
	if err := m.Store.SaveCounts(ctx, counts); err != nil {
		return err
	}
	if m.Mirror != nil {
		if err := m.Mirror.ReplaceLeaderboard(ctx, counts); err != nil {
			m.logger.Warn("leaderboard mirror out of date", zap.Error(err))
		}
	}
	return nil
}
