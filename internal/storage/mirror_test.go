package storage

import (
	"context"
	"errors"
	"testing"

	"discord-invite-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	got [][]models.InviteCount
	err error
}

func (m *recordingMirror) ReplaceLeaderboard(ctx context.Context, counts []models.InviteCount) error {
	m.got = append(m.got, counts)
	return m.err
}

func TestMirroredCopiesSavedCounts(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	mirror := &recordingMirror{}
	s := NewMirrored(fs, mirror, nil)
	ctx := context.Background()

	counts := []models.InviteCount{{UserID: "1", Count: 2}}
	require.NoError(t, s.SaveCounts(ctx, counts))
	require.Len(t, mirror.got, 1)
	assert.Equal(t, counts, mirror.got[0])

	loaded, err := s.LoadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, counts, loaded)
}

func TestMirroredIgnoresMirrorFailure(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	s := NewMirrored(fs, &recordingMirror{err: errors.New("redis down")}, nil)

	assert.NoError(t, s.SaveCounts(context.Background(), []models.InviteCount{{UserID: "1", Count: 1}}))
}

func TestMirroredWithoutMirror(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	s := NewMirrored(fs, nil, nil)
	assert.NoError(t, s.SaveCounts(context.Background(), nil))
}
