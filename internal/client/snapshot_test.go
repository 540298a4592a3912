package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/models"
)

func openTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := OpenSnapshot(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { snap.Close() })
	return snap
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := openTestSnapshot(t)

	require.NoError(t, snap.SaveAnimes([]models.Anime{
		{ID: 1, Title: "Cowboy Bebop", Episodes: 26},
		{ID: 2, Title: "FLCL", Episodes: 6},
	}))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, snap.SaveStatuses(7, models.TagWatching, []models.Status{
		{ID: 10, UserID: 7, AnimeID: 1, Kind: models.KindWatch, Status: models.TagWatching, CreatedAt: now},
		{ID: 11, UserID: 7, AnimeID: 2, Kind: models.KindWatch, Status: models.TagWatching, CreatedAt: now},
	}))
	require.NoError(t, snap.SaveProgress(models.EpisodeProgress{UserID: 7, AnimeID: 1, Episodes: 12}))

	entries, err := snap.LoadLibrary(7, models.TagWatching)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Cowboy Bebop", entries[0].Title)
	assert.Equal(t, 26, entries[0].Episodes)
	assert.Equal(t, 12, entries[0].Watched)
	assert.Equal(t, models.TagWatching, entries[0].Status)

	assert.Equal(t, "FLCL", entries[1].Title)
	assert.Equal(t, 0, entries[1].Watched)
}

func TestSnapshotSaveReplacesTagRows(t *testing.T) {
	snap := openTestSnapshot(t)

	now := time.Now().UTC()
	require.NoError(t, snap.SaveStatuses(7, models.TagWatching, []models.Status{
		{ID: 10, UserID: 7, AnimeID: 1, Kind: models.KindWatch, Status: models.TagWatching, CreatedAt: now},
	}))

	// A later fetch without anime 1 means the server no longer has it under
	// this tag; the cache must not keep the stale row.
	require.NoError(t, snap.SaveStatuses(7, models.TagWatching, []models.Status{
		{ID: 12, UserID: 7, AnimeID: 3, Kind: models.KindWatch, Status: models.TagWatching, CreatedAt: now},
	}))

	entries, err := snap.LoadLibrary(7, models.TagWatching)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].AnimeID)
}

func TestSnapshotIsolatesUsers(t *testing.T) {
	snap := openTestSnapshot(t)

	now := time.Now().UTC()
	require.NoError(t, snap.SaveStatuses(7, models.TagCompleted, []models.Status{
		{ID: 10, UserID: 7, AnimeID: 1, Kind: models.KindWatch, Status: models.TagCompleted, CreatedAt: now},
	}))

	entries, err := snap.LoadLibrary(8, models.TagCompleted)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
