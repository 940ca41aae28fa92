package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpen_MigratesAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := Open(path)
	require.NoError(t, err)

	v, err := SchemaVersion(database)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	require.NoError(t, database.Close())

	database, err = Open(path)
	require.NoError(t, err)
	defer database.Close()
	v, err = SchemaVersion(database)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestAssets(t *testing.T) {
	database := openTestDB(t)

	require.NoError(t, InsertAsset(database, Asset{ID: "a1", Path: "/videos/match.mp4", Title: "Match", Filesize: 1024}))
	d := 93.2
	require.NoError(t, InsertAsset(database, Asset{ID: "a2", Path: "/videos/drill.mkv", Duration: &d}))

	a, err := SelectAssetByID(database, "a1")
	require.NoError(t, err)
	assert.Equal(t, "/videos/match.mp4", a.Path)
	assert.Equal(t, "Match", a.Title)
	assert.Nil(t, a.Duration)
	assert.False(t, a.CreatedAt.IsZero())

	require.NoError(t, UpdateAssetDuration(database, "a1", 57.6))
	a, err = SelectAssetByID(database, "a1")
	require.NoError(t, err)
	require.NotNil(t, a.Duration)
	assert.Equal(t, 57.6, *a.Duration)

	all, err := SelectAssets(database)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = SelectAssetByID(database, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, UpdateAssetDuration(database, "missing", 1), ErrNotFound)

	err = InsertAsset(database, Asset{ID: "a3", Path: "/videos/match.mp4"})
	assert.Error(t, err, "paths are unique")
}

func TestTrimJobLifecycle(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, InsertAsset(database, Asset{ID: "a1", Path: "/videos/match.mp4"}))

	job, err := InsertTrimJob(database, "j1", "a1", 10, 20)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)

	_, err = InsertTrimJob(database, "j2", "a1", 30, 40)
	require.NoError(t, err)

	n, err := CountPendingTrimJobs(database)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	now := time.Now().UTC()
	claimed, err := ClaimNextPendingTrimJob(database, now)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "j1", claimed.ID)
	assert.Equal(t, StatusProcessing, claimed.Status)

	require.NoError(t, MarkTrimJobComplete(database, "j1", now, "/out/j1.mp4"))
	got, err := SelectTrimJobByID(database, "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "/out/j1.mp4", got.OutputPath)
	assert.True(t, got.Finished())
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.FinishedAt)

	claimed, err = ClaimNextPendingTrimJob(database, now)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	require.NoError(t, MarkTrimJobError(database, claimed.ID, now, "ffmpeg exploded"))

	claimed, err = ClaimNextPendingTrimJob(database, now)
	require.NoError(t, err)
	assert.Nil(t, claimed)

	jobs, err := SelectTrimJobsByAsset(database, "a1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = SelectTrimJobByID(database, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetStaleTrimJobs(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, InsertAsset(database, Asset{ID: "a1", Path: "/v.mp4"}))
	_, err := InsertTrimJob(database, "j1", "a1", 0, 5)
	require.NoError(t, err)
	_, err = ClaimNextPendingTrimJob(database, time.Now())
	require.NoError(t, err)

	n, err := ResetStaleTrimJobs(database)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	j, err := SelectTrimJobByID(database, "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, j.Status)
	assert.Nil(t, j.StartedAt)
}

func TestDeleteAssetCascades(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, InsertAsset(database, Asset{ID: "a1", Path: "/v.mp4"}))
	_, err := InsertTrimJob(database, "j1", "a1", 0, 5)
	require.NoError(t, err)

	require.NoError(t, DeleteAsset(database, "a1"))
	_, err = SelectTrimJobByID(database, "j1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeleteAsset(database, "a1"), ErrNotFound)
}
