package run

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zulip-archive/zulip-archive/internal/db"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenDSN(":memory:")
	require.NoError(t, err, "failed to create test database")

	// every pooled connection would get its own empty in-memory database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestNilDB(t *testing.T) {
	_, err := Start(nil, models.KindBuild, "", "dev", t0)
	require.ErrorIs(t, err, ErrDBNil)

	require.ErrorIs(t, Finish(nil, &models.Run{ID: "x"}, Counts{}, nil, t0), ErrDBNil)

	_, err = Latest(nil, "")
	require.ErrorIs(t, err, ErrDBNil)

	_, err = List(nil, 0)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestStartFinish(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := Start(gdb, "", "", "dev", t0)
	require.ErrorIs(t, err, ErrRunKindEmpty)

	run, err := Start(gdb, models.KindPopulate, "full", "dev", t0)
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.False(t, run.Done())

	require.NoError(t, Finish(gdb, run, Counts{Streams: 2, Messages: 40}, nil, t0.Add(time.Minute)))
	require.ErrorIs(t, Finish(gdb, run, Counts{}, nil, t0), ErrRunFinished)

	runs, err := List(gdb, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, models.KindPopulate, got.Kind)
	assert.Equal(t, "full", got.Mode)
	assert.Equal(t, 2, got.Streams)
	assert.Equal(t, 40, got.Messages)
	assert.True(t, got.Done())
	assert.False(t, got.Failed())
	assert.Equal(t, time.Minute, got.Duration())

	require.ErrorIs(t, Finish(gdb, &models.Run{ID: "missing"}, Counts{}, nil, t0), ErrRunNotFound)
}

func TestLatestAndList(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := Latest(gdb, models.KindPopulate)
	require.ErrorIs(t, err, ErrRunNotFound)

	first, err := Start(gdb, models.KindPopulate, "full", "dev", t0)
	require.NoError(t, err)
	require.NoError(t, Finish(gdb, first, Counts{Messages: 1}, nil, t0.Add(time.Second)))

	failed, err := Start(gdb, models.KindPopulate, "incremental", "dev", t0.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, Finish(gdb, failed, Counts{}, assert.AnError, t0.Add(time.Hour+time.Second)))

	build, err := Start(gdb, models.KindBuild, "", "dev", t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.NoError(t, Finish(gdb, build, Counts{Pages: 3}, nil, t0.Add(2*time.Hour+time.Second)))

	running, err := Start(gdb, models.KindPopulate, "incremental", "dev", t0.Add(3*time.Hour))
	require.NoError(t, err)

	latest, err := Latest(gdb, models.KindPopulate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)

	latest, err = Latest(gdb, "")
	require.NoError(t, err)
	assert.Equal(t, build.ID, latest.ID)

	runs, err := List(gdb, 0)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, running.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[3].ID)
	assert.True(t, runs[2].Failed())
	assert.Equal(t, assert.AnError.Error(), runs[2].Error)

	runs, err = List(gdb, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
