package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/rimdefs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(start time.Time) *models.BuildResult {
	return &models.BuildResult{
		Version: "1.5.4062",
		Layers: []models.LayerResult{
			{
				Layer:      models.LayerOfficial,
				ModRoots:   []string{"/d/Core", "/d/Royalty"},
				Documents:  40,
				Items:      120,
				OutputPath: "/out/items.official.json",
				Duration:   1500 * time.Millisecond,
			},
			{
				Layer:     models.LayerDev,
				ModRoots:  []string{"/dev/Mine"},
				Documents: 3,
				Items:     2,
				Skipped: []models.SkippedDocument{
					{Path: "/dev/Mine/Defs/Bad.xml", Message: "parse error: unexpected EOF"},
				},
				OutputPath: "/out/items.dev.json",
			},
		},
		DefTypes:   12,
		MetaPath:   "/out/rim_meta.json",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}
}

func TestNewStoreAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	versions, err := store.GetAppliedVersions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, len(migrations))
	for i, v := range versions {
		assert.Equal(t, migrations[i].Version, v.Version)
	}

	latest, err := store.GetLatestVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, latest)
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.ApplyMigrations(ctx))
	require.NoError(t, store.ApplyMigrations(ctx))

	versions, err := store.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, len(migrations))
}

func TestReopenFileStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	assert.Equal(t, dbPath, store.Path())
	run, err := store.StartRun(ctx, "1.5", "/out", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	detail, err := reopened.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, detail.Run.Status)
	assert.True(t, detail.Run.FinishedAt.IsZero())
}

func TestStartAndFinishRun(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run, err := store.StartRun(ctx, "1.5.4062", "/out", start)
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, models.StatusRunning, run.Status)

	require.NoError(t, store.FinishRun(ctx, run.ID, sampleResult(start), nil))

	detail, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)

	got := detail.Run
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, models.StatusSucceeded, got.Status)
	assert.Empty(t, got.ErrorMessage)
	assert.Equal(t, "1.5.4062", got.Version)
	assert.Equal(t, "/out", got.OutDir)
	assert.Equal(t, 122, got.Items)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 12, got.DefTypes)
	assert.True(t, got.StartedAt.Equal(start), "started_at = %v", got.StartedAt)
	assert.Equal(t, 2*time.Second, got.Duration())

	require.Len(t, detail.Layers, 2)
	assert.Equal(t, LayerRecord{
		Layer:      models.LayerOfficial,
		ModRoots:   2,
		Documents:  40,
		Items:      120,
		OutputPath: "/out/items.official.json",
		Duration:   1500 * time.Millisecond,
	}, detail.Layers[0])
	assert.Equal(t, models.LayerDev, detail.Layers[1].Layer)
	assert.Equal(t, 1, detail.Layers[1].Skipped)

	assert.Equal(t, []SkippedRecord{
		{Layer: models.LayerDev, Path: "/dev/Mine/Defs/Bad.xml", Message: "parse error: unexpected EOF"},
	}, detail.Skipped)
}

func TestFinishRunFailed(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.StartRun(ctx, "unknown", "/out", time.Now())
	require.NoError(t, err)

	partial := &models.BuildResult{Layers: []models.LayerResult{{Layer: models.LayerOfficial, Items: 5}}}
	require.NoError(t, store.FinishRun(ctx, run.ID, partial, errors.New("output failure: disk full")))

	detail, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, detail.Run.Status)
	assert.Equal(t, "output failure: disk full", detail.Run.ErrorMessage)
	assert.Equal(t, 5, detail.Run.Items)
	assert.False(t, detail.Run.FinishedAt.IsZero())
	assert.Len(t, detail.Layers, 1)
	assert.Empty(t, detail.Skipped)
}

func TestFinishRunNilResult(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.StartRun(ctx, "x", "/out", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(ctx, run.ID, nil, errors.New("locked")))

	detail, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, detail.Run.Status)
	assert.Empty(t, detail.Layers)
}

func TestFinishRunUnknownID(t *testing.T) {
	store := setupTestStore(t)
	err := store.FinishRun(context.Background(), "missing", &models.BuildResult{}, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.StartRun(ctx, "v", "/out", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
}

func TestListRunsEmpty(t *testing.T) {
	runs, err := setupTestStore(t).ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetRunByPrefix(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.StartRun(ctx, "v", "/out", time.Now())
	require.NoError(t, err)

	detail, err := store.GetRun(ctx, run.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, run.ID, detail.Run.ID)

	_, err = store.GetRun(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.GetRun(ctx, "  ")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestGetRunAmbiguousPrefix(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, id := range []string{"abc-1", "abc-2"} {
		_, err := store.db.ExecContext(ctx,
			`INSERT INTO runs (id, started_at, version, out_dir, status) VALUES (?, ?, 'v', '/o', 'running')`,
			id, time.Now())
		require.NoError(t, err)
	}

	_, err := store.GetRun(ctx, "abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	detail, err := store.GetRun(ctx, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", detail.Run.ID)
}
