package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

func testRun(suite, job, id string) *types.RunRecord {
	return &types.RunRecord{
		ID:          id,
		Suite:       suite,
		Job:         job,
		Script:      "news",
		StartedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2025, 6, 1, 12, 0, 2, 0, time.UTC),
		ResultCount: 3,
	}
}

func TestRunStoreSaveAndGet(t *testing.T) {
	store := NewRunStore(t.TempDir())
	ctx := context.Background()

	rec := testRun("news", "daily", "01JX0001")
	require.NoError(t, store.SaveRun(ctx, rec))

	got, err := store.GetRun(ctx, "news", "daily", "01JX0001")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRunStoreSaveValidates(t *testing.T) {
	store := NewRunStore(t.TempDir())

	err := store.SaveRun(context.Background(), &types.RunRecord{ID: "01JX0001"})
	require.Error(t, err)
}

func TestRunStoreGetMissing(t *testing.T) {
	store := NewRunStore(t.TempDir())

	_, err := store.GetRun(context.Background(), "news", "daily", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunStoreListRunsChronological(t *testing.T) {
	store := NewRunStore(t.TempDir())
	ctx := context.Background()

	// ULIDs sort lexically in creation order.
	for _, id := range []string{"01JX0003", "01JX0001", "01JX0002"} {
		require.NoError(t, store.SaveRun(ctx, testRun("news", "daily", id)))
	}

	ids, err := store.ListRuns(ctx, "news", "daily")
	require.NoError(t, err)
	assert.Equal(t, []string{"01JX0001", "01JX0002", "01JX0003"}, ids)
}

func TestRunStoreRecentRuns(t *testing.T) {
	store := NewRunStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, testRun("news", "daily", "01JX0001")))
	require.NoError(t, store.SaveRun(ctx, testRun("news", "hourly", "01JX0003")))
	require.NoError(t, store.SaveRun(ctx, testRun("weather", "daily", "01JX0002")))

	records, err := store.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "01JX0003", records[0].ID)
	assert.Equal(t, "01JX0002", records[1].ID)
	assert.Equal(t, "01JX0001", records[2].ID)

	records, err = store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "01JX0003", records[0].ID)
}

func TestRunStoreRecentRunsEmpty(t *testing.T) {
	store := NewRunStore(t.TempDir())

	records, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRunStoreResultsSnapshot(t *testing.T) {
	store := NewRunStore(t.TempDir())
	ctx := context.Background()

	_, err := store.LatestResults(ctx, "news", "daily")
	assert.ErrorIs(t, err, ErrNotFound)

	snap := &types.ResultsSnapshot{
		RunID:     "01JX0001",
		Results:   []string{"headline one", "headline two"},
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 2, 0, time.UTC),
	}
	require.NoError(t, store.SaveResults(ctx, "news", "daily", snap))

	got, err := store.LatestResults(ctx, "news", "daily")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// Overwrites replace the previous snapshot.
	snap2 := &types.ResultsSnapshot{RunID: "01JX0002", Results: []string{"headline three"}}
	require.NoError(t, store.SaveResults(ctx, "news", "daily", snap2))

	got, err = store.LatestResults(ctx, "news", "daily")
	require.NoError(t, err)
	assert.Equal(t, "01JX0002", got.RunID)
}
