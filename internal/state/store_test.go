package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func run(id, pipeline, outcome string, started time.Time) RunRecord {
	return RunRecord{
		ID:        id,
		Pipeline:  pipeline,
		Outcome:   outcome,
		Duration:  1500 * time.Millisecond,
		StartedAt: started,
	}
}

func TestAppendAndRecent_RoundTripsFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := RunRecord{
		ID:            "run-1",
		Pipeline:      "overview",
		Outcome:       "updated",
		FieldsUpdated: 5,
		Duration:      2 * time.Second,
		StartedAt:     time.Date(2025, 9, 21, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Append(ctx, rec))

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "run-1", got[0].ID)
	require.Equal(t, "overview", got[0].Pipeline)
	require.Equal(t, "updated", got[0].Outcome)
	require.Equal(t, 5, got[0].FieldsUpdated)
	require.Equal(t, 2*time.Second, got[0].Duration)
	require.Equal(t, rec.StartedAt.Unix(), got[0].StartedAt.Unix())
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, run(
			string(rune('a'+i)), "changelog", "updated", base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "e", got[0].ID)
	require.Equal(t, "d", got[1].ID)
	require.Equal(t, "c", got[2].ID)
}

func TestLastByPipeline_FiltersAndReturnsLatest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.Append(ctx, run("c1", "changelog", "updated", base)))
	require.NoError(t, store.Append(ctx, run("o1", "overview", "unchanged", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, run("c2", "changelog", "failed", base.Add(2*time.Minute))))

	last, err := store.LastByPipeline(ctx, "changelog")
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, "c2", last.ID)
	require.Equal(t, "failed", last.Outcome)
}

func TestLastByPipeline_NoRuns_ReturnsNil(t *testing.T) {
	store := openTestStore(t)

	last, err := store.LastByPipeline(context.Background(), "overview")
	require.NoError(t, err)
	require.Nil(t, last)
}

func TestAppend_DuplicateID_Fails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, run("dup", "overview", "updated", time.Now())))
	require.Error(t, store.Append(ctx, run("dup", "overview", "updated", time.Now())))
}
