package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/conduct/pkg/api"
)

// testRecord builds a representative run record. Output values are
// strings so they survive a JSON round-trip unchanged.
func testRecord(workflow string, state api.State, finished time.Time) api.RunRecord {
	rec := api.RunRecord{
		RunID:      uuid.NewString(),
		Workflow:   workflow,
		State:      state,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
		Outputs:    map[string]any{"fetch.body": "payload", "parse.title": "hello"},
		Report: api.Report{
			Workflow:   workflow,
			State:      state,
			Duration:   time.Second,
			OutputKeys: []string{"fetch.body", "parse.title"},
			Entries: []api.ReportEntry{
				{Name: "fetch", Kind: api.KindTask, State: api.StateCompleted, OutputKeys: []string{"body"}},
			},
		},
	}
	if state == api.StateFailed {
		rec.Error = "task \"fetch\" failed"
		rec.Report.Error = rec.Error
	}
	return rec
}

// runArchiveConformance exercises the RunArchive contract against a
// fresh store. Every backend runs the same suite.
func runArchiveConformance(t *testing.T, newArchive func(t *testing.T) api.RunArchive) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		store := newArchive(t)
		rec := testRecord("crawl", api.StateCompleted, time.Now())

		require.NoError(t, store.SaveRun(ctx, rec))

		got, err := store.GetRun(ctx, rec.RunID)
		require.NoError(t, err)
		require.Equal(t, rec.RunID, got.RunID)
		require.Equal(t, rec.Workflow, got.Workflow)
		require.Equal(t, rec.State, got.State)
		require.Equal(t, rec.Error, got.Error)
		require.Equal(t, rec.Outputs, got.Outputs)
		require.Equal(t, rec.Report.OutputKeys, got.Report.OutputKeys)
		require.Len(t, got.Report.Entries, 1)
		require.True(t, got.StartedAt.Equal(rec.StartedAt), "started_at mismatch")
		require.True(t, got.FinishedAt.Equal(rec.FinishedAt), "finished_at mismatch")
	})

	t.Run("get unknown run", func(t *testing.T) {
		store := newArchive(t)

		_, err := store.GetRun(ctx, "no-such-run")
		require.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("re-save replaces", func(t *testing.T) {
		store := newArchive(t)
		rec := testRecord("crawl", api.StateCompleted, time.Now())
		require.NoError(t, store.SaveRun(ctx, rec))

		rec.State = api.StateFailed
		rec.Error = "late failure"
		require.NoError(t, store.SaveRun(ctx, rec))

		got, err := store.GetRun(ctx, rec.RunID)
		require.NoError(t, err)
		require.Equal(t, api.StateFailed, got.State)
		require.Equal(t, "late failure", got.Error)

		runs, err := store.ListRuns(ctx, api.RunFilter{})
		require.NoError(t, err)
		require.Len(t, runs, 1)
	})

	t.Run("list filters and orders", func(t *testing.T) {
		store := newArchive(t)
		base := time.Now().Truncate(time.Millisecond)

		oldest := testRecord("crawl", api.StateCompleted, base.Add(-2*time.Hour))
		middle := testRecord("crawl", api.StateFailed, base.Add(-time.Hour))
		newest := testRecord("ingest", api.StateCompleted, base)
		for _, rec := range []api.RunRecord{oldest, middle, newest} {
			require.NoError(t, store.SaveRun(ctx, rec))
		}

		all, err := store.ListRuns(ctx, api.RunFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, newest.RunID, all[0].RunID, "most recent first")
		require.Equal(t, oldest.RunID, all[2].RunID)

		crawls, err := store.ListRuns(ctx, api.RunFilter{Workflow: "crawl"})
		require.NoError(t, err)
		require.Len(t, crawls, 2)

		failed, err := store.ListRuns(ctx, api.RunFilter{State: api.StateFailed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		require.Equal(t, middle.RunID, failed[0].RunID)

		both, err := store.ListRuns(ctx, api.RunFilter{Workflow: "crawl", State: api.StateCompleted})
		require.NoError(t, err)
		require.Len(t, both, 1)
		require.Equal(t, oldest.RunID, both[0].RunID)

		none, err := store.ListRuns(ctx, api.RunFilter{Workflow: "absent"})
		require.NoError(t, err)
		require.Empty(t, none)
	})
}
