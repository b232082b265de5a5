package api

import (
	"context"
	"sync"
	"time"
)

// RunRecord is the archived result of one workflow run: identity, final
// state, timings, the rendered report, and the flattened output
// namespace. Records are written after a run reaches a terminal state;
// archiving is diagnostics, not checkpointing: nothing is ever replayed
// from a record.
type RunRecord struct {
	RunID      string         `json:"run_id"`
	Workflow   string         `json:"workflow"`
	State      State          `json:"state"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Error      string         `json:"error,omitempty"`
	Report     Report         `json:"report"`
	Outputs    map[string]any `json:"outputs,omitempty"`
}

// RunFilter selects records from an archive. Zero values mean "no filter"
// for that field.
type RunFilter struct {
	Workflow string
	State    State
}

// RunArchive stores finished run records. Implementations live in
// internal/history and are constructed through the root package
// (NewMemoryArchive, NewSQLiteArchive, NewPostgresArchive,
// NewRedisArchive).
type RunArchive interface {
	// SaveRun appends a record. Saving the same RunID again replaces the
	// prior record (a workflow re-start reuses the workflow but gets a
	// fresh RunID, so replacement only happens on explicit re-save).
	SaveRun(ctx context.Context, rec RunRecord) error

	// GetRun returns the record for a run ID.
	GetRun(ctx context.Context, runID string) (RunRecord, error)

	// ListRuns returns records matching the filter, most recent first.
	ListRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error)
}

// ArchivingObserver records every finished run into a RunArchive. Combine
// it with other observers via NewCompositeObserver.
type ArchivingObserver struct {
	NoopObserver

	archive RunArchive

	mu      sync.Mutex
	started map[string]time.Time // run ID -> start wall time
	saveErr error
}

// NewArchivingObserver creates an observer that writes a RunRecord to
// archive when a workflow run completes or fails. Archive write errors do
// not affect workflow execution; the last one is retained and available
// via SaveErr.
func NewArchivingObserver(archive RunArchive) *ArchivingObserver {
	return &ArchivingObserver{
		archive: archive,
		started: make(map[string]time.Time),
	}
}

func (a *ArchivingObserver) OnWorkflowStart(ctx context.Context, wf *Workflow) {
	a.mu.Lock()
	a.started[wf.RunID()] = time.Now()
	a.mu.Unlock()
}

func (a *ArchivingObserver) OnWorkflowCompleted(ctx context.Context, wf *Workflow) {
	a.record(ctx, wf, nil)
}

func (a *ArchivingObserver) OnWorkflowFailed(ctx context.Context, wf *Workflow, err error) {
	a.record(ctx, wf, err)
}

// SaveErr returns the most recent archive write error, or nil.
func (a *ArchivingObserver) SaveErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveErr
}

func (a *ArchivingObserver) record(ctx context.Context, wf *Workflow, err error) {
	runID := wf.RunID()

	a.mu.Lock()
	startedAt := a.started[runID]
	delete(a.started, runID)
	a.mu.Unlock()

	rec := RunRecord{
		RunID:      runID,
		Workflow:   wf.Name(),
		State:      wf.Details.State(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Report:     wf.Report(),
		Outputs:    wf.Outputs().Snapshot(),
	}
	if err != nil {
		rec.Error = err.Error()
	}

	if saveErr := a.archive.SaveRun(ctx, rec); saveErr != nil {
		a.mu.Lock()
		a.saveErr = saveErr
		a.mu.Unlock()
	}
}
