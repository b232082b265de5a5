package conduct

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/conduct/internal/engine"
	"github.com/petrijr/conduct/internal/history"
	"github.com/petrijr/conduct/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Component     = api.Component
	Componenter   = api.Componenter
	Details       = api.Details
	Kind          = api.Kind
	State         = api.State
	Mode          = api.Mode
	FailurePolicy = api.FailurePolicy

	Task          = api.Task
	TaskFunc      = api.TaskFunc
	TaskOption    = api.TaskOption
	Group         = api.Group
	Logic         = api.Logic
	DecisionFunc  = api.DecisionFunc
	Trigger       = api.Trigger
	PredicateFunc = api.PredicateFunc
	Subflow       = api.Subflow
	Workflow      = api.Workflow

	Namespace   = api.Namespace
	Report      = api.Report
	ReportEntry = api.ReportEntry

	Observer             = api.Observer
	NoopObserver         = api.NoopObserver
	CompositeObserver    = api.CompositeObserver
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot

	TaskError  = api.TaskError
	GroupError = api.GroupError

	RunRecord         = api.RunRecord
	RunFilter         = api.RunFilter
	RunArchive        = api.RunArchive
	ArchivingObserver = api.ArchivingObserver
)

// Re-export component constructors and common helpers.

var (
	NewTask    = api.NewTask
	NewGroup   = api.NewGroup
	NewLogic   = api.NewLogic
	NewTrigger = api.NewTrigger
	NewSubflow = api.NewSubflow

	WithDescription = api.WithDescription
	WithInputs      = api.WithInputs

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	NewArchivingObserver = api.NewArchivingObserver
)

// Re-export enum values for convenience.

const (
	KindTask    = api.KindTask
	KindGroup   = api.KindGroup
	KindLogic   = api.KindLogic
	KindTrigger = api.KindTrigger
	KindSubflow = api.KindSubflow

	StateNotStarted = api.StateNotStarted
	StateRunning    = api.StateRunning
	StateCompleted  = api.StateCompleted
	StateFailed     = api.StateFailed

	ModeSequential = api.ModeSequential
	ModeParallel   = api.ModeParallel

	HaltOnFirstFailure = api.HaltOnFirstFailure
	ContinueOnFailure  = api.ContinueOnFailure
)

// ErrRunNotFound is returned by archives when a run record is missing.
var ErrRunNotFound = history.ErrRunNotFound

// Start executes wf from the top to a terminal state, blocking until it
// finishes. Prior outputs and component states are cleared first, so
// calling Start again re-runs the workflow from scratch.
//
// Cancellation is cooperative: cancelling ctx stops the engine from
// launching further components and is passed to in-flight task bodies,
// but nothing is forcibly terminated; parallel groups still join before
// the cancellation surfaces.
func Start(ctx context.Context, wf *Workflow) error {
	return engine.Run(ctx, wf)
}

// Archive constructors
// These wrap the internal/history package so external callers never need
// to import internal packages.

// NewMemoryArchive returns a RunArchive held entirely in memory.
func NewMemoryArchive() RunArchive {
	return history.NewMemoryStore()
}

// NewSQLiteArchive returns a RunArchive that persists run records in a
// SQLite database. The schema is created if missing.
func NewSQLiteArchive(db *sql.DB) (RunArchive, error) {
	return history.NewSQLiteStore(db)
}

// NewPostgresArchive returns a RunArchive that persists run records in
// PostgreSQL. The schema is created if missing.
func NewPostgresArchive(db *sql.DB) (RunArchive, error) {
	return history.NewPostgresStore(db)
}

// NewRedisArchive returns a RunArchive that persists run records in
// Redis under the given key prefix ("conduct:" if empty).
func NewRedisArchive(client *redis.Client, prefix string) RunArchive {
	return history.NewRedisStore(client, prefix)
}
