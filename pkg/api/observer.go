package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the engine at workflow and component
// transition points. It is the engine's only logging/metrics boundary:
// supplying one never changes execution behavior, and its absence
// (NoopObserver) costs nothing.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay workflow execution.
type Observer interface {
	// OnWorkflowStart is called once per run, before the first component
	// executes.
	OnWorkflowStart(ctx context.Context, wf *Workflow)

	// OnWorkflowCompleted is called when a run finishes in StateCompleted.
	OnWorkflowCompleted(ctx context.Context, wf *Workflow)

	// OnWorkflowFailed is called when a run finishes in StateFailed.
	OnWorkflowFailed(ctx context.Context, wf *Workflow, err error)

	// OnComponentStart is called before a component executes.
	OnComponentStart(ctx context.Context, wf *Workflow, c Component)

	// OnComponentCompleted is called after a component reaches a terminal
	// state, for both successes and failures (err != nil).
	OnComponentCompleted(ctx context.Context, wf *Workflow, c Component, err error, d time.Duration)
}

// NoopObserver is an Observer that does nothing. It is the default when
// no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnWorkflowStart(ctx context.Context, wf *Workflow)               {}
func (NoopObserver) OnWorkflowCompleted(ctx context.Context, wf *Workflow)           {}
func (NoopObserver) OnWorkflowFailed(ctx context.Context, wf *Workflow, err error)   {}
func (NoopObserver) OnComponentStart(ctx context.Context, wf *Workflow, c Component) {}
func (NoopObserver) OnComponentCompleted(ctx context.Context, wf *Workflow, c Component, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWorkflowStart(ctx context.Context, wf *Workflow) {
	for _, o := range c.observers {
		o.OnWorkflowStart(ctx, wf)
	}
}

func (c *CompositeObserver) OnWorkflowCompleted(ctx context.Context, wf *Workflow) {
	for _, o := range c.observers {
		o.OnWorkflowCompleted(ctx, wf)
	}
}

func (c *CompositeObserver) OnWorkflowFailed(ctx context.Context, wf *Workflow, err error) {
	for _, o := range c.observers {
		o.OnWorkflowFailed(ctx, wf, err)
	}
}

func (c *CompositeObserver) OnComponentStart(ctx context.Context, wf *Workflow, comp Component) {
	for _, o := range c.observers {
		o.OnComponentStart(ctx, wf, comp)
	}
}

func (c *CompositeObserver) OnComponentCompleted(ctx context.Context, wf *Workflow, comp Component, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnComponentCompleted(ctx, wf, comp, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog. The component
// kind is logged as the "category" attribute.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs workflow / component
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnWorkflowStart(ctx context.Context, wf *Workflow) {
	o.Logger.InfoContext(ctx, "workflow_start",
		slog.String("workflow", wf.Name()),
		slog.String("run_id", wf.RunID()),
	)
}

func (o *LoggingObserver) OnWorkflowCompleted(ctx context.Context, wf *Workflow) {
	o.Logger.InfoContext(ctx, "workflow_completed",
		slog.String("workflow", wf.Name()),
		slog.String("run_id", wf.RunID()),
		slog.Duration("duration", wf.ExecutionTime()),
	)
}

func (o *LoggingObserver) OnWorkflowFailed(ctx context.Context, wf *Workflow, err error) {
	o.Logger.ErrorContext(ctx, "workflow_failed",
		slog.String("workflow", wf.Name()),
		slog.String("run_id", wf.RunID()),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnComponentStart(ctx context.Context, wf *Workflow, c Component) {
	o.Logger.DebugContext(ctx, "component_start",
		slog.String("workflow", wf.Name()),
		slog.String("run_id", wf.RunID()),
		slog.String("component", c.Name()),
		slog.String("category", string(c.Kind())),
	)
}

func (o *LoggingObserver) OnComponentCompleted(ctx context.Context, wf *Workflow, c Component, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "component_completed",
		slog.String("workflow", wf.Name()),
		slog.String("run_id", wf.RunID()),
		slog.String("component", c.Name()),
		slog.String("category", string(c.Kind())),
		slog.String("state", string(c.State())),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate component
// durations. It implements Observer and can be combined with
// LoggingObserver via NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	workflowsStarted   atomic.Int64
	workflowsCompleted atomic.Int64
	workflowsFailed    atomic.Int64
	componentsRun      atomic.Int64
	totalDuration      atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	WorkflowsStarted   int64
	WorkflowsCompleted int64
	WorkflowsFailed    int64
	RunningWorkflows   int64

	ComponentsRun        int64
	AvgComponentDuration time.Duration
}

func (m *BasicMetrics) OnWorkflowStart(ctx context.Context, wf *Workflow) {
	m.workflowsStarted.Add(1)
}

func (m *BasicMetrics) OnWorkflowCompleted(ctx context.Context, wf *Workflow) {
	m.workflowsCompleted.Add(1)
}

func (m *BasicMetrics) OnWorkflowFailed(ctx context.Context, wf *Workflow, err error) {
	m.workflowsFailed.Add(1)
}

func (m *BasicMetrics) OnComponentCompleted(ctx context.Context, wf *Workflow, c Component, err error, d time.Duration) {
	// Only successful components count toward the average duration.
	if err == nil {
		m.componentsRun.Add(1)
		m.totalDuration.Add(d.Nanoseconds())
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.workflowsStarted.Load()
	completed := m.workflowsCompleted.Load()
	failed := m.workflowsFailed.Load()
	comps := m.componentsRun.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if comps > 0 {
		avg = time.Duration(totalNs / comps)
	}

	return BasicMetricsSnapshot{
		WorkflowsStarted:     started,
		WorkflowsCompleted:   completed,
		WorkflowsFailed:      failed,
		RunningWorkflows:     started - completed - failed,
		ComponentsRun:        comps,
		AvgComponentDuration: avg,
	}
}
