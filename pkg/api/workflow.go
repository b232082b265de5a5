package api

import "sync"

// FailurePolicy controls how a workflow reacts to a failing component.
// It is a single per-workflow setting, not configurable per node, to keep
// branch semantics predictable.
type FailurePolicy string

const (
	// HaltOnFirstFailure stops remaining sequential siblings as soon as
	// any component fails and marks the workflow failed. This is the
	// default. Parallel groups still join all in-flight children before
	// the failure propagates.
	HaltOnFirstFailure FailurePolicy = "halt"

	// ContinueOnFailure records failures but keeps executing subsequent
	// siblings. The workflow still finishes in StateFailed if any
	// component failed.
	ContinueOnFailure FailurePolicy = "continue"
)

// Workflow is the top-level execution unit: a named, ordered sequence of
// components fixed at construction, plus the mutable output namespace and
// run state. Build one with the conduct.New builder and run it with
// conduct.Start; re-starting re-runs from the top, clearing prior outputs.
//
// A workflow must not be started while a previous start is still running.
type Workflow struct {
	Details

	name        string
	description string
	components  []Component
	policy      FailurePolicy
	observer    Observer
	ns          *Namespace

	mu    sync.Mutex
	runID string
}

// WorkflowConfig carries the construction-time configuration of a
// workflow. It exists so the builder in the root package can assemble a
// workflow without reaching into unexported fields.
type WorkflowConfig struct {
	Name        string
	Description string
	Components  []Component
	Policy      FailurePolicy
	Observer    Observer
}

// NewWorkflow constructs a workflow from cfg. It panics if the name is
// empty. A workflow with zero components is legal and completes
// immediately with an empty namespace.
func NewWorkflow(cfg WorkflowConfig) *Workflow {
	if cfg.Name == "" {
		panic("conduct: workflow name must not be empty")
	}

	policy := cfg.Policy
	if policy == "" {
		policy = HaltOnFirstFailure
	}
	obs := cfg.Observer
	if obs == nil {
		obs = NoopObserver{}
	}

	return &Workflow{
		name:        cfg.Name,
		description: cfg.Description,
		components:  cfg.Components,
		policy:      policy,
		observer:    obs,
		ns:          NewNamespace(),
	}
}

func (w *Workflow) Name() string { return w.name }

// Description returns the workflow description.
func (w *Workflow) Description() string { return w.description }

// Components returns the workflow's top-level components in declaration
// order.
func (w *Workflow) Components() []Component { return w.components }

// Policy returns the workflow's failure policy.
func (w *Workflow) Policy() FailurePolicy { return w.policy }

// Observer returns the workflow's observer; never nil.
func (w *Workflow) Observer() Observer { return w.observer }

// Outputs returns the workflow's output namespace.
func (w *Workflow) Outputs() *Namespace { return w.ns }

// RunID returns the identifier of the current (or most recent) run, or ""
// if the workflow has never been started.
func (w *Workflow) RunID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runID
}

// SetRunID records the identifier for a new run. Called by the engine at
// the start of each run.
func (w *Workflow) SetRunID(id string) {
	w.mu.Lock()
	w.runID = id
	w.mu.Unlock()
}

// Report builds an immutable snapshot of the workflow's execution state:
// one entry per component reached, with name, kind, state, execution
// time, output keys, and error. It is a pure read: safe to call multiple
// times (identical results on a terminal workflow) and safe to call on a
// still-running workflow, where not-yet-terminal components report
// partial information.
func (w *Workflow) Report() Report {
	return buildReport(w)
}

// AsComponent wraps the workflow in a Subflow component named after the
// workflow, so a *Workflow can be passed anywhere a component is
// declared.
func (w *Workflow) AsComponent() Component {
	return NewSubflow(w.name, w)
}
