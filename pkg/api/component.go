package api

import (
	"sync"
	"time"
)

// Kind identifies the variant of a Component. The set of kinds is closed:
// the engine dispatches by type over the built-in component types, and
// user-defined node types participate by converting into one of them
// (see Componenter).
type Kind string

const (
	KindTask    Kind = "task"
	KindGroup   Kind = "group"
	KindLogic   Kind = "logic"
	KindTrigger Kind = "trigger"
	KindSubflow Kind = "subflow"
)

// State represents the lifecycle state of a component or workflow.
//
// Transitions are monotonic within a run:
//
//	NOT_STARTED -> RUNNING -> COMPLETED | FAILED
//
// COMPLETED and FAILED are terminal; the only way out of a terminal state
// is Details.Reset, which is legal only between runs.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateRunning    State = "RUNNING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Terminal reports whether s is a terminal state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Component is one node in a declared execution graph: a Task, a Group,
// a Logic branch, a Trigger, or a Subflow.
//
// The read-only accessors (State, Outputs, Err, ExecutionTime) reflect the
// component's details holder and are safe to call while a workflow is
// running; non-terminal components report partial information.
type Component interface {
	Componenter

	// Name returns the component's declared name. Task output keys are
	// published into the workflow namespace as "<name>.<key>".
	Name() string

	// Kind returns the component variant.
	Kind() Kind

	// State returns the component's current lifecycle state.
	State() State

	// Outputs returns a copy of the outputs produced by this component.
	// It is empty until the component reaches StateCompleted.
	Outputs() map[string]any

	// Err returns the failure recorded for this component. It is non-nil
	// if and only if State() == StateFailed.
	Err() error

	// ExecutionTime returns how long the component ran. It is zero until
	// the component reaches a terminal state.
	ExecutionTime() time.Duration
}

// Componenter is the "convert to Component" capability. Any type that can
// express itself as one of the built-in components may be passed to
// Builder.Add, which makes it possible to mix user-defined node kinds with
// built-in ones without an inheritance hierarchy.
//
// The built-in components implement Componenter by returning themselves.
type Componenter interface {
	AsComponent() Component
}

// Details is the mutable record attached to every component: lifecycle
// state, produced outputs, recorded error, and execution time. It is the
// only state that changes on a component after construction.
//
// The transition methods (Begin, Succeed, Fail, Skip) are driven by the
// execution engine; custom component runners may use them as well. They
// enforce monotonicity: once a terminal state is reached, further
// transitions are ignored until Reset.
type Details struct {
	mu      sync.Mutex
	state   State
	outputs map[string]any
	err     error
	started time.Time
	elapsed time.Duration
}

// State returns the current state.
func (d *Details) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == "" {
		return StateNotStarted
	}
	return d.state
}

// Outputs returns a copy of the recorded outputs.
func (d *Details) Outputs() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]any, len(d.outputs))
	for k, v := range d.outputs {
		out[k] = v
	}
	return out
}

// Err returns the recorded failure, if any.
func (d *Details) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// ExecutionTime returns the recorded execution time.
func (d *Details) ExecutionTime() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}

// Begin transitions NOT_STARTED -> RUNNING and records the start time.
// It is a no-op if the component is already running or terminal.
func (d *Details) Begin() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != "" && d.state != StateNotStarted {
		return
	}
	d.state = StateRunning
	d.started = time.Now()
}

// Succeed transitions RUNNING -> COMPLETED, records outputs and elapsed
// time. Ignored if the component is already terminal.
func (d *Details) Succeed(outputs map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Terminal() {
		return
	}
	d.state = StateCompleted
	d.outputs = outputs
	d.err = nil
	d.elapsed = d.sinceStart()
}

// Fail transitions RUNNING -> FAILED, records the error and elapsed time.
// Ignored if the component is already terminal or err is nil.
func (d *Details) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil || d.state.Terminal() {
		return
	}
	d.state = StateFailed
	d.err = err
	d.elapsed = d.sinceStart()
}

// Skip transitions straight to COMPLETED with empty outputs and zero
// execution time. Used for triggers whose predicate is false.
func (d *Details) Skip() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Terminal() {
		return
	}
	d.state = StateCompleted
	d.outputs = nil
	d.err = nil
}

// Reset returns the details to their initial state. The engine calls this
// on every component when a workflow is re-started from the top; it must
// not be called on a component that is currently running.
func (d *Details) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = StateNotStarted
	d.outputs = nil
	d.err = nil
	d.started = time.Time{}
	d.elapsed = 0
}

func (d *Details) sinceStart() time.Duration {
	if d.started.IsZero() {
		return 0
	}
	return time.Since(d.started)
}
