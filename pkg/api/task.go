package api

import (
	"context"
	"fmt"
)

// TaskFunc is the execute operation of a Task. It receives the merged
// inputs (a snapshot of the workflow namespace overlaid by the task's
// static inputs, static inputs winning on collision) and returns the
// outputs to publish under "<taskName>.<key>".
//
// The engine imposes no schema on the maps beyond string keys. Task bodies
// are opaque to the engine: HTTP fetches, model calls, parsing and so on
// all live behind this one contract. A TaskFunc should honor ctx
// cancellation on any blocking work; the engine does not forcibly
// terminate it.
type TaskFunc func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// Task is a leaf unit of work.
type Task struct {
	Details

	name        string
	description string
	inputs      map[string]any
	fn          TaskFunc
}

var _ Component = (*Task)(nil)

// TaskOption configures a Task at construction.
type TaskOption func(*Task)

// WithDescription sets the task description.
func WithDescription(desc string) TaskOption {
	return func(t *Task) { t.description = desc }
}

// WithInputs sets the task's static input map. Static inputs are fixed at
// construction and win over namespace values on key collision.
func WithInputs(inputs map[string]any) TaskOption {
	return func(t *Task) { t.inputs = inputs }
}

// NewTask creates a Task. It panics if name is empty or fn is nil, in the
// same spirit as a malformed builder call: these are programming errors,
// not runtime conditions.
func NewTask(name string, fn TaskFunc, opts ...TaskOption) *Task {
	if name == "" {
		panic("conduct: task name must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("conduct: task %q has nil function", name))
	}

	t := &Task{name: name, fn: fn}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task) Name() string { return t.name }

func (t *Task) Kind() Kind { return KindTask }

// Description returns the optional task description.
func (t *Task) Description() string { return t.description }

// StaticInputs returns a copy of the task's static input map.
func (t *Task) StaticInputs() map[string]any {
	out := make(map[string]any, len(t.inputs))
	for k, v := range t.inputs {
		out[k] = v
	}
	return out
}

// Fn returns the task's execute operation.
func (t *Task) Fn() TaskFunc { return t.fn }

func (t *Task) AsComponent() Component { return t }
