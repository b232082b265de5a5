package api

import (
	"fmt"
	"time"
)

// Subflow embeds an independently constructed workflow as a single
// component. When reached, the embedded workflow runs to completion and
// its entire output namespace is merged into the outer namespace without
// prefixing (last write wins on collision). The embedded workflow's own
// state is the subflow's reported state.
//
// The engine does not detect cycles: a workflow that (transitively)
// embeds itself recurses forever. Keeping the embedding acyclic is the
// caller's responsibility.
type Subflow struct {
	name string
	flow *Workflow
}

var _ Component = (*Subflow)(nil)

// NewSubflow creates a Subflow around flow. It panics if name is empty or
// flow is nil.
func NewSubflow(name string, flow *Workflow) *Subflow {
	if name == "" {
		panic("conduct: subflow name must not be empty")
	}
	if flow == nil {
		panic(fmt.Sprintf("conduct: subflow %q has nil workflow", name))
	}
	return &Subflow{name: name, flow: flow}
}

func (s *Subflow) Name() string { return s.name }

func (s *Subflow) Kind() Kind { return KindSubflow }

// Flow returns the embedded workflow.
func (s *Subflow) Flow() *Workflow { return s.flow }

// State reports the embedded workflow's state.
func (s *Subflow) State() State { return s.flow.Details.State() }

// Outputs reports the outputs recorded for the embedded workflow's run.
func (s *Subflow) Outputs() map[string]any { return s.flow.Details.Outputs() }

// Err reports the embedded workflow's failure, if any.
func (s *Subflow) Err() error { return s.flow.Details.Err() }

// ExecutionTime reports the embedded workflow's execution time.
func (s *Subflow) ExecutionTime() time.Duration { return s.flow.Details.ExecutionTime() }

func (s *Subflow) AsComponent() Component { return s }
