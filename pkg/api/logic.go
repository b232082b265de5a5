package api

import (
	"context"
	"fmt"
)

// DecisionFunc is the decision operation of a Logic node. It is evaluated
// lazily, at the moment execution reaches the node, against a snapshot of
// the workflow namespace. The components it returns are spliced into the
// execution stream in place of the Logic node, as if they had been
// declared there. Returning an empty slice means "do nothing".
type DecisionFunc func(ctx context.Context, outputs map[string]any) ([]Component, error)

// PredicateFunc is the condition of a Trigger, evaluated against a
// snapshot of the workflow namespace.
type PredicateFunc func(outputs map[string]any) bool

// Logic is a conditional-branching node: its decision operation inspects
// namespace values at runtime and chooses which sub-graph to run.
//
// A Logic node completes once its spliced components have executed; it
// fails if the decision operation itself returns an error. Spliced
// components fail independently, exactly as if they had been declared in
// the Logic node's place.
type Logic struct {
	Details

	name        string
	description string
	decide      DecisionFunc
}

var _ Component = (*Logic)(nil)

// NewLogic creates a Logic node. It panics if name is empty or decide is nil.
func NewLogic(name string, decide DecisionFunc, opts ...LogicOption) *Logic {
	if name == "" {
		panic("conduct: logic name must not be empty")
	}
	if decide == nil {
		panic(fmt.Sprintf("conduct: logic %q has nil decision function", name))
	}

	l := &Logic{name: name, decide: decide}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogicOption configures a Logic node at construction.
type LogicOption func(*Logic)

// WithLogicDescription sets the logic description.
func WithLogicDescription(desc string) LogicOption {
	return func(l *Logic) { l.description = desc }
}

func (l *Logic) Name() string { return l.name }

func (l *Logic) Kind() Kind { return KindLogic }

// Description returns the optional description.
func (l *Logic) Description() string { return l.description }

// Decide returns the decision operation.
func (l *Logic) Decide() DecisionFunc { return l.decide }

func (l *Logic) AsComponent() Component { return l }

// Trigger is a restricted Logic variant for side-effect and monitoring
// nodes. Its predicate is evaluated at most once per run against the
// namespace snapshot; when true, the target component executes through
// the regular engine path, but its outputs stay local to the target's
// details and are not merged into the primary namespace. When false, the
// trigger is skipped and completes with empty outputs.
type Trigger struct {
	Details

	name      string
	predicate PredicateFunc
	target    Component
}

var _ Component = (*Trigger)(nil)

// NewTrigger creates a Trigger. It panics if name is empty, predicate is
// nil, or target is nil.
func NewTrigger(name string, predicate PredicateFunc, target Componenter) *Trigger {
	if name == "" {
		panic("conduct: trigger name must not be empty")
	}
	if predicate == nil {
		panic(fmt.Sprintf("conduct: trigger %q has nil predicate", name))
	}
	if target == nil {
		panic(fmt.Sprintf("conduct: trigger %q has nil target", name))
	}

	resolved := target.AsComponent()
	if resolved == nil {
		panic(fmt.Sprintf("conduct: trigger %q target resolved to nil", name))
	}
	return &Trigger{name: name, predicate: predicate, target: resolved}
}

func (t *Trigger) Name() string { return t.name }

func (t *Trigger) Kind() Kind { return KindTrigger }

// Predicate returns the trigger condition.
func (t *Trigger) Predicate() PredicateFunc { return t.predicate }

// Target returns the component executed when the predicate holds.
func (t *Trigger) Target() Component { return t.target }

func (t *Trigger) AsComponent() Component { return t }
