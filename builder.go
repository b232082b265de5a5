package conduct

import (
	"github.com/petrijr/conduct/pkg/api"
)

// Builder provides the declarative API for defining workflows:
//
//	wf := conduct.New("daily-digest").
//	    Describe("fetch, analyze, publish").
//	    Task("fetch", fetchFeed).
//	    Parallel("analyze",
//	        conduct.NewTask("sentiment", scoreSentiment),
//	        conduct.NewTask("keywords", extractKeywords),
//	    ).
//	    Logic("route", pickPublisher).
//	    Build()
//
//	if err := conduct.Start(ctx, wf); err != nil {
//	    log.Fatal(err)
//	}
//
// Components execute in declaration order; there is no implicit
// parallelism at the top level. Building is pure data assembly with no
// side effects; an empty workflow is legal and completes immediately.
type Builder struct {
	cfg api.WorkflowConfig
}

// New creates a workflow builder with the given name.
func New(name string) *Builder {
	if name == "" {
		panic("conduct: workflow name must not be empty")
	}
	return &Builder{
		cfg: api.WorkflowConfig{
			Name:       name,
			Components: make([]api.Component, 0),
		},
	}
}

// Describe sets the workflow description.
func (b *Builder) Describe(desc string) *Builder {
	b.cfg.Description = desc
	return b
}

// OnFailure sets the workflow's failure policy. The default is
// HaltOnFirstFailure.
func (b *Builder) OnFailure(policy FailurePolicy) *Builder {
	b.cfg.Policy = policy
	return b
}

// Observe sets the workflow's observer. Pass a LoggingObserver for
// structured slog output, or combine several with NewCompositeObserver.
func (b *Builder) Observe(obs Observer) *Builder {
	b.cfg.Observer = obs
	return b
}

// Task appends a task with no static inputs.
func (b *Builder) Task(name string, fn TaskFunc) *Builder {
	return b.Add(api.NewTask(name, fn))
}

// TaskWithInputs appends a task with a static input map. Static inputs
// win over namespace values on key collision.
func (b *Builder) TaskWithInputs(name string, fn TaskFunc, inputs map[string]any) *Builder {
	return b.Add(api.NewTask(name, fn, api.WithInputs(inputs)))
}

// Sequential appends a group whose children run in declaration order.
func (b *Builder) Sequential(name string, children ...Componenter) *Builder {
	return b.Add(api.NewGroup(name, api.ModeSequential, children...))
}

// Parallel appends a group whose children run concurrently and join
// before the next sibling executes.
func (b *Builder) Parallel(name string, children ...Componenter) *Builder {
	return b.Add(api.NewGroup(name, api.ModeParallel, children...))
}

// Logic appends a conditional-branching node: decide is evaluated when
// execution reaches it, and the components it returns are spliced into
// the stream in its place.
func (b *Builder) Logic(name string, decide DecisionFunc) *Builder {
	return b.Add(api.NewLogic(name, decide))
}

// Trigger appends a monitoring node: when predicate holds against the
// namespace, target executes, but its outputs stay out of the primary
// namespace.
func (b *Builder) Trigger(name string, predicate PredicateFunc, target Componenter) *Builder {
	return b.Add(api.NewTrigger(name, predicate, target))
}

// Subflow appends an embedded workflow as a single component.
func (b *Builder) Subflow(flow *Workflow) *Builder {
	if flow == nil {
		panic("conduct: nil subflow")
	}
	return b.Add(flow)
}

// Add appends any component, built-in or user-defined, via its
// Componenter capability. This is the extension point for mixing custom
// node kinds into a declaration.
func (b *Builder) Add(components ...Componenter) *Builder {
	for _, c := range components {
		if c == nil {
			panic("conduct: nil component in declaration")
		}
		resolved := c.AsComponent()
		if resolved == nil {
			panic("conduct: AsComponent returned nil")
		}
		b.cfg.Components = append(b.cfg.Components, resolved)
	}
	return b
}

// Build assembles the workflow. The component sequence is fixed from
// this point on.
func (b *Builder) Build() *Workflow {
	return api.NewWorkflow(b.cfg)
}
