package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/petrijr/conduct/pkg/api"
)

// Engine walks an ordered component list, dispatching each component
// according to its variant and writing produced outputs into a namespace.
// Top-level workflow execution, sequential groups, logic splices, trigger
// targets, and subflows all go through the same runList primitive; the
// only difference between them is which namespace the engine writes to.
type Engine struct {
	wf     *api.Workflow
	ns     *api.Namespace
	obs    api.Observer
	policy api.FailurePolicy
}

// Run executes wf from the top to a terminal state. Prior outputs and
// component details are cleared first, so calling Run again re-runs the
// workflow from scratch under a fresh run ID.
//
// Under HaltOnFirstFailure the returned error is the first component
// failure; under ContinueOnFailure it aggregates every recorded failure.
// A nil return means the workflow completed.
func Run(ctx context.Context, wf *api.Workflow) error {
	resetComponents(wf.Components())
	wf.Details.Reset()
	wf.Outputs().Clear()
	wf.SetRunID(uuid.NewString())

	e := &Engine{
		wf:     wf,
		ns:     wf.Outputs(),
		obs:    wf.Observer(),
		policy: wf.Policy(),
	}

	wf.Details.Begin()
	e.obs.OnWorkflowStart(ctx, wf)

	err := e.runList(ctx, wf.Components())
	if err != nil {
		wf.Details.Fail(err)
		e.obs.OnWorkflowFailed(ctx, wf, err)
		return err
	}

	wf.Details.Succeed(wf.Outputs().Snapshot())
	e.obs.OnWorkflowCompleted(ctx, wf)
	return nil
}

// withNamespace returns a copy of the engine that writes into ns.
func (e *Engine) withNamespace(ns *api.Namespace) *Engine {
	return &Engine{wf: e.wf, ns: ns, obs: e.obs, policy: e.policy}
}

// runList executes components in declaration order. Under
// HaltOnFirstFailure it returns on the first failure, leaving the
// remaining components in StateNotStarted. Under ContinueOnFailure it
// runs every component and returns the aggregated failures, if any.
// Context cancellation always halts, regardless of policy.
func (e *Engine) runList(ctx context.Context, comps []api.Component) error {
	var errs *multierror.Error

	for _, c := range comps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.runComponent(ctx, c); err != nil {
			if e.policy == api.HaltOnFirstFailure {
				return err
			}
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (e *Engine) runComponent(ctx context.Context, c api.Component) error {
	e.obs.OnComponentStart(ctx, e.wf, c)

	var err error
	switch v := c.(type) {
	case *api.Task:
		err = e.runTask(ctx, v)
	case *api.Group:
		err = e.runGroup(ctx, v)
	case *api.Logic:
		err = e.runLogic(ctx, v)
	case *api.Trigger:
		err = e.runTrigger(ctx, v)
	case *api.Subflow:
		err = e.runSubflow(ctx, v)
	default:
		err = api.NewTaskError(c.Name(), c.Kind(),
			fmt.Errorf("unknown component type %T", c))
	}

	e.obs.OnComponentCompleted(ctx, e.wf, c, err, c.ExecutionTime())
	return err
}

// runTask computes the merged inputs (namespace snapshot overlaid by the
// task's static inputs, static inputs winning), invokes the execute
// operation, and on success publishes each produced key into the
// namespace as "<name>.<key>".
func (e *Engine) runTask(ctx context.Context, t *api.Task) error {
	t.Begin()

	merged := e.ns.Snapshot()
	for k, v := range t.StaticInputs() {
		merged[k] = v
	}

	out, err := t.Fn()(ctx, merged)
	if err != nil {
		terr := api.NewTaskError(t.Name(), api.KindTask, err)
		t.Fail(terr)
		return terr
	}

	t.Succeed(out)
	for k, v := range out {
		e.ns.Set(t.Name()+"."+k, v)
	}
	return nil
}

func (e *Engine) runGroup(ctx context.Context, g *api.Group) error {
	if g.Mode() == api.ModeParallel {
		return e.runParallelGroup(ctx, g)
	}
	return e.runSequentialGroup(ctx, g)
}

// runSequentialGroup executes children in order against an overlay of the
// group's namespace; each child observes every write made by earlier
// siblings. The overlay is merged back whether or not the group failed,
// so partial outputs of a halted group remain queryable.
func (e *Engine) runSequentialGroup(ctx context.Context, g *api.Group) error {
	g.Begin()

	overlay := api.NewOverlay(e.ns)
	err := e.withNamespace(overlay).runList(ctx, g.Children())

	e.ns.Merge(overlay.Local())

	if err != nil {
		g.Fail(err)
		return err
	}
	g.Succeed(overlay.Local())
	return nil
}

// runParallelGroup launches every child concurrently against a frozen
// snapshot of the namespace taken at group entry; siblings never observe
// each other's in-flight writes. The group joins all children before
// reporting (a failing sibling does not cancel the others) and then
// merges the private buffers in declaration order, with the earliest
// declared child winning on key collision.
func (e *Engine) runParallelGroup(ctx context.Context, g *api.Group) error {
	g.Begin()

	children := g.Children()
	entry := api.NewNamespaceFrom(e.ns.Snapshot())

	buffers := make([]*api.Namespace, len(children))
	errs := make([]error, len(children))

	var wg sync.WaitGroup
	for i, child := range children {
		buffers[i] = api.NewOverlay(entry)

		wg.Add(1)
		go func(i int, child api.Component) {
			defer wg.Done()
			errs[i] = e.withNamespace(buffers[i]).runComponent(ctx, child)
		}(i, child)
	}
	wg.Wait()

	// Single-threaded merge at the join point. The claimed set gives the
	// earliest declared child the win on key collision.
	claimed := make(map[string]bool)
	merged := make(map[string]any)
	for _, buf := range buffers {
		for k, v := range buf.Local() {
			if claimed[k] {
				continue
			}
			claimed[k] = true
			merged[k] = v
		}
	}
	e.ns.Merge(merged)

	if gerr := api.NewGroupError(g.Name(), errs...); gerr != nil {
		g.Fail(gerr)
		return gerr
	}
	g.Succeed(merged)
	return nil
}

// runLogic evaluates the decision operation against the current namespace
// snapshot and splices the returned components into the execution stream
// inline, before the logic node's next sibling. The logic node itself
// completes once the splice has run; spliced components fail on their own
// terms, exactly as if they had been declared in the node's place.
func (e *Engine) runLogic(ctx context.Context, l *api.Logic) error {
	l.Begin()

	comps, err := l.Decide()(ctx, e.ns.Snapshot())
	if err != nil {
		lerr := api.NewTaskError(l.Name(), api.KindLogic, err)
		l.Fail(lerr)
		return lerr
	}

	spliceErr := e.runList(ctx, comps)
	l.Succeed(nil)
	return spliceErr
}

// runTrigger evaluates the predicate once against the namespace snapshot.
// A false predicate skips the trigger. A true predicate executes the
// target through the shared engine path, but against a discarded overlay:
// target outputs stay visible in the target's details and the report,
// and never merge into the primary namespace. Target failures propagate
// per the workflow policy, like any other component failure.
func (e *Engine) runTrigger(ctx context.Context, t *api.Trigger) error {
	t.Begin()

	if !t.Predicate()(e.ns.Snapshot()) {
		t.Skip()
		return nil
	}

	scratch := api.NewOverlay(e.ns)
	if err := e.withNamespace(scratch).runComponent(ctx, t.Target()); err != nil {
		t.Fail(err)
		return err
	}

	t.Succeed(nil)
	return nil
}

// runSubflow runs the embedded workflow to completion with this same
// algorithm, then merges its entire namespace into the outer one without
// prefixing (last write wins against earlier outer keys). The merge
// happens even when the subflow failed: partial output is never
// discarded. The embedded workflow's own state is the subflow's state.
func (e *Engine) runSubflow(ctx context.Context, s *api.Subflow) error {
	inner := s.Flow()
	err := Run(ctx, inner)

	e.ns.Merge(inner.Outputs().Snapshot())

	if err != nil {
		return api.NewTaskError(s.Name(), api.KindSubflow, err)
	}
	return nil
}

// resetComponents returns every component in the declared tree to its
// initial state ahead of a re-run.
func resetComponents(comps []api.Component) {
	for _, c := range comps {
		switch v := c.(type) {
		case *api.Task:
			v.Reset()
		case *api.Logic:
			v.Reset()
		case *api.Group:
			v.Reset()
			resetComponents(v.Children())
		case *api.Trigger:
			v.Reset()
			resetComponents([]api.Component{v.Target()})
		case *api.Subflow:
			// The embedded workflow resets itself when its run starts;
			// resetting here keeps reports consistent between runs.
			v.Flow().Details.Reset()
			v.Flow().Outputs().Clear()
			resetComponents(v.Flow().Components())
		default:
			if r, ok := c.(interface{ Reset() }); ok {
				r.Reset()
			}
		}
	}
}
