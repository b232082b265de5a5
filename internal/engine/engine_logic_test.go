package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/petrijr/conduct/pkg/api"
)

func TestLogicSplicesBeforeNextSibling(t *testing.T) {
	var mu sync.Mutex
	var order []string

	branch := api.NewLogic("branch", func(ctx context.Context, outputs map[string]any) ([]api.Component, error) {
		if outputs["check.v"] == "spliced" {
			return []api.Component{recordTask("extra", &mu, &order)}, nil
		}
		return nil, nil
	})

	wf := newWorkflow(t, "",
		constTask("check", "v", "spliced"),
		branch,
		recordTask("after", &mu, &order),
	)

	if err := Run(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(order) != 2 || order[0] != "extra" || order[1] != "after" {
		t.Fatalf("execution order = %v, want [extra after]", order)
	}
	if got := branch.State(); got != api.StateCompleted {
		t.Fatalf("logic state = %s, want %s", got, api.StateCompleted)
	}
	if _, ok := wf.Outputs().Lookup("extra.done"); !ok {
		t.Fatal("spliced task output missing from namespace")
	}
}

func TestLogicEmptySplice(t *testing.T) {
	branch := api.NewLogic("branch", func(ctx context.Context, outputs map[string]any) ([]api.Component, error) {
		return nil, nil
	})
	wf := newWorkflow(t, "", branch, constTask("after", "v", 1))

	if err := Run(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := branch.State(); got != api.StateCompleted {
		t.Fatalf("logic state = %s, want %s", got, api.StateCompleted)
	}
	if got := wf.Outputs().Get("after.v"); got != 1 {
		t.Fatalf("after.v = %v, want 1", got)
	}
}

func TestLogicDecisionError(t *testing.T) {
	sentinel := fmt.Errorf("cannot decide")
	branch := api.NewLogic("branch", func(ctx context.Context, outputs map[string]any) ([]api.Component, error) {
		return nil, sentinel
	})
	after := constTask("after", "v", 1)
	wf := newWorkflow(t, "", branch, after)

	err := Run(context.Background(), wf)
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is lost the cause: %v", err)
	}
	var terr *api.TaskError
	if !errors.As(err, &terr) || terr.Kind != api.KindLogic {
		t.Fatalf("error = %v, want logic TaskError", err)
	}
	if got := branch.State(); got != api.StateFailed {
		t.Fatalf("logic state = %s, want %s", got, api.StateFailed)
	}
	if got := after.State(); got != api.StateNotStarted {
		t.Fatalf("sibling after failed logic = %s, want %s", got, api.StateNotStarted)
	}
}

// A failing spliced component fails on its own terms: the logic node still
// completes (its decision succeeded), the failure propagates per policy.
func TestLogicSplicedFailure(t *testing.T) {
	sentinel := fmt.Errorf("spliced boom")
	branch := api.NewLogic("branch", func(ctx context.Context, outputs map[string]any) ([]api.Component, error) {
		return []api.Component{failTask("inner", sentinel)}, nil
	})
	after := constTask("after", "v", 1)
	wf := newWorkflow(t, "", branch, after)

	err := Run(context.Background(), wf)
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is lost the cause: %v", err)
	}
	if got := branch.State(); got != api.StateCompleted {
		t.Fatalf("logic state = %s, want %s", got, api.StateCompleted)
	}
	if got := after.State(); got != api.StateNotStarted {
		t.Fatalf("sibling state = %s, want %s", got, api.StateNotStarted)
	}
}

func TestTriggerFalseSkips(t *testing.T) {
	target := constTask("alert", "sent", true)
	trig := api.NewTrigger("watch", func(outputs map[string]any) bool {
		return false
	}, target)
	wf := newWorkflow(t, "", trig)

	if err := Run(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := trig.State(); got != api.StateCompleted {
		t.Fatalf("trigger state = %s, want %s", got, api.StateCompleted)
	}
	if got := target.State(); got != api.StateNotStarted {
		t.Fatalf("target state = %s, want %s", got, api.StateNotStarted)
	}
	if n := len(trig.Outputs()); n != 0 {
		t.Fatalf("skipped trigger has %d outputs, want 0", n)
	}
}

// A fired trigger runs its target but never merges target outputs into the
// primary namespace; they stay visible on the target itself and in the
// report.
func TestTriggerFiredDoesNotMerge(t *testing.T) {
	target := constTask("alert", "sent", true)
	trig := api.NewTrigger("watch", func(outputs map[string]any) bool {
		return outputs["check.v"] == "hot"
	}, target)

	wf := newWorkflow(t, "", constTask("check", "v", "hot"), trig)

	if err := Run(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := target.State(); got != api.StateCompleted {
		t.Fatalf("target state = %s, want %s", got, api.StateCompleted)
	}
	if got := target.Outputs()["sent"]; got != true {
		t.Fatalf("target outputs = %v, want sent=true", target.Outputs())
	}
	if _, ok := wf.Outputs().Lookup("alert.sent"); ok {
		t.Fatal("trigger target output leaked into the primary namespace")
	}

	// the report still shows the target as a child of the trigger
	r := wf.Report()
	entry := r.Entries[1]
	if entry.Kind != api.KindTrigger || len(entry.Children) != 1 {
		t.Fatalf("unexpected trigger entry: %+v", entry)
	}
	if entry.Children[0].State != api.StateCompleted {
		t.Fatalf("target child state = %s, want %s", entry.Children[0].State, api.StateCompleted)
	}
}

func TestTriggerTargetFailurePropagates(t *testing.T) {
	sentinel := fmt.Errorf("alert down")
	trig := api.NewTrigger("watch", func(outputs map[string]any) bool {
		return true
	}, failTask("alert", sentinel))
	after := constTask("after", "v", 1)
	wf := newWorkflow(t, "", trig, after)

	err := Run(context.Background(), wf)
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is lost the cause: %v", err)
	}
	if got := trig.State(); got != api.StateFailed {
		t.Fatalf("trigger state = %s, want %s", got, api.StateFailed)
	}
	if got := after.State(); got != api.StateNotStarted {
		t.Fatalf("sibling state = %s, want %s", got, api.StateNotStarted)
	}
}

func TestLogicConditionalTaskScenario(t *testing.T) {
	a := constTask("A", "r", "a")
	b := api.NewLogic("B", func(ctx context.Context, outputs map[string]any) ([]api.Component, error) {
		if outputs["A.r"] == "a" {
			return []api.Component{constTask("C", "r", "c")}, nil
		}
		return nil, nil
	})
	wf := newWorkflow(t, "", a, b)

	if err := Run(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := wf.Details.State(); got != api.StateCompleted {
		t.Fatalf("state = %s, want %s", got, api.StateCompleted)
	}
	want := map[string]any{"A.r": "a", "C.r": "c"}
	if got := wf.Outputs().Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("namespace = %v, want %v", got, want)
	}
}
