// Package conduct provides a lightweight, embeddable task-orchestration
// engine for Go.
//
// Conduct is designed for applications that need to describe a graph of
// units of work (tasks, groups, conditional branches, nested
// sub-workflows) declaratively, and have an engine execute it while
// tracking per-unit state, output values, timing, and failures. It runs
// fully in-process, with no external infrastructure required.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Builder
//  2. Component (Task, Group, Logic, Trigger, Subflow)
//  3. Workflow
//  4. Namespace
//  5. Report
//
// # Builder
//
// The Builder is the declarative API used to describe workflows.
// Declaration order is execution order; structure is expressed purely
// through nesting, never through explicit dependency edges:
//
//	wf := conduct.New("daily-digest").
//	    Task("fetch", fetchFeed).
//	    Parallel("analyze",
//	        conduct.NewTask("sentiment", scoreSentiment),
//	        conduct.NewTask("keywords", extractKeywords),
//	    ).
//	    Logic("route", pickPublisher).
//	    Build()
//
// # Components
//
// A Task is a leaf unit of work behind one contract: it receives the
// merged inputs (namespace snapshot overlaid by its static inputs) and
// returns an output map. Task bodies are opaque to the engine; an HTTP
// fetch and a model call look exactly the same from the outside.
//
// A Group runs children sequentially or in parallel. Parallel children
// execute against a snapshot of the namespace, buffer their writes
// privately, and are merged deterministically at a structured join: the
// group cannot finish until every child has reached a terminal state.
//
// A Logic node evaluates a decision operation at the moment execution
// reaches it and splices the returned components into the stream, as if
// they had been declared in its place. This is the conditional-branching
// mechanism.
//
// A Trigger is a restricted Logic variant for monitoring side-effects:
// its predicate is checked once per run, and its target's outputs never
// merge into the primary namespace.
//
// A Subflow embeds an independently built workflow; when reached, it runs
// to completion and its entire namespace merges into the outer one
// unprefixed.
//
// # Workflow and Namespace
//
// A Workflow owns the component sequence, a failure policy
// (HaltOnFirstFailure or ContinueOnFailure), and the output Namespace:
// the single mapping that accumulates every produced value under
// "<component>.<key>" keys. Run it with:
//
//	err := conduct.Start(ctx, wf)
//
// Starting again re-runs from the top under a fresh run ID, clearing
// prior outputs. Everything executes within the calling process; there
// is no distributed scheduling and no crash recovery.
//
// # Observers and Reports
//
// An Observer receives structured callbacks (backed by log/slog in
// LoggingObserver) at every workflow and component transition; its
// absence never changes execution behavior. After a run (or during one),
// wf.Report() produces a read-only summary of every component: name,
// kind, state, duration, output keys, and error.
//
// Finished runs can additionally be recorded to a RunArchive (in-memory,
// SQLite, Postgres, or Redis) through NewArchivingObserver, for post-hoc
// diagnostics.
//
// For examples, see the /examples directory.
package conduct
