// Package api defines the public data model of the conduct engine: the
// component variants (Task, Group, Logic, Trigger, Subflow), the
// Workflow, the output Namespace, observers, reports, and run records.
//
// Most applications import the root conduct package, which re-exports
// everything here alongside the Builder and the engine entry points;
// api exists so that lower-level integrations (custom components,
// archive implementations, bespoke observers) have a stable surface
// without pulling in the engine.
package api
