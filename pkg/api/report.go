package api

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Report is a post-hoc, read-only summary of a workflow run, derived from
// the details holders of every declared component. Building a report has
// no side effects; building it twice on a terminal workflow yields
// identical values.
//
// Components spliced in at runtime by Logic nodes are not part of the
// declared tree and therefore do not appear as entries of their own;
// their outputs are visible through the namespace key list.
type Report struct {
	Workflow   string        `json:"workflow"`
	RunID      string        `json:"run_id,omitempty"`
	State      State         `json:"state"`
	Duration   time.Duration `json:"duration"`
	OutputKeys []string      `json:"output_keys,omitempty"`
	Error      string        `json:"error,omitempty"`
	Entries    []ReportEntry `json:"entries,omitempty"`
}

// ReportEntry summarizes one component: name, kind, final state,
// execution time, sorted output keys, and error (if any). Group and
// subflow entries nest their children.
type ReportEntry struct {
	Name       string        `json:"name"`
	Kind       Kind          `json:"kind"`
	State      State         `json:"state"`
	Duration   time.Duration `json:"duration"`
	OutputKeys []string      `json:"output_keys,omitempty"`
	Error      string        `json:"error,omitempty"`
	Children   []ReportEntry `json:"children,omitempty"`
}

func buildReport(w *Workflow) Report {
	r := Report{
		Workflow:   w.Name(),
		RunID:      w.RunID(),
		State:      w.Details.State(),
		Duration:   w.Details.ExecutionTime(),
		OutputKeys: w.Outputs().Keys(),
		Entries:    buildEntries(w.Components()),
	}
	if err := w.Details.Err(); err != nil {
		r.Error = err.Error()
	}
	return r
}

func buildEntries(comps []Component) []ReportEntry {
	entries := make([]ReportEntry, 0, len(comps))
	for _, c := range comps {
		entries = append(entries, buildEntry(c))
	}
	return entries
}

func buildEntry(c Component) ReportEntry {
	e := ReportEntry{
		Name:       c.Name(),
		Kind:       c.Kind(),
		State:      c.State(),
		Duration:   c.ExecutionTime(),
		OutputKeys: sortedKeys(c.Outputs()),
	}
	if err := c.Err(); err != nil {
		e.Error = err.Error()
	}

	switch v := c.(type) {
	case *Group:
		e.Children = buildEntries(v.Children())
	case *Trigger:
		e.Children = []ReportEntry{buildEntry(v.Target())}
	case *Subflow:
		e.Children = buildEntries(v.Flow().Components())
	}
	return e
}

// String renders the report as an indented, human-readable summary, one
// line per component.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "workflow %q [%s] %s\n", r.Workflow, r.State, r.Duration)
	if r.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", r.Error)
	}
	writeEntries(&b, r.Entries, 1)
	return b.String()
}

func writeEntries(b *strings.Builder, entries []ReportEntry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		fmt.Fprintf(b, "%s%s %q [%s] %s", indent, e.Kind, e.Name, e.State, e.Duration)
		if len(e.OutputKeys) > 0 {
			fmt.Fprintf(b, " -> %s", strings.Join(e.OutputKeys, ", "))
		}
		if e.Error != "" {
			fmt.Fprintf(b, " error: %s", e.Error)
		}
		b.WriteByte('\n')
		writeEntries(b, e.Children, depth+1)
	}
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
