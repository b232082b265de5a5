package api

import (
	"sort"
	"sync"
)

// Namespace is the single mapping that accumulates all produced key/value
// results for a workflow run. Task outputs are published as
// "<taskName>.<key>"; subflow outputs are merged flat.
//
// Writes are append/overwrite-only during a run: once a key is written,
// a later write with the same key silently replaces the prior value. Only
// the engine mutates a namespace, and only at well-defined completion and
// join points, so graph authors never need a lock of their own.
//
// A namespace may have a read-through parent: lookups fall back to the
// parent while writes stay local. The engine uses this overlay form to
// isolate parallel children (and trigger targets) from the primary
// namespace until (or, for triggers, instead of) the merge.
type Namespace struct {
	mu     sync.RWMutex
	values map[string]any
	parent *Namespace
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{values: make(map[string]any)}
}

// NewOverlay creates an empty namespace whose reads fall through to
// parent. Writes never reach the parent.
func NewOverlay(parent *Namespace) *Namespace {
	return &Namespace{values: make(map[string]any), parent: parent}
}

// NewNamespaceFrom creates a namespace pre-populated with a copy of
// values. The engine uses this to freeze a snapshot at parallel group
// entry.
func NewNamespaceFrom(values map[string]any) *Namespace {
	n := NewNamespace()
	for k, v := range values {
		n.values[k] = v
	}
	return n
}

// Get returns the value for key, or nil if the key is unknown. It never
// fails.
func (n *Namespace) Get(key string) any {
	v, _ := n.Lookup(key)
	return v
}

// Lookup returns the value for key and whether it is present, consulting
// the parent chain on a local miss.
func (n *Namespace) Lookup(key string) (any, bool) {
	n.mu.RLock()
	v, ok := n.values[key]
	n.mu.RUnlock()

	if !ok && n.parent != nil {
		return n.parent.Lookup(key)
	}
	return v, ok
}

// Set writes a single key. Later writes to the same key replace the
// prior value.
func (n *Namespace) Set(key string, value any) {
	n.mu.Lock()
	n.values[key] = value
	n.mu.Unlock()
}

// Merge writes every entry of values into the namespace.
func (n *Namespace) Merge(values map[string]any) {
	if len(values) == 0 {
		return
	}
	n.mu.Lock()
	for k, v := range values {
		n.values[k] = v
	}
	n.mu.Unlock()
}

// Snapshot returns a flattened copy of the namespace, including values
// visible through the parent chain. Local values win over parent values.
func (n *Namespace) Snapshot() map[string]any {
	var base map[string]any
	if n.parent != nil {
		base = n.parent.Snapshot()
	} else {
		base = make(map[string]any)
	}

	n.mu.RLock()
	for k, v := range n.values {
		base[k] = v
	}
	n.mu.RUnlock()
	return base
}

// Local returns a copy of only the values written to this namespace,
// excluding anything visible through the parent. The engine merges these
// at parallel join points.
func (n *Namespace) Local() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// Keys returns the sorted keys visible in the namespace.
func (n *Namespace) Keys() []string {
	snap := n.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys visible in the namespace.
func (n *Namespace) Len() int {
	return len(n.Snapshot())
}

// Clear removes all local values. The engine calls this when a workflow
// is re-started from the top.
func (n *Namespace) Clear() {
	n.mu.Lock()
	n.values = make(map[string]any)
	n.mu.Unlock()
}
