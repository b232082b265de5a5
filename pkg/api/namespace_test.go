package api

import (
	"reflect"
	"testing"
)

func TestNamespaceSetGetLookup(t *testing.T) {
	ns := NewNamespace()

	if got := ns.Get("missing"); got != nil {
		t.Fatalf("Get on unknown key = %v, want nil", got)
	}
	if _, ok := ns.Lookup("missing"); ok {
		t.Fatal("Lookup reported a missing key as present")
	}

	ns.Set("k", 1)
	if got := ns.Get("k"); got != 1 {
		t.Fatalf("k = %v, want 1", got)
	}

	// later writes replace
	ns.Set("k", 2)
	if got := ns.Get("k"); got != 2 {
		t.Fatalf("k = %v after overwrite, want 2", got)
	}
}

func TestNamespaceOverlay(t *testing.T) {
	parent := NewNamespace()
	parent.Set("base", "p")
	parent.Set("shadow", "parent")

	child := NewOverlay(parent)
	child.Set("local", "c")
	child.Set("shadow", "child")

	// reads fall through; local wins on collision
	if got := child.Get("base"); got != "p" {
		t.Fatalf("base = %v, want p", got)
	}
	if got := child.Get("shadow"); got != "child" {
		t.Fatalf("shadow = %v, want child", got)
	}

	// writes never reach the parent
	if _, ok := parent.Lookup("local"); ok {
		t.Fatal("overlay write leaked into the parent")
	}
	if got := parent.Get("shadow"); got != "parent" {
		t.Fatalf("parent shadow = %v, want parent", got)
	}

	// Local excludes inherited keys
	local := child.Local()
	want := map[string]any{"local": "c", "shadow": "child"}
	if !reflect.DeepEqual(local, want) {
		t.Fatalf("Local() = %v, want %v", local, want)
	}

	// Snapshot flattens the chain
	snap := child.Snapshot()
	if snap["base"] != "p" || snap["shadow"] != "child" || snap["local"] != "c" {
		t.Fatalf("Snapshot() = %v", snap)
	}
}

func TestNamespaceSnapshotIsCopy(t *testing.T) {
	ns := NewNamespace()
	ns.Set("k", 1)

	snap := ns.Snapshot()
	snap["k"] = 99
	snap["new"] = true

	if got := ns.Get("k"); got != 1 {
		t.Fatalf("mutating a snapshot changed the namespace: k = %v", got)
	}
	if _, ok := ns.Lookup("new"); ok {
		t.Fatal("mutating a snapshot added a namespace key")
	}
}

func TestNamespaceKeysSorted(t *testing.T) {
	ns := NewNamespace()
	ns.Set("b", 2)
	ns.Set("a", 1)
	ns.Set("c", 3)

	want := []string{"a", "b", "c"}
	if got := ns.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if ns.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ns.Len())
	}
}

func TestNamespaceMergeAndClear(t *testing.T) {
	ns := NewNamespaceFrom(map[string]any{"a": 1})
	ns.Merge(map[string]any{"b": 2, "a": 10})

	if got := ns.Get("a"); got != 10 {
		t.Fatalf("a = %v after merge, want 10", got)
	}
	if got := ns.Get("b"); got != 2 {
		t.Fatalf("b = %v, want 2", got)
	}

	ns.Clear()
	if ns.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", ns.Len())
	}
}

func TestNamespaceConcurrentWrites(t *testing.T) {
	ns := NewNamespace()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				ns.Set("k", i)
				ns.Snapshot()
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if _, ok := ns.Lookup("k"); !ok {
		t.Fatal("key lost under concurrent writes")
	}
}
