package api

// Mode controls how a Group executes its children.
type Mode string

const (
	// ModeSequential executes children in declaration order; each child
	// observes every namespace write made by earlier siblings.
	ModeSequential Mode = "sequential"

	// ModeParallel launches all children concurrently against a snapshot
	// of the namespace taken at group entry, then merges their outputs in
	// declaration order at the join point.
	ModeParallel Mode = "parallel"
)

// Group is an ordered collection of child components executed either
// sequentially or in parallel.
type Group struct {
	Details

	name     string
	mode     Mode
	children []Component
}

var _ Component = (*Group)(nil)

// NewGroup creates a Group with the given execution mode. It panics if
// name is empty or mode is unknown. An empty child list is legal; such a
// group completes immediately.
func NewGroup(name string, mode Mode, children ...Componenter) *Group {
	if name == "" {
		panic("conduct: group name must not be empty")
	}
	if mode != ModeSequential && mode != ModeParallel {
		panic("conduct: group mode must be sequential or parallel")
	}
	return &Group{
		name:     name,
		mode:     mode,
		children: resolve(children),
	}
}

func (g *Group) Name() string { return g.name }

func (g *Group) Kind() Kind { return KindGroup }

// Mode returns the group's execution mode.
func (g *Group) Mode() Mode { return g.mode }

// Children returns the group's child components in declaration order.
func (g *Group) Children() []Component { return g.children }

func (g *Group) AsComponent() Component { return g }

// resolve converts a slice of Componenters into concrete Components,
// preserving order. Nil entries panic: a nil component in a declaration
// is a programming error.
func resolve(cs []Componenter) []Component {
	out := make([]Component, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			panic("conduct: nil component in declaration")
		}
		resolved := c.AsComponent()
		if resolved == nil {
			panic("conduct: AsComponent returned nil")
		}
		out = append(out, resolved)
	}
	return out
}
