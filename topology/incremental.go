package topology

import "github.com/talal0047/pcs/lts"

// Incremental is a lazily materialised topology. States are expanded on
// first read; states no traversal visits are never built. Expansion is a
// pull model guarded by an expanded set, so Expand is idempotent.
type Incremental struct {
	*base
	expanded map[Key]bool
}

// NewIncremental registers only the initial tuple; everything else is
// materialised on demand through Expand or Outgoing.
func NewIncremental(resources []*lts.LTS[string, string]) (*Incremental, error) {
	b, err := newBase(resources)
	if err != nil {
		return nil, err
	}
	return &Incremental{base: b, expanded: make(map[Key]bool)}, nil
}

// Expand materialises the out-edges of a known state, registering successor
// states as it goes. Expanding an already expanded state is a no-op;
// expanding an unknown state fails.
func (t *Incremental) Expand(k Key) error {
	if t.invalid {
		return ErrInvalidated
	}
	if !t.graph.HasState(k) {
		return &lts.UnknownStateError[Key]{State: k}
	}
	if t.expanded[k] {
		return nil
	}
	moves, err := t.successors(k)
	if err != nil {
		return err
	}
	for _, m := range moves {
		t.graph.AddTransition(k, m.Label, m.To)
	}
	t.expanded[k] = true
	return nil
}

// Expanded reports whether a state has been expanded.
func (t *Incremental) Expanded(k Key) bool { return t.expanded[k] }

func (t *Incremental) Outgoing(k Key) ([]lts.Transition[Key, Action], error) {
	if err := t.Expand(k); err != nil {
		return nil, err
	}
	return t.graph.Outgoing(k)
}
