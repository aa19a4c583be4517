package topology

import "github.com/talal0047/pcs/lts"

// Complete is a fully materialised topology: every reachable tuple is
// expanded at construction time.
type Complete struct {
	*base
}

// NewComplete combines the resources by breadth-first exploration from the
// initial tuple until the work queue drains. Terminates when the reachable
// product is finite.
func NewComplete(resources []*lts.LTS[string, string]) (*Complete, error) {
	b, err := newBase(resources)
	if err != nil {
		return nil, err
	}
	seen := map[Key]bool{b.initial: true}
	queue := []Key{b.initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		moves, err := b.successors(cur)
		if err != nil {
			return nil, err
		}
		for _, m := range moves {
			b.graph.AddTransition(cur, m.Label, m.To)
			if !seen[m.To] {
				seen[m.To] = true
				queue = append(queue, m.To)
			}
		}
	}
	return &Complete{base: b}, nil
}

func (c *Complete) Outgoing(k Key) ([]lts.Transition[Key, Action], error) {
	if c.invalid {
		return nil, ErrInvalidated
	}
	return c.graph.Outgoing(k)
}
