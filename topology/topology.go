// Package topology builds the asynchronous parallel composition of resource
// transition systems. A topology state is the tuple of the current states of
// every resource; a topology transition is a single resource taking one of
// its own transitions while the others stand still.
package topology

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/talal0047/pcs/lts"
)

// Key identifies a topology state: the comma-joined tuple of resource state
// names, ordered by resource index. The encoding is deterministic, so keys
// double as node identifiers in exports. It relies on state names being
// comma-free, which the resource parsers guarantee: the text format splits
// on ',' and the JSON parser rejects names containing one.
type Key string

// MakeKey builds a key from per-resource state names.
func MakeKey(parts []string) Key {
	return Key(strings.Join(parts, ","))
}

// Parts splits the key back into per-resource state names.
func (k Key) Parts() []string {
	return strings.Split(string(k), ",")
}

// Action is a topology transition label: the action of one resource tagged
// with that resource's index.
type Action struct {
	Resource int
	Label    string
}

func (a Action) String() string {
	return strconv.Itoa(a.Resource) + ":" + a.Label
}

// ErrInvalidated is returned by reads of a topology whose resource set has
// changed since the topology was built. The owner must rebuild before
// reading again.
var ErrInvalidated = errors.New("topology: invalidated by resource mutation")

// Topology is the view the controller synthesiser works against. Outgoing
// may materialise states on demand in incremental mode; transitions are
// enumerated in (resource index, resource insertion order) so traversals are
// reproducible.
type Topology interface {
	// Initial returns the tuple of resource initial states.
	Initial() Key
	// Outgoing returns the outgoing transitions of a state, expanding it
	// first if the topology is lazy.
	Outgoing(k Key) ([]lts.Transition[Key, Action], error)
	// Graph exposes the materialised portion of the state space.
	Graph() *lts.LTS[Key, Action]
	// NumResources returns the number of composed resources.
	NumResources() int
	// Invalidate marks the topology stale; subsequent reads fail with
	// ErrInvalidated.
	Invalidate()
}

// base carries what the complete and incremental builders share.
type base struct {
	resources []*lts.LTS[string, string]
	graph     *lts.LTS[Key, Action]
	initial   Key
	invalid   bool
}

func newBase(resources []*lts.LTS[string, string]) (*base, error) {
	parts := make([]string, len(resources))
	for i, r := range resources {
		init, ok := r.InitialState()
		if !ok {
			return nil, fmt.Errorf("topology: resource %d has no initial state", i)
		}
		parts[i] = init
	}
	b := &base{
		resources: resources,
		graph:     lts.New[Key, Action](),
		initial:   MakeKey(parts),
	}
	b.graph.SetInitialState(b.initial, true)
	return b, nil
}

func (b *base) Initial() Key                 { return b.initial }
func (b *base) Graph() *lts.LTS[Key, Action] { return b.graph }
func (b *base) NumResources() int            { return len(b.resources) }
func (b *base) Invalidate()                  { b.invalid = true }

// successors enumerates the moves enabled at a tuple in (resource index,
// insertion order) order.
func (b *base) successors(k Key) ([]lts.Transition[Key, Action], error) {
	parts := k.Parts()
	if len(parts) != len(b.resources) {
		return nil, &lts.UnknownStateError[Key]{State: k}
	}
	var out []lts.Transition[Key, Action]
	for i, r := range b.resources {
		moves, err := r.Outgoing(parts[i])
		if err != nil {
			return nil, &lts.UnknownStateError[Key]{State: k}
		}
		for _, m := range moves {
			next := make([]string, len(parts))
			copy(next, parts)
			next[i] = m.To
			out = append(out, lts.Transition[Key, Action]{
				Label: Action{Resource: i, Label: m.Label},
				To:    MakeKey(next),
			})
		}
	}
	return out, nil
}
