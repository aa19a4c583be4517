// Package lts implements a generic labelled transition system: a directed
// multigraph of states with labelled transitions and a distinguished initial
// state. The container is generic over the state key and the transition
// label so the same structure backs raw resources (string keys, string
// labels), topologies (tuple keys, participating actions) and recipes
// (string keys, composite operations).
package lts

import "fmt"

// Transition is one labelled edge to a target state.
type Transition[K comparable, T any] struct {
	Label T
	To    K
}

// State holds the outgoing transitions of a single state, in insertion
// order. Parallel edges are permitted.
type State[K comparable, T any] struct {
	Transitions []Transition[K, T]
}

// LTS is a labelled transition system over state keys K and labels T.
//
// The zero value is not usable; construct with New or NewWithInitial.
type LTS[K comparable, T any] struct {
	states  map[K]*State[K, T]
	initial K
	hasInit bool
}

// UnknownStateError reports a lookup of a state the system does not contain.
type UnknownStateError[K comparable] struct {
	State K
}

func (e *UnknownStateError[K]) Error() string {
	return fmt.Sprintf("lts: unknown state %v", e.State)
}

func New[K comparable, T any]() *LTS[K, T] {
	return &LTS[K, T]{states: make(map[K]*State[K, T])}
}

func NewWithInitial[K comparable, T any](initial K) *LTS[K, T] {
	l := New[K, T]()
	l.SetInitialState(initial, true)
	return l
}

// States exposes the state map. Callers must treat it as read-only;
// iteration order is unspecified, so deterministic consumers sort keys at
// the use site.
func (l *LTS[K, T]) States() map[K]*State[K, T] { return l.states }

// InitialState returns the initial state key and whether one has been set.
func (l *LTS[K, T]) InitialState() (K, bool) { return l.initial, l.hasInit }

// SetInitialState marks a state as initial, creating it first when create is
// set and it does not exist yet.
func (l *LTS[K, T]) SetInitialState(key K, create bool) {
	if create && !l.HasState(key) {
		l.AddState(key)
	}
	l.initial = key
	l.hasInit = true
}

func (l *LTS[K, T]) HasState(key K) bool {
	_, ok := l.states[key]
	return ok
}

// At returns the state stored under key.
func (l *LTS[K, T]) At(key K) (*State[K, T], bool) {
	s, ok := l.states[key]
	return s, ok
}

// Outgoing returns the outgoing transitions of key in insertion order, or an
// UnknownStateError when the state does not exist.
func (l *LTS[K, T]) Outgoing(key K) ([]Transition[K, T], error) {
	s, ok := l.states[key]
	if !ok {
		return nil, &UnknownStateError[K]{State: key}
	}
	return s.Transitions, nil
}

func (l *LTS[K, T]) NumStates() int { return len(l.states) }

func (l *LTS[K, T]) NumTransitions() int {
	total := 0
	for _, s := range l.states {
		total += len(s.Transitions)
	}
	return total
}

// AddState inserts an isolated state and reports whether it was inserted.
// Prefer AddTransition, which creates states as needed.
func (l *LTS[K, T]) AddState(key K) bool {
	if l.HasState(key) {
		return false
	}
	l.states[key] = &State[K, T]{}
	return true
}

// AddTransition appends an edge from src to dst, creating either endpoint
// when missing. Duplicate edges are preserved.
func (l *LTS[K, T]) AddTransition(src K, label T, dst K) {
	l.AddState(src)
	l.AddState(dst)
	s := l.states[src]
	s.Transitions = append(s.Transitions, Transition[K, T]{Label: label, To: dst})
}

// AddTransitionStrict appends an edge but fails with UnknownStateError when
// either endpoint does not already exist.
func (l *LTS[K, T]) AddTransitionStrict(src K, label T, dst K) error {
	if !l.HasState(src) {
		return &UnknownStateError[K]{State: src}
	}
	if !l.HasState(dst) {
		return &UnknownStateError[K]{State: dst}
	}
	s := l.states[src]
	s.Transitions = append(s.Transitions, Transition[K, T]{Label: label, To: dst})
	return nil
}

// EraseShallow removes a state but leaves edges from other states dangling.
// A formal LTS need not be connected, so dangling targets are legal.
func (l *LTS[K, T]) EraseShallow(key K) bool {
	if !l.HasState(key) {
		return false
	}
	delete(l.states, key)
	return true
}

// EraseDeep removes a state and every edge whose target is that state.
// O(V+E).
func (l *LTS[K, T]) EraseDeep(key K) bool {
	if !l.HasState(key) {
		return false
	}
	delete(l.states, key)
	for _, s := range l.states {
		kept := s.Transitions[:0]
		for _, t := range s.Transitions {
			if t.To != key {
				kept = append(kept, t)
			}
		}
		s.Transitions = kept
	}
	return true
}

// Keys returns all state keys in unspecified order.
func (l *LTS[K, T]) Keys() []K {
	keys := make([]K, 0, len(l.states))
	for k := range l.states {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns a deep copy. Labels are copied by value.
func (l *LTS[K, T]) Clone() *LTS[K, T] {
	c := New[K, T]()
	c.initial = l.initial
	c.hasInit = l.hasInit
	for k, s := range l.states {
		ts := make([]Transition[K, T], len(s.Transitions))
		copy(ts, s.Transitions)
		c.states[k] = &State[K, T]{Transitions: ts}
	}
	return c
}

// Equal reports structural equality: equal initial states, equal state key
// sets, and per state equal transition multisets. Labels are compared with
// eq so label types without a built-in equality can participate.
func (l *LTS[K, T]) Equal(other *LTS[K, T], eq func(a, b T) bool) bool {
	if l.hasInit != other.hasInit || (l.hasInit && l.initial != other.initial) {
		return false
	}
	if len(l.states) != len(other.states) {
		return false
	}
	for k, s := range l.states {
		o, ok := other.states[k]
		if !ok || !sameTransitions(s.Transitions, o.Transitions, eq) {
			return false
		}
	}
	return true
}

// sameTransitions matches two edge lists as multisets.
func sameTransitions[K comparable, T any](a, b []Transition[K, T], eq func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, t := range a {
		for j, u := range b {
			if !used[j] && t.To == u.To && eq(t.Label, u.Label) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}
