package controller

import (
	"sort"

	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/topology"
)

// CandidateKind classifies how a topology move contributes to the composite
// operation being realised.
type CandidateKind int

const (
	// SequentialMatch advances the next required sequential observable.
	SequentialMatch CandidateKind = iota
	// ParallelMatch meets one of the still-unmet parallel observables.
	ParallelMatch
	// Padding is a nop or a transfer coherent with the current handle map.
	Padding
)

// Candidate is one admissible move out of a search node.
type Candidate struct {
	Transition lts.Transition[topology.Key, topology.Action]
	Kind       CandidateKind
	// Par is the index of the matched parallel observable; meaningful for
	// ParallelMatch only.
	Par int
}

// Strategy orders the admissible moves of a search node. The search tries
// candidates in the returned order, so the strategy decides which realising
// trace is found first. Alternative policies can be substituted without
// touching the search itself.
type Strategy interface {
	Order(cands []Candidate) []Candidate
}

// GreedySequential prefers moves that advance the sequential list, then
// moves that shrink the parallel multiset, then padding. The sort is stable,
// so topology enumeration order decides within each category.
type GreedySequential struct{}

func (GreedySequential) Order(cands []Candidate) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Kind < cands[j].Kind
	})
	return cands
}
