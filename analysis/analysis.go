// Package analysis computes structural metrics over a materialised topology:
// adjacency matrices and out-degree statistics. Useful for sizing a state
// space before synthesis and for benchmark reporting.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/topology"
)

// Adjacency returns the adjacency matrix of the graph together with the
// sorted key order indexing its rows and columns. Entry (i, j) counts the
// edges from state i to state j; parallel edges accumulate.
func Adjacency(g *lts.LTS[topology.Key, topology.Action]) (*mat.Dense, []topology.Key) {
	keys := sortedKeys(g)
	index := make(map[topology.Key]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	n := len(keys)
	if n == 0 {
		return &mat.Dense{}, keys
	}
	m := mat.NewDense(n, n, nil)
	for _, k := range keys {
		s, _ := g.At(k)
		for _, t := range s.Transitions {
			j, ok := index[t.To]
			if !ok {
				// Dangling target from a shallow erase; not a row.
				continue
			}
			i := index[k]
			m.Set(i, j, m.At(i, j)+1)
		}
	}
	return m, keys
}

// OutDegrees returns the out-degree of every state, in sorted key order.
func OutDegrees(g *lts.LTS[topology.Key, topology.Action]) []float64 {
	keys := sortedKeys(g)
	degrees := make([]float64, len(keys))
	for i, k := range keys {
		s, _ := g.At(k)
		degrees[i] = float64(len(s.Transitions))
	}
	return degrees
}

// Stats summarises the shape of a topology.
type Stats struct {
	States      int
	Transitions int
	MeanDegree  float64
	StdDevDeg   float64
	MaxDegree   float64
}

// Summarise computes degree statistics for a topology graph.
func Summarise(g *lts.LTS[topology.Key, topology.Action]) Stats {
	degrees := OutDegrees(g)
	s := Stats{
		States:      g.NumStates(),
		Transitions: g.NumTransitions(),
	}
	if len(degrees) == 0 {
		return s
	}
	s.MeanDegree = stat.Mean(degrees, nil)
	s.StdDevDeg = stat.StdDev(degrees, nil)
	for _, d := range degrees {
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
	}
	return s
}

func sortedKeys(g *lts.LTS[topology.Key, topology.Action]) []topology.Key {
	keys := g.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
