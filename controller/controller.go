// Package controller synthesises a controller for a machine topology and a
// recipe. For every recipe transition it searches the topology for a trace
// whose resource actions realise the transition's composite operation, then
// stitches the successful traces into a single controller LTS driving the
// machine through the recipe.
package controller

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/operation"
	"github.com/talal0047/pcs/product"
	"github.com/talal0047/pcs/topology"
)

// depthFactor scales the per-resource slack added to the default search
// depth bound on top of the composite's own observable count.
const depthFactor = 2

// UnrealisableError reports the first recipe transition for which no
// realising trace exists from the topology state reached so far.
type UnrealisableError struct {
	From      string
	To        string
	Operation operation.Composite
	State     topology.Key
}

func (e *UnrealisableError) Error() string {
	return fmt.Sprintf("controller: recipe transition %s -> %s (%s) is unrealisable from topology state (%s)",
		e.From, e.To, e.Operation.String(), e.State)
}

// Controller synthesises controllers against a read-only topology view.
type Controller struct {
	topo     topology.Topology
	recipe   *product.Recipe
	strategy Strategy
	maxDepth int
	logger   *zap.Logger
}

func New(topo topology.Topology, recipe *product.Recipe) *Controller {
	return &Controller{
		topo:     topo,
		recipe:   recipe,
		strategy: GreedySequential{},
		logger:   zap.NewNop(),
	}
}

func (c *Controller) WithLogger(logger *zap.Logger) *Controller {
	c.logger = logger
	return c
}

func (c *Controller) WithStrategy(s Strategy) *Controller {
	c.strategy = s
	return c
}

// WithMaxDepth overrides the per-transition search depth bound. Zero keeps
// the default of |sequential| + |parallel| + depthFactor * resources.
func (c *Controller) WithMaxDepth(n int) *Controller {
	c.maxDepth = n
	return c
}

// step is one topology transition of a realising trace.
type step struct {
	From topology.Key
	Act  topology.Action
	To   topology.Key
}

// mark is the synthesis position attached to a visited recipe state: the
// topology state reached by realising its incoming transition, and the
// handles produced so far.
type mark struct {
	state   topology.Key
	handles handleSet
}

// Generate traverses the recipe breadth-first from its initial state and
// realises every transition. On success the returned controller LTS starts
// at the topology's initial tuple and its edges form a sub-graph of the
// topology. On failure nothing is returned: a partially built controller is
// discarded.
func (c *Controller) Generate(ctx context.Context) (*lts.LTS[topology.Key, topology.Action], error) {
	rinit, ok := c.recipe.InitialState()
	if !ok {
		return nil, fmt.Errorf("controller: recipe has no initial state")
	}
	ctrl := lts.New[topology.Key, topology.Action]()
	ctrl.SetInitialState(c.topo.Initial(), true)

	marks := map[string]mark{rinit: {state: c.topo.Initial(), handles: handleSet{}}}
	queue := []string{rinit}
	for len(queue) > 0 {
		rs := queue[0]
		queue = queue[1:]
		m := marks[rs]
		outs, err := c.recipe.Outgoing(rs)
		if err != nil {
			return nil, err
		}
		for _, e := range outs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c.logger.Debug("realising recipe transition",
				zap.String("from", rs),
				zap.String("to", e.To),
				zap.String("state", string(m.state)),
				zap.String("operation", e.Label.String()))
			res, err := c.realise(ctx, m.state, m.handles, e.Label)
			if err != nil {
				return nil, err
			}
			if res == nil {
				return nil, &UnrealisableError{From: rs, To: e.To, Operation: e.Label, State: m.state}
			}
			for _, st := range res.trace {
				if !hasEdge(ctrl, st.From, st.Act, st.To) {
					ctrl.AddTransition(st.From, st.Act, st.To)
				}
			}
			if _, seen := marks[e.To]; !seen {
				marks[e.To] = mark{state: res.end, handles: res.handles}
				queue = append(queue, e.To)
			}
		}
	}
	c.logger.Info("controller synthesised",
		zap.Int("states", ctrl.NumStates()),
		zap.Int("transitions", ctrl.NumTransitions()))
	return ctrl, nil
}

// realise finds a trace from start whose actions match the composite
// operation. A nil result with a nil error means the operation is
// unrealisable within the depth bound.
func (c *Controller) realise(ctx context.Context, start topology.Key, handles handleSet, co operation.Composite) (*result, error) {
	if co.Guard != nil {
		ok, err := co.Guard.Allows(handles.sorted())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		// The guard observable must be realisable from the current state on
		// its own before any operation step; its trace is a pre-check only
		// and is not stitched into the controller.
		pre := operation.Composite{Sequential: []operation.Observable{co.Guard.Observable()}}
		s := &search{c: c, co: pre, maxDepth: c.depthFor(pre), visited: map[string]bool{}}
		res, err := s.run(ctx, start, handles)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, nil
		}
	}
	s := &search{c: c, co: co, maxDepth: c.depthFor(co), visited: map[string]bool{}}
	return s.run(ctx, start, handles)
}

func (c *Controller) depthFor(co operation.Composite) int {
	if c.maxDepth > 0 {
		return c.maxDepth
	}
	return co.Size() + depthFactor*c.topo.NumResources()
}

// result is a successful realisation: the trace taken, the tuple it ends
// in, and the handle map after the trace.
type result struct {
	trace   []step
	end     topology.Key
	handles handleSet
}

// search realises one composite operation by depth-first search over
// topology transitions. The search space is (topology state, next
// sequential index, unmet parallel multiset, available handles); the
// visited set holds the nodes on the current path to cut cycles.
type search struct {
	c        *Controller
	co       operation.Composite
	maxDepth int
	visited  map[string]bool
}

func (s *search) run(ctx context.Context, start topology.Key, handles handleSet) (*result, error) {
	unmet := make([]bool, len(s.co.Parallel))
	for i := range unmet {
		unmet[i] = true
	}
	return s.dfs(ctx, start, 0, unmet, len(unmet), handles, 0)
}

func (s *search) dfs(ctx context.Context, state topology.Key, seqIdx int, unmet []bool, unmetCount int, handles handleSet, depth int) (*result, error) {
	if seqIdx == len(s.co.Sequential) && unmetCount == 0 {
		return &result{end: state, handles: handles}, nil
	}
	if depth >= s.maxDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := nodeKey(state, seqIdx, unmet, handles)
	if s.visited[key] {
		return nil, nil
	}
	s.visited[key] = true
	defer delete(s.visited, key)

	outs, err := s.c.topo.Outgoing(state)
	if err != nil {
		return nil, err
	}
	var cands []Candidate
	for _, t := range outs {
		cand, ok, err := s.classify(t, seqIdx, unmet, handles)
		if err != nil {
			return nil, err
		}
		if ok {
			cands = append(cands, cand)
		}
	}
	cands = s.c.strategy.Order(cands)
	for _, cand := range cands {
		nextSeq, nextUnmet, nextCount, nextHandles := s.apply(cand, seqIdx, unmet, unmetCount, handles)
		res, err := s.dfs(ctx, cand.Transition.To, nextSeq, nextUnmet, nextCount, nextHandles, depth+1)
		if err != nil {
			return nil, err
		}
		if res != nil {
			res.trace = append([]step{{From: state, Act: cand.Transition.Label, To: cand.Transition.To}}, res.trace...)
			return res, nil
		}
	}
	return nil, nil
}

// classify decides the role a topology move can play at this node. A move
// is tried in its best role only: sequential match over parallel match over
// padding.
func (s *search) classify(t lts.Transition[topology.Key, topology.Action], seqIdx int, unmet []bool, handles handleSet) (Candidate, bool, error) {
	name := t.Label.Label
	op, err := operation.Parse(name)
	if err != nil {
		return Candidate{}, false, err
	}
	if seqIdx < len(s.co.Sequential) {
		obs := s.co.Sequential[seqIdx]
		if obs.Name == name && handles.available(obs.Input) {
			return Candidate{Transition: t, Kind: SequentialMatch}, true, nil
		}
	}
	for j, obs := range s.co.Parallel {
		if unmet[j] && obs.Name == name && handles.available(obs.Input) {
			return Candidate{Transition: t, Kind: ParallelMatch, Par: j}, true, nil
		}
	}
	switch o := op.(type) {
	case operation.Nop:
		return Candidate{Transition: t, Kind: Padding}, true, nil
	case operation.Transfer:
		// out:h makes the part available; in:h moves an available part into
		// a resource, so the part must exist for the move to be coherent.
		if o.Direction == operation.Out || handles[handleToken(o.Handle)] {
			return Candidate{Transition: t, Kind: Padding}, true, nil
		}
	}
	return Candidate{}, false, nil
}

// apply computes the successor search node for a candidate move.
func (s *search) apply(cand Candidate, seqIdx int, unmet []bool, unmetCount int, handles handleSet) (int, []bool, int, handleSet) {
	switch cand.Kind {
	case SequentialMatch:
		obs := s.co.Sequential[seqIdx]
		return seqIdx + 1, unmet, unmetCount, handles.consumeProduce(obs.Input, obs.Output)
	case ParallelMatch:
		obs := s.co.Parallel[cand.Par]
		next := make([]bool, len(unmet))
		copy(next, unmet)
		next[cand.Par] = false
		return seqIdx, next, unmetCount - 1, handles.consumeProduce(obs.Input, obs.Output)
	default:
		if tr, ok := operation.ParseTransfer(cand.Transition.Label.Label); ok && tr.Direction == operation.Out {
			return seqIdx, unmet, unmetCount, handles.consumeProduce(nil, []string{handleToken(tr.Handle)})
		}
		// in:h moves the part between resources without retiring it, and
		// nop has no effect; only observables consume handles.
		return seqIdx, unmet, unmetCount, handles
	}
}

// handleSet is the set of part handles currently available to observables.
type handleSet map[string]bool

func (h handleSet) available(inputs []string) bool {
	for _, in := range inputs {
		if !h[in] {
			return false
		}
	}
	return true
}

// consumeProduce removes the consumed handles and adds the produced ones,
// returning a fresh set. A handle is consumed by the observable that
// declared it as input; it is no longer available afterwards.
func (h handleSet) consumeProduce(consume, produce []string) handleSet {
	next := make(handleSet, len(h)+len(produce))
	for k, v := range h {
		if v {
			next[k] = true
		}
	}
	for _, in := range consume {
		delete(next, in)
	}
	for _, out := range produce {
		next[out] = true
	}
	return next
}

func (h handleSet) sorted() []string {
	out := make([]string, 0, len(h))
	for k, v := range h {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func handleToken(h uint64) string {
	return strconv.FormatUint(h, 10)
}

func nodeKey(state topology.Key, seqIdx int, unmet []bool, handles handleSet) string {
	var b strings.Builder
	b.WriteString(string(state))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(seqIdx))
	b.WriteByte('|')
	for _, u := range unmet {
		if u {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(handles.sorted(), ","))
	return b.String()
}

func hasEdge(l *lts.LTS[topology.Key, topology.Action], src topology.Key, act topology.Action, dst topology.Key) bool {
	s, ok := l.At(src)
	if !ok {
		return false
	}
	for _, t := range s.Transitions {
		if t.Label == act && t.To == dst {
			return true
		}
	}
	return false
}
