// Package graphviz renders topologies and controllers as GraphViz graphs.
// Node identifiers are the deterministic tuple encoding of topology states;
// edge labels are the `index:action` form of participating actions. Edges
// chosen by a controller can be highlighted.
package graphviz

import (
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/topology"
)

type Font string

func (f Font) Or(other Font) Font {
	return f + "," + other
}

const (
	Helvetica Font = "Helvetica"
	Arial     Font = "Arial"
	SansSerif Font = "sans-serif"
	Serif     Font = "Serif"
	Times     Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	RightToLeft RankDir = "RL"
	TopToBottom RankDir = "TB"
	BottomToTop RankDir = "BT"
)

type Format string

const (
	DOT Format = Format(graphviz.XDOT)
	SVG Format = Format(graphviz.SVG)
	PNG Format = Format(graphviz.PNG)
)

type Config struct {
	Name string
	Font
	RankDir
	Format
}

// Writer renders one graph per Flush call.
type Writer struct {
	*Config
	g          *cgraph.Graph
	mapping    map[topology.Key]*cgraph.Node
	highlights map[string]bool
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "pcs"
	}
	if config.Format == "" {
		config.Format = DOT
	}
	return &Writer{
		Config:     config,
		mapping:    make(map[topology.Key]*cgraph.Node),
		highlights: make(map[string]bool),
	}
}

// Highlight marks every edge of ctrl so the next Flush renders it in red.
// Pass the synthesised controller and flush the topology to visualise which
// part of the state space the controller drives through.
func (w *Writer) Highlight(ctrl *lts.LTS[topology.Key, topology.Action]) {
	for k, s := range ctrl.States() {
		for _, t := range s.Transitions {
			w.highlights[edgeKey(k, t.Label, t.To)] = true
		}
	}
}

func (w *Writer) writeState(k topology.Key, initial bool) error {
	node, err := w.g.CreateNode(string(k))
	if err != nil {
		return err
	}
	node.SetShape(cgraph.EllipseShape)
	node.SetLabel("(" + string(k) + ")")
	node.Set("fontname", string(w.Font))
	if initial {
		node.SetShape(cgraph.DoubleCircleShape)
	}
	w.mapping[k] = node
	return nil
}

func (w *Writer) writeTransition(i int, src topology.Key, t lts.Transition[topology.Key, topology.Action]) error {
	from := w.mapping[src]
	to, ok := w.mapping[t.To]
	if !ok {
		// Dangling target: shallow erasure permits edges into removed
		// states; render the target anyway so the edge stays visible.
		if err := w.writeState(t.To, false); err != nil {
			return err
		}
		to = w.mapping[t.To]
	}
	name := fmt.Sprintf("e%d", i)
	edge, err := w.g.CreateEdge(name, from, to)
	if err != nil {
		return err
	}
	edge.SetLabel(t.Label.String())
	edge.Set("fontname", string(w.Font))
	if w.highlights[edgeKey(src, t.Label, t.To)] {
		edge.SetColor("red")
	}
	return nil
}

// Flush renders g to out in the configured format.
func (w *Writer) Flush(out io.Writer, g *lts.LTS[topology.Key, topology.Action]) error {
	gv := graphviz.New()
	defer func() {
		_ = gv.Close()
	}()
	graph, err := gv.Graph(graphviz.Name(w.Name))
	if err != nil {
		return err
	}
	graph.SetRankDir(cgraph.RankDir(w.RankDir))
	w.g = graph
	w.mapping = make(map[topology.Key]*cgraph.Node)

	initial, hasInitial := g.InitialState()
	keys := g.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if err := w.writeState(k, hasInitial && k == initial); err != nil {
			return err
		}
	}
	i := 0
	for _, k := range keys {
		s, _ := g.At(k)
		for _, t := range s.Transitions {
			if err := w.writeTransition(i, k, t); err != nil {
				return err
			}
			i++
		}
	}
	return gv.Render(graph, graphviz.Format(w.Format), out)
}

func edgeKey(src topology.Key, act topology.Action, dst topology.Key) string {
	return string(src) + "|" + act.String() + "|" + string(dst)
}
