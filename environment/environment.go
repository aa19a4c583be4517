// Package environment hosts the long-lived containers of a synthesis run:
// the resource transition systems, the topology composed from them, the
// recipe, and the synthesised controller. It is the only owner of these
// artefacts; the synthesiser works against read-only views it hands out.
package environment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/talal0047/pcs/controller"
	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/product"
	"github.com/talal0047/pcs/topology"
)

// ErrNoTopology is returned by Synthesise before a topology has been built.
var ErrNoTopology = errors.New("environment: no topology; call Complete or Incremental first")

// ErrNoRecipe is returned by Synthesise before a recipe has been loaded.
var ErrNoRecipe = errors.New("environment: no recipe loaded")

// Environment owns the resources, topology, recipe and controller.
type Environment struct {
	logger    *zap.Logger
	resources []*lts.LTS[string, string]
	topo      topology.Topology
	recipe    *product.Recipe
	ctrl      *lts.LTS[topology.Key, topology.Action]

	// generation counts resource mutations; topoGen records the generation
	// the current topology was built at. A mismatch means the topology is
	// stale and must be rebuilt before use.
	generation uint64
	topoGen    uint64

	maxDepth int
	strategy controller.Strategy
}

func New(logger *zap.Logger) *Environment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Environment{logger: logger}
}

// WithMaxDepth sets the synthesis search depth bound. Zero keeps the
// default.
func (e *Environment) WithMaxDepth(n int) *Environment {
	e.maxDepth = n
	return e
}

// WithStrategy sets the synthesis search policy.
func (e *Environment) WithStrategy(s controller.Strategy) *Environment {
	e.strategy = s
	return e
}

// AddResource parses an LTS file and appends it to the resource list. When a
// topology has already been built it is invalidated; the next Complete or
// Incremental call recomputes it over the grown resource set.
func (e *Environment) AddResource(path string, isJSON bool) error {
	var (
		r   *lts.LTS[string, string]
		err error
	)
	if isJSON {
		r, err = lts.ReadFromJSONFile(path)
	} else {
		r, err = lts.ReadFromFile(path)
	}
	if err != nil {
		return err
	}
	e.AddResourceLTS(r)
	e.logger.Debug("added resource",
		zap.String("path", path),
		zap.Int("states", r.NumStates()),
		zap.Int("transitions", r.NumTransitions()))
	return nil
}

// AddResourceLTS appends an already parsed resource.
func (e *Environment) AddResourceLTS(r *lts.LTS[string, string]) {
	e.resources = append(e.resources, r)
	e.generation++
	if e.topo != nil {
		e.topo.Invalidate()
	}
}

// Complete builds the fully expanded topology over the current resources.
func (e *Environment) Complete() error {
	t, err := topology.NewComplete(e.resources)
	if err != nil {
		return err
	}
	e.topo = t
	e.topoGen = e.generation
	e.logger.Info("topology complete",
		zap.Int("resources", len(e.resources)),
		zap.Int("states", t.Graph().NumStates()),
		zap.Int("transitions", t.Graph().NumTransitions()))
	return nil
}

// Incremental builds a lazy topology over the current resources; states are
// materialised as the synthesiser visits them.
func (e *Environment) Incremental() error {
	t, err := topology.NewIncremental(e.resources)
	if err != nil {
		return err
	}
	e.topo = t
	e.topoGen = e.generation
	e.logger.Info("topology incremental", zap.Int("resources", len(e.resources)))
	return nil
}

// LoadRecipe parses a recipe document and attaches it.
func (e *Environment) LoadRecipe(path string) error {
	r, err := product.ReadFromJSONFile(path)
	if err != nil {
		return err
	}
	e.recipe = r
	e.logger.Debug("loaded recipe",
		zap.String("path", path),
		zap.Int("states", r.NumStates()),
		zap.Int("transitions", r.NumTransitions()))
	return nil
}

// SetRecipe attaches an already parsed recipe.
func (e *Environment) SetRecipe(r *product.Recipe) { e.recipe = r }

// Synthesise runs controller synthesis over the current topology and recipe
// and stores the controller on success. The context cancels the search at
// search-node granularity.
func (e *Environment) Synthesise(ctx context.Context) (*lts.LTS[topology.Key, topology.Action], error) {
	if e.topo == nil {
		return nil, ErrNoTopology
	}
	if e.recipe == nil {
		return nil, ErrNoRecipe
	}
	if e.topoGen != e.generation {
		return nil, fmt.Errorf("environment: synthesise: %w", topology.ErrInvalidated)
	}
	c := controller.New(e.topo, e.recipe).
		WithLogger(e.logger).
		WithMaxDepth(e.maxDepth)
	if e.strategy != nil {
		c = c.WithStrategy(e.strategy)
	}
	ctrl, err := c.Generate(ctx)
	if err != nil {
		return nil, err
	}
	e.ctrl = ctrl
	return ctrl, nil
}

// Topology returns the current topology view, or nil before a build.
func (e *Environment) Topology() topology.Topology { return e.topo }

// Controller returns the last synthesised controller, or nil.
func (e *Environment) Controller() *lts.LTS[topology.Key, topology.Action] { return e.ctrl }

// Recipe returns the attached recipe, or nil.
func (e *Environment) Recipe() *product.Recipe { return e.recipe }

// Resources returns the owned resource list. Callers must not mutate it.
func (e *Environment) Resources() []*lts.LTS[string, string] { return e.resources }

func (e *Environment) NumResources() int { return len(e.resources) }

// NumTopologyStates reports the number of materialised topology states.
func (e *Environment) NumTopologyStates() int {
	if e.topo == nil {
		return 0
	}
	return e.topo.Graph().NumStates()
}
