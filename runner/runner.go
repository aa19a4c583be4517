// Package runner drives a full synthesis run over a data folder: load the
// resources and the recipe, build the topology, synthesise the controller,
// and export the results. The CLI parses flags into Opts; the runner itself
// never touches the command line.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talal0047/pcs/analysis"
	"github.com/talal0047/pcs/controller"
	"github.com/talal0047/pcs/environment"
	"github.com/talal0047/pcs/graphviz"
	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/operation"
	"github.com/talal0047/pcs/topology"
)

// Opts selects how a run behaves.
type Opts struct {
	// DataDir holds Resource<i>.txt or Resource<i>.json files, numbered
	// from 1, plus recipe.json.
	DataDir string
	// ExportDir is the root for generated artefacts; each run writes into a
	// fresh subfolder named by its run ID.
	ExportDir string
	// Incremental builds the topology lazily instead of up front.
	Incremental bool
	// Images renders PNG images next to the DOT files.
	Images bool
	// OnlyHighlighted skips the plain topology export and keeps only the
	// highlighted one.
	OnlyHighlighted bool
	// MaxDepth bounds the synthesis search; zero keeps the default.
	MaxDepth int
}

// Exit codes reported by the CLI.
const (
	ExitOK           = 0
	ExitIO           = 1
	ExitParse        = 2
	ExitUnrealisable = 3
	ExitCancelled    = 4
)

// ExitCode maps an error from Run to the CLI exit code contract.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var parseErr *lts.ParseError
	var labelErr *operation.BadLabelError
	var unreal *controller.UnrealisableError
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return ExitCancelled
	case errors.As(err, &unreal):
		return ExitUnrealisable
	case errors.As(err, &parseErr) || errors.As(err, &labelErr):
		return ExitParse
	default:
		return ExitIO
	}
}

// NumOfResources counts the Resource<i> files in a data folder, accepting
// either text or JSON per index. Numbering starts at 1 and must be
// contiguous.
func NumOfResources(dataDir string) (int, error) {
	n := 0
	for {
		if _, ok := resourcePath(dataDir, n+1); !ok {
			break
		}
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("runner: no Resource files in %s", dataDir)
	}
	return n, nil
}

func resourcePath(dataDir string, i int) (string, bool) {
	txt := filepath.Join(dataDir, fmt.Sprintf("Resource%d.txt", i))
	if _, err := os.Stat(txt); err == nil {
		return txt, true
	}
	js := filepath.Join(dataDir, fmt.Sprintf("Resource%d.json", i))
	if _, err := os.Stat(js); err == nil {
		return js, true
	}
	return "", false
}

// LoadEnvironment parses every resource in the data folder into a fresh
// environment.
func LoadEnvironment(logger *zap.Logger, dataDir string) (*environment.Environment, error) {
	n, err := NumOfResources(dataDir)
	if err != nil {
		return nil, err
	}
	machine := environment.New(logger)
	for i := 1; i <= n; i++ {
		path, _ := resourcePath(dataDir, i)
		if err := machine.AddResource(path, filepath.Ext(path) == ".json"); err != nil {
			return nil, err
		}
	}
	return machine, nil
}

// Run performs a complete synthesis run and reports the export folder.
func Run(ctx context.Context, logger *zap.Logger, opts Opts) (string, error) {
	machine, err := LoadEnvironment(logger, opts.DataDir)
	if err != nil {
		return "", err
	}
	if err := machine.LoadRecipe(filepath.Join(opts.DataDir, "recipe.json")); err != nil {
		return "", err
	}
	machine.WithMaxDepth(opts.MaxDepth)
	if opts.Incremental {
		err = machine.Incremental()
	} else {
		err = machine.Complete()
	}
	if err != nil {
		return "", err
	}
	ctrl, err := machine.Synthesise(ctx)
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	exportDir := filepath.Join(opts.ExportDir, runID)
	if err := Export(machine, ctrl, exportDir, opts); err != nil {
		return "", err
	}
	stats := analysis.Summarise(machine.Topology().Graph())
	logger.Info("run finished",
		zap.String("export", exportDir),
		zap.Int("topologyStates", stats.States),
		zap.Int("topologyTransitions", stats.Transitions),
		zap.Float64("meanDegree", stats.MeanDegree),
		zap.Int("controllerStates", ctrl.NumStates()),
		zap.Int("controllerTransitions", ctrl.NumTransitions()))
	return exportDir, nil
}

// AddResourceAdaptive appends a resource to an existing machine, rebuilds
// the topology in the requested mode and re-synthesises against the recipe
// already attached.
func AddResourceAdaptive(ctx context.Context, machine *environment.Environment, path string, opts Opts) error {
	if err := machine.AddResource(path, filepath.Ext(path) == ".json"); err != nil {
		return err
	}
	var err error
	if opts.Incremental {
		err = machine.Incremental()
	} else {
		err = machine.Complete()
	}
	if err != nil {
		return err
	}
	_, err = machine.Synthesise(ctx)
	return err
}

// Export writes the topology, the highlighted topology and the controller
// into dir.
func Export(machine *environment.Environment, ctrl *lts.LTS[topology.Key, topology.Action], dir string, opts Opts) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("runner: creating %s: %w", dir, err)
	}
	topo := machine.Topology().Graph()
	if !opts.OnlyHighlighted {
		if err := flush(dir, "topology", topo, nil, opts.Images); err != nil {
			return err
		}
	}
	if err := flush(dir, "topology-highlighted", topo, ctrl, opts.Images); err != nil {
		return err
	}
	if err := flush(dir, "controller", ctrl, nil, opts.Images); err != nil {
		return err
	}
	return lts.ExportToFile(topology.Flatten(ctrl), filepath.Join(dir, "controller.txt"))
}

func flush(dir, name string, g *lts.LTS[topology.Key, topology.Action], highlight *lts.LTS[topology.Key, topology.Action], images bool) error {
	formats := []graphviz.Format{graphviz.DOT}
	exts := []string{".dot"}
	if images {
		formats = append(formats, graphviz.PNG)
		exts = append(exts, ".png")
	}
	for i, format := range formats {
		w := graphviz.New(&graphviz.Config{
			Name:    name,
			Font:    graphviz.Helvetica,
			RankDir: graphviz.LeftToRight,
			Format:  format,
		})
		if highlight != nil {
			w.Highlight(highlight)
		}
		f, err := os.Create(filepath.Join(dir, name+exts[i]))
		if err != nil {
			return fmt.Errorf("runner: creating %s: %w", name+exts[i], err)
		}
		if err := w.Flush(f, g); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
