package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talal0047/pcs/env"
	"github.com/talal0047/pcs/runner"
)

var (
	dataDir         string
	exportDir       string
	incremental     bool
	images          bool
	onlyHighlighted bool
	maxDepth        int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run controller synthesis over a data folder",
	Long: `Load Resource<i>.txt/.json files and recipe.json from the data folder,
build the machine topology, synthesise a controller, and export the results
as DOT (and optionally PNG) files.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(debug)
		defer func() {
			_ = logger.Sync()
		}()
		cfg := env.Load(logger)
		opts := runner.Opts{
			DataDir:         cfg.DataDir,
			ExportDir:       cfg.ExportDir,
			Incremental:     incremental,
			Images:          images,
			OnlyHighlighted: onlyHighlighted,
			MaxDepth:        cfg.MaxDepth,
		}
		if cmd.Flags().Changed("data") {
			opts.DataDir = dataDir
		}
		if cmd.Flags().Changed("export") {
			opts.ExportDir = exportDir
		}
		if cmd.Flags().Changed("max-depth") {
			opts.MaxDepth = maxDepth
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		exported, err := runner.Run(ctx, logger, opts)
		if err != nil {
			logger.Error("run failed", zap.Error(err))
			_ = logger.Sync()
			os.Exit(runner.ExitCode(err))
		}
		logger.Info("controller exported", zap.String("folder", exported))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&dataDir, "data", "data", "folder containing Resource files and recipe.json")
	runCmd.Flags().StringVar(&exportDir, "export", "exports", "folder to export results into")
	runCmd.Flags().BoolVar(&incremental, "incremental", false, "build the topology incrementally")
	runCmd.Flags().BoolVar(&images, "images", false, "render PNG images next to the DOT files")
	runCmd.Flags().BoolVar(&onlyHighlighted, "only-highlighted", false, "export only the highlighted topology")
	runCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "synthesis search depth bound (0 = automatic)")
}
