package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talal0047/pcs/graphviz"
	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/topology"
)

var (
	vizInput  string
	vizOutput string
	vizFormat string
)

// vizCmd represents the viz command
var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render a resource LTS file as a GraphViz figure",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(debug)
		defer func() {
			_ = logger.Sync()
		}()
		r, err := lts.ReadFromFile(vizInput)
		if err != nil {
			logger.Error("could not read resource", zap.String("path", vizInput), zap.Error(err))
			os.Exit(1)
		}
		// A single resource composed with nothing is itself; this reuses
		// the topology-typed writer for plain resources.
		t, err := topology.NewComplete([]*lts.LTS[string, string]{r})
		if err != nil {
			logger.Error("could not prepare graph", zap.Error(err))
			os.Exit(1)
		}
		var format graphviz.Format
		switch vizFormat {
		case "dot":
			format = graphviz.DOT
		case "svg":
			format = graphviz.SVG
		case "png":
			format = graphviz.PNG
		default:
			logger.Error("unknown format", zap.String("format", vizFormat))
			os.Exit(1)
		}
		base := strings.TrimSuffix(filepath.Base(vizInput), filepath.Ext(vizInput))
		outPath := filepath.Join(vizOutput, base+"."+vizFormat)
		if err := os.MkdirAll(vizOutput, 0o755); err != nil {
			logger.Error("could not create output directory", zap.Error(err))
			os.Exit(1)
		}
		df, err := os.Create(outPath)
		if err != nil {
			logger.Error("could not create output file", zap.Error(err))
			os.Exit(1)
		}
		defer func() {
			_ = df.Close()
		}()
		w := graphviz.New(&graphviz.Config{
			Name:    base,
			Font:    graphviz.Helvetica,
			RankDir: graphviz.LeftToRight,
			Format:  format,
		})
		if err := w.Flush(df, t.Graph()); err != nil {
			logger.Error("could not render figure", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", outPath)
	},
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&vizInput, "input", "i", "", "input LTS file")
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "exports", "output directory")
	vizCmd.Flags().StringVarP(&vizFormat, "format", "f", "dot", "output format (dot, svg, png)")
	_ = vizCmd.MarkFlagRequired("input")
}
