// Command ripples-core is a thin demo CLI over the influence-
// maximization core, mirroring the teacher's own main.go (open a CSR
// binary graph, print a sample, run one operation) but wired to the
// real generate/select operations instead of a byte peek.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hipdac-lab/ripples"
	"github.com/hipdac-lab/ripples/internal/config"
	"github.com/hipdac-lab/ripples/internal/diffusion"
	"github.com/hipdac-lab/ripples/internal/graph"
	"github.com/hipdac-lab/ripples/internal/obs"
)

var (
	graphPath  string
	configPath string
	theta      int
	seedBudget int
	modelFlag  string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ripples-core",
		Short: "Influence-maximization core: RR-set generation and greedy seed selection",
	}
	root.PersistentFlags().StringVar(&graphPath, "graph", "", "path to a CSR binary graph (required)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (optional, defaults applied otherwise)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")
	root.MarkPersistentFlagRequired("graph")

	root.AddCommand(newGenerateCmd(), newSelectCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Sample an RR-set pool from the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			log, cfg, g, err := setup(runID)
			if err != nil {
				return err
			}
			defer log.Sync()

			model, err := parseModel(modelFlag)
			if err != nil {
				return err
			}

			e, err := ripples.New(g, cfg, log, 0x9E3779B97F4A7C15, uint64(len(g.Neighbors(0)))+1)
			if err != nil {
				return err
			}
			pool, err := e.Generate(context.Background(), theta, model)
			if err != nil {
				return err
			}
			log.Info("generated RR-set pool", zap.Int("theta", len(pool)), zap.String("model", model.String()))
			for i := 0; i < len(pool) && i < 5; i++ {
				fmt.Printf("rr[%d] = %v\n", i, pool[i])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&theta, "theta", 1000, "number of RR sets to sample")
	cmd.Flags().StringVar(&modelFlag, "model", "independent_cascade", "diffusion model: linear_threshold or independent_cascade")
	return cmd
}

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Generate an RR-set pool and select k seeds (raw or Huffman-compressed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			log, cfg, g, err := setup(runID)
			if err != nil {
				return err
			}
			defer log.Sync()

			model, err := parseModel(modelFlag)
			if err != nil {
				return err
			}

			e, err := ripples.New(g, cfg, log, 0x2545F4914F6CDD1D, 0xBF58476D1CE4E5B9)
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := e.Generate(ctx, theta, model)
			if err != nil {
				return err
			}

			var f float64
			var seeds []int32
			if huffmanFlag {
				f, seeds, err = e.HuffmanFind(seedBudget, pool)
			} else {
				f, seeds, err = e.FindMostInfluential(seedBudget, pool)
			}
			if err != nil {
				return err
			}
			log.Info("selected seeds", zap.Int32s("seeds", seeds), zap.Float64("f", f))
			fmt.Printf("seeds=%v f=%.4f\n", seeds, f)
			return nil
		},
	}
	cmd.Flags().IntVar(&theta, "theta", 1000, "number of RR sets to sample")
	cmd.Flags().IntVar(&seedBudget, "k", 10, "seed budget")
	cmd.Flags().StringVar(&modelFlag, "model", "independent_cascade", "diffusion model: linear_threshold or independent_cascade")
	cmd.Flags().BoolVar(&huffmanFlag, "huffman", false, "run the Huffman-compressed selector instead of the raw-pool one")
	return cmd
}

var huffmanFlag bool

func setup(runID string) (*zap.Logger, config.Config, *graph.Graph, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	base, err := obs.New(level)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	log := obs.WithRun(base, runID)

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, config.Config{}, nil, err
		}
	}

	g, err := graph.ReadCSRBin(graphPath)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	return log, cfg, g, nil
}

func parseModel(s string) (diffusion.Model, error) {
	switch s {
	case "linear_threshold", "lt":
		return diffusion.LinearThreshold, nil
	case "independent_cascade", "ic":
		return diffusion.IndependentCascade, nil
	default:
		return 0, fmt.Errorf("unknown diffusion model %q", s)
	}
}
