package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/export"
	"github.com/piwi3910/packbench/internal/generator"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/runner"
)

type benchOptions struct {
	suite      string
	refDir     string
	algorithms []string
	bound      string
	timeLimit  time.Duration
	xlsx       string
	pdf        string

	// random suite
	family string
	count  int
	items  int
	seed   int64
}

// benchCommand runs a scenario over an instance suite and prints statistics.
func (c *CLI) benchCommand() *cobra.Command {
	opts := benchOptions{family: "bw", count: 10, items: 50, seed: 1}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark algorithms on an instance suite",
		Long: `Run every selected algorithm on every instance of a suite under a time limit,
verify the packings and print the average gap to a lower bound and the number
of best results, grouped by instance identifier.

Suites: bw, mv and clautiaux read the reference files from --ref-dir; random
generates --count instances of --items items for every class of --family.
Bin packing instances are benchmarked as strip packing with the bin width.`,
		Example: `  packbench bench --suite random --family mv --count 5
  packbench bench --suite bw --ref-dir data --algorithms NextFit,FirstFit,ea --xlsx bw.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBench(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.suite, "suite", "random", "instance suite: bw, mv, clautiaux, random")
	cmd.Flags().StringVar(&opts.refDir, "ref-dir", ".", "directory holding the reference instance files")
	cmd.Flags().StringSliceVar(&opts.algorithms, "algorithms", nil, "algorithms to run (default from config)")
	cmd.Flags().StringVar(&opts.bound, "bound", "", "lower bound for the statistics (default from config)")
	cmd.Flags().DurationVar(&opts.timeLimit, "time-limit", 0, "time limit per run (default from config, 0 = unlimited)")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "write the statistics to an Excel workbook")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "write the statistics to a PDF report")
	cmd.Flags().StringVar(&opts.family, "family", opts.family, "random suite family: bw, mv")
	cmd.Flags().IntVar(&opts.count, "count", opts.count, "random instances per class")
	cmd.Flags().IntVar(&opts.items, "items", opts.items, "items per random instance")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "random suite seed")

	return cmd
}

func (c *CLI) runBench(ctx context.Context, cmd *cobra.Command, opts benchOptions) error {
	logger := loggerFromContext(ctx)

	if !cmd.Flags().Changed("time-limit") {
		opts.timeLimit = c.config.TimeLimit.Duration
	}
	if len(opts.algorithms) == 0 {
		opts.algorithms = c.config.Algorithms
	}
	if opts.bound == "" {
		opts.bound = c.config.LowerBound
	}

	bound, err := bounds.ByName(opts.bound)
	if err != nil {
		return err
	}
	algorithms, err := c.resolveAlgorithms(opts.algorithms, bound)
	if err != nil {
		return err
	}

	bins, err := loadSuite(opts)
	if err != nil {
		return err
	}
	logger.Info("Loaded suite", "suite", opts.suite, "instances", len(bins))

	s := runner.NewScenario()
	s.AddAlgorithms(algorithms...)
	inputs := model.ConvertAll(bins)
	s.AddInputs(inputs...)
	if err := s.SetTimeLimit(opts.timeLimit); err != nil {
		return err
	}

	stats := runner.NewStatsCollector(bound, c.Out)
	fit := runner.NewBinFitListener(c.Out)
	for i, b := range bins {
		fit.Track(inputs[i], b)
	}
	core := runner.NewCore(runner.NewTextListener(c.Out), stats, fit, &debugListener{logger: logger})
	core.OnDrop = func(l runner.Listener, err error) {
		logger.Warn("Listener removed", "listener", fmt.Sprintf("%T", l), "err", err)
	}

	p := newProgress(logger)
	if err := core.Run(ctx, s); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Ran %d algorithms on %d instances", len(algorithms), len(s.Inputs)))

	if opts.xlsx != "" {
		if err := export.ExportStatsXLSX(opts.xlsx, stats); err != nil {
			return fmt.Errorf("write %s: %w", opts.xlsx, err)
		}
		logger.Info("Wrote statistics", "file", opts.xlsx)
	}
	if opts.pdf != "" {
		if err := export.ExportPDF(opts.pdf, nil, stats); err != nil {
			return fmt.Errorf("write %s: %w", opts.pdf, err)
		}
		logger.Info("Wrote report", "file", opts.pdf)
	}
	return nil
}

// loadSuite reads a reference suite or generates a random one.
func loadSuite(opts benchOptions) ([]*model.BinInstance, error) {
	switch opts.suite {
	case "bw", "mv", "clautiaux":
		return generator.LoadSuite(opts.refDir, opts.suite)
	case "random":
		return generateFamily(opts.family, opts.seed, opts.count, opts.items, 0)
	}
	return nil, fmt.Errorf("unknown suite %q (want bw, mv, clautiaux or random)", opts.suite)
}

// debugListener logs every finished test at debug level.
type debugListener struct {
	runner.BaseListener
	logger *log.Logger
}

func (d *debugListener) TestFinished(alg engine.Algorithm, in *model.Instance, out *model.Output, v model.Verdict) error {
	if out != nil {
		d.logger.Debug("Test finished", "input", in.ID, "algorithm", alg.Name(), "verdict", v.Result, "height", out.Objective())
		return nil
	}
	d.logger.Debug("Test finished", "input", in.ID, "algorithm", alg.Name(), "verdict", v.Result, "comment", v.Comment)
	return nil
}
