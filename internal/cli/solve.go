package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/export"
	"github.com/piwi3910/packbench/internal/gcode"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/project"
	"github.com/piwi3910/packbench/internal/runner"
	"github.com/piwi3910/packbench/internal/verify"
)

type solveOptions struct {
	input      string
	stripWidth int
	algorithms []string
	order      string
	strategy   string
	bound      string
	timeLimit  time.Duration
	archive    bool
	outputs    []string
	quiet      bool
}

// solveCommand packs one item list, or compares several algorithms on it.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Pack an item list into a strip",
		Long: `Pack the items of a CSV, Excel or DXF file into a strip of the given width.

The placement of every item is printed as "(x, y)" in input order, bottom-left
corner first. Use --output to also write layout files; the format follows the
extension (.pdf, .png, .dxf, .nc for a CNC cutting program) and labels.pdf
writes QR item labels.

Give --algorithm several names to compare them: the height of each packing is
printed and the lowest one is kept. --order and --strategy select a SimpleFit
variant by its policies instead of by name.`,
		Example: `  packbench solve --input items.csv --strip 100
  packbench solve -i parts.xlsx -s 2440 -a ea --output layout.pdf --archive
  packbench solve -i items.csv -s 100 -a NextFit,FirstFit,ea
  packbench solve -i items.csv -s 100 --order next-item --strategy shift-rightmost`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "item list (.csv, .xlsx, .dxf)")
	cmd.Flags().IntVarP(&opts.stripWidth, "strip", "s", 0, "strip width")
	cmd.Flags().StringSliceVarP(&opts.algorithms, "algorithm", "a", []string{"FirstFit"}, "algorithms: "+strings.Join(engine.Names(), ", ")+", ea; several are compared")
	cmd.Flags().StringVar(&opts.order, "order", "first-fit", "SimpleFit item order: next-item, first-fit")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "default", "SimpleFit placement strategy: default, shift-rightmost")
	cmd.Flags().StringVar(&opts.bound, "bound", "", "lower bound used for the gap and by ea (default from config)")
	cmd.Flags().DurationVar(&opts.timeLimit, "time-limit", 0, "time limit (default from config, 0 = unlimited)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "save the result to the archive directory")
	cmd.Flags().StringSliceVarP(&opts.outputs, "output", "o", nil, "layout files to write (.pdf, .png, .dxf, .nc, labels.pdf)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print placements")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("strip")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, cmd *cobra.Command, opts solveOptions) error {
	logger := loggerFromContext(ctx)

	if !cmd.Flags().Changed("time-limit") {
		opts.timeLimit = c.config.TimeLimit.Duration
	}
	if opts.bound == "" {
		opts.bound = c.config.LowerBound
	}
	bound, err := bounds.ByName(opts.bound)
	if err != nil {
		return err
	}

	in, labels, err := loadItems(logger, opts.input, opts.stripWidth)
	if err != nil {
		return err
	}

	algorithms, err := c.solveAlgorithms(cmd, opts, bound)
	if err != nil {
		return err
	}

	var (
		name string
		out  *model.Output
		lb   int
	)
	if len(algorithms) == 1 {
		name = algorithms[0].Name()
		out, lb, err = c.solveOne(ctx, algorithms[0], in, bound, opts.timeLimit)
	} else {
		name, out, lb, err = c.compare(ctx, algorithms, in, bound, opts.timeLimit)
	}
	if err != nil {
		return err
	}

	logger.Info("Result", "algorithm", name, "height", out.Objective(), "bound", bound.Name(), "lower", lb,
		"gap", fmt.Sprintf("%.2f%%", engine.Gap(out.Objective(), lb)))

	if !opts.quiet {
		fmt.Fprintln(c.Out, out.String())
	}
	fmt.Fprintf(c.Out, "height %d (lower bound %d)\n", out.Objective(), lb)

	result := export.Result{Algorithm: name, Output: out, LowerBound: lb, Labels: labels}
	for _, path := range opts.outputs {
		if err := c.writeLayout(ctx, path, result); err != nil {
			return err
		}
		logger.Info("Wrote layout", "file", path)
	}

	if opts.archive {
		path, err := project.SaveRun(c.config.ArchiveDir, project.NewRunRecord(name, out, lb))
		if err != nil {
			return err
		}
		logger.Info("Archived run", "file", path)
		fmt.Fprintf(c.Out, "archived %s\n", path)
	}
	return nil
}

// solveAlgorithms resolves --algorithm, or builds a SimpleFit from --order
// and --strategy when either is given.
func (c *CLI) solveAlgorithms(cmd *cobra.Command, opts solveOptions, bound bounds.LowerBound) ([]engine.Algorithm, error) {
	flags := cmd.Flags()
	if !flags.Changed("order") && !flags.Changed("strategy") {
		return c.resolveAlgorithms(opts.algorithms, bound)
	}
	if flags.Changed("algorithm") {
		return nil, errors.New("--algorithm cannot be combined with --order or --strategy")
	}
	order, err := engine.ParseItemOrder(opts.order)
	if err != nil {
		return nil, err
	}
	strategy, err := engine.ParsePlacementStrategy(opts.strategy)
	if err != nil {
		return nil, err
	}
	return []engine.Algorithm{engine.NewSimpleFit(order, strategy)}, nil
}

// solveOne runs alg under the time limit and computes the lower bound.
func (c *CLI) solveOne(ctx context.Context, alg engine.Algorithm, in *model.Instance, bound bounds.LowerBound, limit time.Duration) (*model.Output, int, error) {
	p := newProgress(loggerFromContext(ctx))
	out, info := runner.Run(ctx, alg, in, limit)
	if info.Result != model.RunOK {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		if info.Err != nil {
			return nil, 0, fmt.Errorf("%s: %s: %w", alg.Name(), info.Result, info.Err)
		}
		return nil, 0, fmt.Errorf("%s: %s after %s", alg.Name(), info.Result, info.Elapsed.Round(time.Millisecond))
	}
	if v := verify.Strip(in, out); v.Result != model.ResultValid {
		return nil, 0, fmt.Errorf("%s produced an invalid packing: %s", alg.Name(), v.Comment)
	}
	p.done(fmt.Sprintf("Packed %d items with %s", in.Len(), alg.Name()))

	lb, _ := runner.RunBound(ctx, bound, in, limit)
	return out, lb, nil
}

// compare runs every algorithm on in, prints one line per algorithm and
// returns the lowest valid packing. The time limit applies per algorithm.
func (c *CLI) compare(ctx context.Context, algorithms []engine.Algorithm, in *model.Instance, bound bounds.LowerBound, limit time.Duration) (string, *model.Output, int, error) {
	logger := loggerFromContext(ctx)
	runCtx := ctx
	if limit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, limit*time.Duration(len(algorithms)))
		defer cancel()
	}

	p := newProgress(logger)
	results := engine.CompareAlgorithms(runCtx, algorithms, in, bound)
	var errs []error
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			if v := verify.Strip(in, r.Output); v.Result != model.ResultValid {
				r.Err = fmt.Errorf("invalid packing: %s", v.Comment)
			}
		}
		if r.Err != nil {
			logger.Warn("Algorithm failed", "algorithm", r.Algorithm, "err", r.Err)
			errs = append(errs, fmt.Errorf("%s: %w", r.Algorithm, r.Err))
			fmt.Fprintf(c.Out, "%-16s failed\n", r.Algorithm)
			continue
		}
		logger.Info("Compared", "algorithm", r.Algorithm, "height", r.Objective, "gap", fmt.Sprintf("%.2f%%", r.GapPercent))
		fmt.Fprintf(c.Out, "%-16s %d\n", r.Algorithm, r.Objective)
	}

	best := engine.Best(results)
	if best < 0 {
		if err := ctx.Err(); err != nil {
			return "", nil, 0, err
		}
		return "", nil, 0, errors.Join(errs...)
	}
	r := results[best]
	p.done(fmt.Sprintf("Compared %d algorithms on %d items", len(algorithms), in.Len()))
	fmt.Fprintf(c.Out, "best %s\n", r.Algorithm)
	return r.Algorithm, r.Output, r.LowerBound, nil
}

// writeLayout writes r in the format named by path's extension; a file
// named labels*.pdf gets the QR label sheet and .nc, .ngc or .gcode a
// cutting program.
func (c *CLI) writeLayout(ctx context.Context, path string, r export.Result) error {
	var err error
	switch name := strings.ToLower(filepath.Base(path)); {
	case strings.HasPrefix(name, "labels") && strings.HasSuffix(name, ".pdf"):
		err = export.ExportLabels(path, []export.Result{r})
	case strings.HasSuffix(name, ".pdf"):
		err = export.ExportPDF(path, []export.Result{r}, nil)
	case strings.HasSuffix(name, ".png"):
		err = export.ExportPNG(path, r, pngScale(r))
	case strings.HasSuffix(name, ".dxf"):
		err = export.ExportDXF(path, r)
	case isGCode(name):
		var sum gcode.Summary
		sum, err = export.ExportGCode(path, r, c.config.Cutting)
		if err == nil {
			loggerFromContext(ctx).Info("Cutting program", "file", path, "cut", fmt.Sprintf("%.0f", sum.CutLength),
				"plunges", sum.Plunges, "time", sum.CutTime.Round(time.Second))
		}
	default:
		return fmt.Errorf("unsupported layout format %q (want .pdf, .png, .dxf or .nc)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isGCode(name string) bool {
	for _, ext := range []string{".nc", ".ngc", ".gcode"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// pngScale picks pixels per unit so the image is about 800 pixels wide.
func pngScale(r export.Result) int {
	return max(800/r.Output.Instance.StripWidth, 1)
}
