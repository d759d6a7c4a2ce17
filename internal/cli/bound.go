package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/runner"
)

var boundNames = []string{"continuous", "ccm", "dual-continuous", "dual-ccm"}

// boundCommand computes lower bounds on the strip height of an item list.
func (c *CLI) boundCommand() *cobra.Command {
	var (
		input      string
		stripWidth int
		names      []string
		timeLimit  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bound",
		Short: "Compute lower bounds for an item list",
		Long: `Compute lower bounds on the optimal strip height of an item list.

continuous divides the item area by the strip width, ccm applies the dual
feasible functions of Carlier, Clautiaux and Moukrim, and the dual- variants
bound the rotated problem.`,
		Example: `  packbench bound --input items.csv --strip 100 --bound ccm,dual-ccm`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("time-limit") {
				timeLimit = c.config.TimeLimit.Duration
			}
			return c.runBound(cmd.Context(), input, stripWidth, names, timeLimit)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "item list (.csv, .xlsx, .dxf)")
	cmd.Flags().IntVarP(&stripWidth, "strip", "s", 0, "strip width")
	cmd.Flags().StringSliceVar(&names, "bound", boundNames, "bounds: "+strings.Join(boundNames, ", "))
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "time limit per bound (default from config, 0 = unlimited)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("strip")

	return cmd
}

func (c *CLI) runBound(ctx context.Context, input string, stripWidth int, names []string, limit time.Duration) error {
	logger := loggerFromContext(ctx)

	in, _, err := loadItems(logger, input, stripWidth)
	if err != nil {
		return err
	}

	for _, name := range names {
		b, err := bounds.ByName(name)
		if err != nil {
			return err
		}
		value, info := runner.RunBound(ctx, b, in, limit)
		if info.Result != model.RunOK {
			fmt.Fprintf(c.Out, "%-22s%s\n", b.Name(), info.Result)
			continue
		}
		logger.Debug("Bound computed", "bound", b.Name(), "elapsed", info.Elapsed)
		fmt.Fprintf(c.Out, "%-22s%d\n", b.Name(), value)
	}
	return ctx.Err()
}
