package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/packbench/internal/export"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/project"
	"github.com/piwi3910/packbench/internal/verify"
)

// exportCommand renders archived runs.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		archive string
		format  string
		output  string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an archived run as PDF, PNG, DXF, G-code or QR labels",
		Long: `Export a run saved with 'solve --archive'. Runs are verified again before
they are rendered. With --list the archive directory is listed instead.`,
		Example: `  packbench export --archive runs/0b7e....json --format png
  packbench export --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return c.runList()
			}
			if archive == "" {
				return fmt.Errorf("--archive is required unless --list is given")
			}
			return c.runExport(cmd.Context(), archive, format, output)
		},
	}

	cmd.Flags().StringVar(&archive, "archive", "", "archived run (.json)")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "format: pdf, png, dxf, gcode, labels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <export dir>/<run id>.<ext>)")
	cmd.Flags().BoolVar(&list, "list", false, "list archived runs")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, archive, format, output string) error {
	logger := loggerFromContext(ctx)

	record, err := project.LoadRun(archive)
	if err != nil {
		return err
	}
	out := record.Output()
	if v := verify.Strip(out.Instance, out); v.Result != model.ResultValid {
		return fmt.Errorf("archived run %s is not a valid packing: %s", record.ID, v.Comment)
	}

	if output == "" {
		output = filepath.Join(c.config.ExportDir, record.ID+exportExt(format))
	}
	switch strings.ToLower(format) {
	case "pdf", "png", "dxf", "gcode":
	case "labels":
		if !strings.HasPrefix(strings.ToLower(filepath.Base(output)), "labels") {
			output = filepath.Join(filepath.Dir(output), "labels-"+filepath.Base(output))
		}
	default:
		return fmt.Errorf("unknown format %q (want pdf, png, dxf, gcode or labels)", format)
	}
	if err := ensureDir(filepath.Dir(output)); err != nil {
		return err
	}

	r := export.Result{Algorithm: record.Algorithm, Output: out, LowerBound: record.LowerBound}
	if err := c.writeLayout(ctx, output, r); err != nil {
		return err
	}
	logger.Info("Exported run", "id", record.ID, "file", output)
	fmt.Fprintln(c.Out, output)
	return nil
}

func exportExt(format string) string {
	switch strings.ToLower(format) {
	case "labels":
		return ".pdf"
	case "gcode":
		return ".nc"
	}
	return "." + strings.ToLower(format)
}

func (c *CLI) runList() error {
	records, err := project.ListRuns(c.config.ArchiveDir)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(c.Out, "%s  %s  %-16s %-40s height %d\n", r.ID, r.CreatedAt, r.Algorithm, r.Instance.ID, r.Objective)
	}
	return nil
}
