package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/packbench/internal/runner"
)

const (
	summarySheet = "Summary"
	inputsSheet  = "Inputs"
)

// ExportStatsXLSX writes the statistics of a finished scenario to a
// workbook: a Summary sheet mirroring the printed table and an Inputs
// sheet with the lower bound and objective of every input per algorithm.
func ExportStatsXLSX(path string, stats *runner.StatsCollector) error {
	if stats == nil || stats.Root() == nil {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(inputsSheet); err != nil {
		return err
	}

	if err := writeSummary(f, stats); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}
	if err := writeInputs(f, stats); err != nil {
		return fmt.Errorf("failed to write inputs sheet: %w", err)
	}

	return f.SaveAs(path)
}

func writeSummary(f *excelize.File, stats *runner.StatsCollector) error {
	header := []interface{}{"Group", "Inputs", "LowerBound"}
	for _, alg := range stats.Algorithms() {
		header = append(header, alg+" gap %", alg+" best")
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range stats.Rows() {
		n := row.Node
		values := []interface{}{strings.Repeat("  ", row.Depth) + n.Name, n.Inputs, round2(n.AverageLowerBound())}
		for _, alg := range stats.Algorithms() {
			values = append(values, round2(n.AverageGap(alg)), n.BestCount[alg])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 30)
}

func writeInputs(f *excelize.File, stats *runner.StatsCollector) error {
	header := []interface{}{"Input", "LowerBound"}
	for _, alg := range stats.Algorithms() {
		header = append(header, alg)
	}
	if err := f.SetSheetRow(inputsSheet, "A1", &header); err != nil {
		return err
	}

	var err error
	rowIdx := 2
	stats.Root().Walk(func(path []string, n *runner.StatsNode) {
		if err != nil || !n.Leaf() {
			return
		}
		values := []interface{}{strings.Join(path, "."), n.LowerBoundSum}
		for _, alg := range stats.Algorithms() {
			if obj, ok := n.Objective[alg]; ok {
				values = append(values, obj)
			} else {
				values = append(values, "")
			}
		}
		var cell string
		if cell, err = excelize.CoordinatesToCellName(1, rowIdx); err != nil {
			return
		}
		err = f.SetSheetRow(inputsSheet, cell, &values)
		rowIdx++
	})
	if err != nil {
		return err
	}
	return f.SetColWidth(inputsSheet, "A", "A", 40)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
