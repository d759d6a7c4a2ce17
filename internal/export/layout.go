// Package export renders packing results and benchmark statistics to PDF,
// QR label sheets, DXF, PNG, CNC cutting programs and Excel workbooks.
package export

import (
	"errors"
	"fmt"

	"github.com/piwi3910/packbench/internal/model"
)

// ErrNothingToExport is returned when an exporter gets no results.
var ErrNothingToExport = errors.New("nothing to export")

// Result is a packing to render. Labels and LowerBound are optional.
type Result struct {
	Algorithm  string
	Output     *model.Output
	LowerBound int
	Labels     []string
}

// Label returns the name of item i.
func (r Result) Label(i int) string {
	if i < len(r.Labels) && r.Labels[i] != "" {
		return r.Labels[i]
	}
	return fmt.Sprintf("#%d", i)
}

// Height returns the used strip height, at least 1 so empty layouts still
// have a drawable area.
func (r Result) Height() int {
	return max(r.Output.Objective(), 1)
}

// Efficiency returns the item area as a percentage of the used strip area.
func (r Result) Efficiency() float64 {
	in := r.Output.Instance
	return float64(in.TotalArea()) * 100 / float64(in.StripWidth*r.Height())
}

func (r Result) validate() error {
	if r.Output == nil || r.Output.Instance == nil {
		return fmt.Errorf("%w: result without output", ErrNothingToExport)
	}
	if len(r.Output.Placements) != len(r.Output.Instance.Items) {
		return fmt.Errorf("%s: %d placements for %d items", r.Output.Instance.ID,
			len(r.Output.Placements), len(r.Output.Instance.Items))
	}
	return nil
}

// itemColor represents an RGB color for a placed item.
type itemColor struct {
	R, G, B uint8
}

// itemColors is the palette cycled over items in every renderer.
var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorOf(i int) itemColor {
	return itemColors[i%len(itemColors)]
}
