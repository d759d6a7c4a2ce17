package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	layerStrip  = "STRIP"
	layerItems  = "ITEMS"
	layerLabels = "LABELS"
)

// ExportDXF writes a layout as a DXF drawing in strip units: the strip
// walls as open lines, each item as a closed polyline and its label as
// text. Re-importing the file yields the items.
func ExportDXF(path string, r Result) error {
	if err := r.validate(); err != nil {
		return err
	}
	in := r.Output.Instance
	d := dxf.NewDrawing()

	if _, err := d.AddLayer(layerStrip, color.White, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	w, h := float64(in.StripWidth), float64(r.Height())
	walls := [][4]float64{{0, h, 0, 0}, {0, 0, w, 0}, {w, 0, w, h}}
	for _, l := range walls {
		if _, err := d.Line(l[0], l[1], 0, l[2], l[3], 0); err != nil {
			return fmt.Errorf("failed to draw strip: %w", err)
		}
	}

	if _, err := d.AddLayer(layerItems, color.Cyan, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for i, p := range r.Output.Placements {
		it := in.Items[i]
		x0, y0 := float64(p.X), float64(p.Y)
		x1, y1 := x0+float64(it.Width), y0+float64(it.Height)
		if _, err := d.LwPolyline(true, []float64{x0, y0}, []float64{x1, y0}, []float64{x1, y1}, []float64{x0, y1}); err != nil {
			return fmt.Errorf("failed to draw item %d: %w", i, err)
		}
	}

	if _, err := d.AddLayer(layerLabels, color.Yellow, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for i, p := range r.Output.Placements {
		it := in.Items[i]
		size := max(min(float64(it.Width), float64(it.Height))/4, 0.1)
		if _, err := d.Text(r.Label(i), float64(p.X)+size/2, float64(p.Y)+size/2, 0, size); err != nil {
			return fmt.Errorf("failed to label item %d: %w", i, err)
		}
	}

	return d.SaveAs(path)
}
