package export

import (
	"fmt"
	"os"

	"github.com/piwi3910/packbench/internal/gcode"
	"github.com/piwi3910/packbench/internal/model"
)

// ExportGCode writes a CNC program cutting every item of the layout and
// returns a summary of the written tool path.
func ExportGCode(path string, r Result, settings model.CutSettings) (gcode.Summary, error) {
	if err := r.validate(); err != nil {
		return gcode.Summary{}, err
	}
	g, err := gcode.New(settings)
	if err != nil {
		return gcode.Summary{}, fmt.Errorf("invalid cut settings: %w", err)
	}

	title := fmt.Sprintf("%s %s", r.Output.Instance.ID, r.Algorithm)
	code := g.Generate(gcode.LayoutOf(title, r.Output, r.Label))
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return gcode.Summary{}, fmt.Errorf("failed to write gcode: %w", err)
	}
	return gcode.Summarize(gcode.Parse(code)), nil
}
