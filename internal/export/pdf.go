package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/packbench/internal/runner"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 30.0
	drawAreaTop  = marginTop + headerHeight + 8.0
)

// ExportPDF writes one layout page per result followed, when stats is not
// nil, by the benchmark statistics table.
func ExportPDF(path string, results []Result, stats *runner.StatsCollector) error {
	if len(results) == 0 && stats == nil {
		return ErrNothingToExport
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, r := range results {
		if err := r.validate(); err != nil {
			return err
		}
		pdf.AddPage()
		renderLayoutPage(pdf, r)
	}

	if stats != nil {
		pdf.AddPage()
		renderStatsPage(pdf, stats)
	}

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws a strip packing on the current page. The strip
// grows upwards, so y is flipped.
func renderLayoutPage(pdf *fpdf.Fpdf, r Result) {
	in := r.Output.Instance

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %s", r.Algorithm, in.ID)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d | Strip width: %d | Height: %d | Efficiency: %.1f%%",
		in.Len(), in.StripWidth, r.Output.Objective(), r.Efficiency())
	if r.LowerBound > 0 {
		stats += fmt.Sprintf(" | Lower bound: %d", r.LowerBound)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	height := float64(r.Height())
	scale := math.Min(drawWidth/float64(in.StripWidth), drawHeight/height)
	canvasW := float64(in.StripWidth) * scale
	canvasH := height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Strip background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	if r.LowerBound > 0 && float64(r.LowerBound) <= height {
		ly := offsetY + (height-float64(r.LowerBound))*scale
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.SetDashPattern([]float64{2, 1}, 0)
		pdf.Line(offsetX, ly, offsetX+canvasW, ly)
		pdf.SetDashPattern([]float64{}, 0)
	}

	for i, p := range r.Output.Placements {
		it := in.Items[i]
		col := colorOf(i)
		pw := float64(it.Width) * scale
		ph := float64(it.Height) * scale
		px := offsetX + float64(p.X)*scale
		py := offsetY + (height-float64(p.Y+it.Height))*scale

		pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(px, py, pw, ph, "FD")

		// Label only if the rectangle is large enough
		if pw > 10 && ph > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			label := r.Label(i)
			if labelW := pdf.GetStringWidth(label); labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, in.StripWidth, r.Output.Objective(), offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds width and height labels outside the strip.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, width, height int, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("W = %d", width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("H = %d", height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// renderStatsPage draws the statistics table: average lower bound, then
// average gap and best count per algorithm.
func renderStatsPage(pdf *fpdf.Fpdf, stats *runner.StatsCollector) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Benchmark Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	algorithms := stats.Algorithms()
	nameW, lbW := 50.0, 20.0
	algW := (pageWidth - marginLeft - marginRight - nameW - lbW) / float64(max(len(algorithms), 1))
	y := marginTop + 18

	// Two header rows: algorithm names, then gap/best under each
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(nameW, 6, "Inputs", "1", 0, "L", true, 0, "")
	pdf.CellFormat(lbW, 6, "LB", "1", 0, "C", true, 0, "")
	for _, alg := range algorithms {
		pdf.CellFormat(algW, 6, alg, "1", 0, "C", true, 0, "")
	}
	y += 6
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(nameW+lbW, 6, "", "1", 0, "L", true, 0, "")
	for range algorithms {
		pdf.CellFormat(algW/2, 6, "gap", "1", 0, "C", true, 0, "")
		pdf.CellFormat(algW/2, 6, "best", "1", 0, "C", true, 0, "")
	}
	y += 6

	pdf.SetFont("Helvetica", "", 8)
	for i, row := range stats.Rows() {
		if y > pageHeight-marginBottom-6 {
			pdf.AddPage()
			y = marginTop
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		n := row.Node
		pdf.SetXY(marginLeft, y)
		name := fmt.Sprintf("%*s%s (%d)", 2*row.Depth, "", n.Name, n.Inputs)
		pdf.CellFormat(nameW, 6, name, "1", 0, "L", true, 0, "")
		pdf.CellFormat(lbW, 6, fmt.Sprintf("%.2f", n.AverageLowerBound()), "1", 0, "C", true, 0, "")
		for _, alg := range algorithms {
			pdf.CellFormat(algW/2, 6, fmt.Sprintf("%.2f%%", n.AverageGap(alg)), "1", 0, "C", true, 0, "")
			pdf.CellFormat(algW/2, 6, fmt.Sprintf("%d", n.BestCount[alg]), "1", 0, "C", true, 0, "")
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by packbench", "", 0, "C", false, 0, "")
}

// labelFontSize returns a font size fitting the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	switch minDim := math.Min(w, h); {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
