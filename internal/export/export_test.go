package export

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/importer"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/runner"
)

// sampleResult packs two items side by side in a strip of width 4:
// a 2x1 item at the origin and a 2x2 item next to it.
func sampleResult() Result {
	in := &model.Instance{ID: "spp2d.sample.1", StripWidth: 4, Items: []model.Item{{Width: 2, Height: 1}, {Width: 2, Height: 2}}}
	out := model.NewOutput(in, []model.Placement{{X: 0, Y: 0}, {X: 2, Y: 0}})
	return Result{Algorithm: "FirstFit", Output: out, LowerBound: 2, Labels: []string{"Shelf"}}
}

func collectStats(t *testing.T) *runner.StatsCollector {
	t.Helper()
	s := runner.NewScenario()
	s.AddAlgorithms(
		engine.NewSimpleFit(engine.NextItem, engine.Default),
		engine.NewSimpleFit(engine.FirstFit, engine.Default),
	)
	s.AddInputs(
		&model.Instance{ID: "spp2d.g.1", StripWidth: 10, Items: []model.Item{{Width: 6, Height: 2}, {Width: 6, Height: 2}, {Width: 4, Height: 3}}},
		&model.Instance{ID: "spp2d.g.2", StripWidth: 10, Items: []model.Item{{Width: 10, Height: 1}}},
	)
	stats := runner.NewStatsCollector(bounds.Continuous{}, nil)
	require.NoError(t, runner.NewCore(stats).Run(context.Background(), s))
	return stats
}

func assertFileStartsWith(t *testing.T, path, prefix string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), len(prefix))
	assert.Equal(t, prefix, string(data[:len(prefix)]))
}

func TestResultHelpers(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, "Shelf", r.Label(0))
	assert.Equal(t, "#1", r.Label(1))
	assert.Equal(t, 2, r.Height())
	assert.InDelta(t, 75.0, r.Efficiency(), 1e-9)
}

func TestExportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, ExportPDF(path, []Result{sampleResult()}, collectStats(t)))
	assertFileStartsWith(t, path, "%PDF")
}

func TestExportPDF_StatsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.pdf")
	require.NoError(t, ExportPDF(path, nil, collectStats(t)))
	assertFileStartsWith(t, path, "%PDF")
}

func TestExportPDF_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, ExportPDF(filepath.Join(dir, "a.pdf"), nil, nil), ErrNothingToExport)

	broken := sampleResult()
	broken.Output = model.NewOutput(broken.Output.Instance, broken.Output.Placements[:1])
	assert.Error(t, ExportPDF(filepath.Join(dir, "b.pdf"), []Result{broken}, nil))
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos([]Result{sampleResult()})
	require.Len(t, labels, 2)
	assert.Equal(t, LabelInfo{
		Label: "#1", Index: 1, Width: 2, Height: 2,
		Instance: "spp2d.sample.1", Algorithm: "FirstFit", X: 2, Y: 0,
	}, labels[1])
}

func TestExportLabels(t *testing.T) {
	dir := t.TempDir()

	// More items than fit on one sheet
	items := make([]model.Item, labelsPerPage+1)
	placements := make([]model.Placement, len(items))
	for i := range items {
		items[i] = model.Item{Width: 1, Height: 1}
		placements[i] = model.Placement{X: 0, Y: i}
	}
	in := &model.Instance{ID: "spp2d.labels.1", StripWidth: 1, Items: items}
	r := Result{Algorithm: "NextFit", Output: model.NewOutput(in, placements)}

	path := filepath.Join(dir, "labels.pdf")
	require.NoError(t, ExportLabels(path, []Result{r}))
	assertFileStartsWith(t, path, "%PDF")

	assert.ErrorIs(t, ExportLabels(filepath.Join(dir, "none.pdf"), nil), ErrNothingToExport)
}

func TestExportStatsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	require.NoError(t, ExportStatsXLSX(path, collectStats(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, inputsSheet}, f.GetSheetList())

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"Group", "Inputs", "LowerBound", "FirstFit gap %", "FirstFit best", "NextFit gap %", "NextFit best"}, summary[0])
	assert.Equal(t, "g", summary[1][0])
	assert.Equal(t, "2", summary[1][1])
	assert.Equal(t, "2", summary[1][4])
	assert.Equal(t, "1", summary[1][6])

	inputs, err := f.GetRows(inputsSheet)
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	assert.Equal(t, []string{"spp2d.g.1", "4", "4", "5"}, inputs[1])
	assert.Equal(t, []string{"spp2d.g.2", "1", "1", "1"}, inputs[2])
}

func TestExportStatsXLSX_NoStats(t *testing.T) {
	err := ExportStatsXLSX(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	assert.True(t, errors.Is(err, ErrNothingToExport))
}

func TestExportDXF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")
	r := sampleResult()
	require.NoError(t, ExportDXF(path, r))

	imported := importer.ImportDXF(path)
	require.Empty(t, imported.Errors)
	assert.Equal(t, r.Output.Instance.Items, imported.Items)
}

func TestRenderImage(t *testing.T) {
	img, err := RenderImage(sampleResult(), 1)
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())

	green := color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	blue := color.NRGBA{R: 33, G: 150, B: 243, A: 255}

	// Bottom image row is strip row 0
	assert.Equal(t, green, img.NRGBAAt(0, 1))
	assert.Equal(t, stripColor, img.NRGBAAt(0, 0))
	assert.Equal(t, blue, img.NRGBAAt(3, 0))
	assert.Equal(t, blue, img.NRGBAAt(2, 1))
}

func TestRenderImage_FitsLargeLayouts(t *testing.T) {
	in := &model.Instance{ID: "big", StripWidth: 1000, Items: []model.Item{{Width: 1000, Height: 10}}}
	r := Result{Output: model.NewOutput(in, []model.Placement{{}})}

	img, err := RenderImage(r, 4)
	require.NoError(t, err)
	assert.Equal(t, MaxImageSide, img.Bounds().Dx())
}

func TestExportPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.png")
	require.NoError(t, ExportPNG(path, sampleResult(), 10))

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestExportGCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.nc")
	settings := model.DefaultCutSettings()
	settings.ToolDiameter = 0
	settings.CutDepth = 1
	settings.PassDepth = 1

	summary, err := ExportGCode(path, sampleResult(), settings)
	require.NoError(t, err)

	// two perimeters without tool offset: 2x1 and 2x2
	assert.InDelta(t, 14, summary.CutLength, 1e-9)
	assert.Equal(t, 2, summary.Plunges)
	assert.InDelta(t, 4, summary.MaxX, 1e-9)
	assert.InDelta(t, 2, summary.MaxY, 1e-9)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Part 1: Shelf")
	assert.Contains(t, string(data), "Part 2: #1")
	assert.Contains(t, string(data), "spp2d.sample.1 FirstFit")
}

func TestExportGCode_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.nc")

	settings := model.DefaultCutSettings()
	settings.PassDepth = 0
	_, err := ExportGCode(path, sampleResult(), settings)
	assert.Error(t, err)
	assert.NoFileExists(t, path)

	_, err = ExportGCode(path, Result{}, model.DefaultCutSettings())
	assert.ErrorIs(t, err, ErrNothingToExport)
}
