package importer

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/yofu/dxf"

	"github.com/piwi3910/packbench/internal/model"
)

func TestSizeOf(t *testing.T) {
	if got := sizeOf(10.0000000001, 4.2); got != (model.Item{Width: 10, Height: 5}) {
		t.Errorf("expected 10x5, got %+v", got)
	}
}

func TestChainSegments_ClosedAndOpen(t *testing.T) {
	square := []segment{
		{point{0, 0}, point{4, 0}},
		{point{0, 3}, point{4, 3}}, // reversed direction
		{point{4, 0}, point{4, 3}},
		{point{0, 3}, point{0, 0}},
	}
	open := []segment{
		{point{10, 10}, point{12, 10}},
		{point{12, 10}, point{12, 15}},
	}

	outlines := chainSegments(append(open, square...), 0.01)
	if len(outlines) != 1 {
		t.Fatalf("expected 1 closed outline, got %d", len(outlines))
	}
	min, max := outlines[0].boundingBox()
	if max.X-min.X != 4 || max.Y-min.Y != 3 {
		t.Errorf("expected 4x3 bounding box, got %v..%v", min, max)
	}
	if a := outlineArea(outlines[0]); a != 12 {
		t.Errorf("expected area 12, got %v", a)
	}
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	// Bulge 1 is a half circle over the chord
	pts := bulgeArcPoints(point{0, 0}, point{10, 0}, 1, 32)
	min, max := pts.boundingBox()

	if math.Abs(max.X-min.X-10) > 1e-6 {
		t.Errorf("expected width 10, got %v", max.X-min.X)
	}
	if math.Abs(max.Y-min.Y-5) > 1e-6 {
		t.Errorf("expected height 5, got %v", max.Y-min.Y)
	}
}

func TestImportDXF_Shapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.dxf")

	d := dxf.NewDrawing()
	if _, err := d.LwPolyline(true, []float64{0, 0}, []float64{20, 0}, []float64{20, 10}, []float64{0, 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Circle(50, 50, 0, 3); err != nil {
		t.Fatal(err)
	}
	lines := [][4]float64{{100, 0, 105, 0}, {105, 0, 105, 7.5}, {105, 7.5, 100, 7.5}, {100, 7.5, 100, 0}}
	for _, l := range lines {
		if _, err := d.Line(l[0], l[1], 0, l[2], l[3], 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	result := ImportDXF(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := []model.Item{{Width: 20, Height: 10}, {Width: 6, Height: 6}, {Width: 5, Height: 8}}
	if len(result.Items) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), result.Items)
	}
	for i := range want {
		if result.Items[i] != want[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, want[i], result.Items[i])
		}
	}
	if result.Labels[0] != "DXF Item 1" {
		t.Errorf("unexpected label %q", result.Labels[0])
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	if r := ImportDXF(filepath.Join(t.TempDir(), "missing.dxf")); len(r.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
