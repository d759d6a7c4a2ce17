// Package verify checks packings independently of the algorithms that
// produced them. Every check is a plain O(n²) pairwise scan so that it
// shares no structure with the packers it validates.
package verify

import (
	"sort"

	"github.com/piwi3910/packbench/internal/model"
)

// rect is an axis-aligned rectangle [xl, xr) x [yl, yr).
type rect struct {
	xl, xr, yl, yr int
}

func newRect(x, y int, it model.Item) rect {
	return rect{xl: x, xr: x + it.Width, yl: y, yr: y + it.Height}
}

// intersects reports whether the interiors of a and b overlap.
func (a rect) intersects(b rect) bool {
	xl := max(a.xl, b.xl)
	xr := max(min(a.xr, b.xr), xl)
	yl := max(a.yl, b.yl)
	yr := max(min(a.yr, b.yr), yl)
	return (xr-xl)*(yr-yl) > 0
}

// Strip verifies a strip packing: one placement per item, every item inside
// [0, StripWidth) x [0, inf), and no two items overlapping.
func Strip(in *model.Instance, out *model.Output) model.Verdict {
	if out == nil {
		return model.Invalid("Output is nil")
	}
	if len(in.Items) != len(out.Placements) {
		return model.Invalid("Input and output have different number of items: %d vs %d", len(in.Items), len(out.Placements))
	}

	rects := make([]rect, len(in.Items))
	for i, it := range in.Items {
		p := out.Placements[i]
		if p.X < 0 || p.X+it.Width > in.StripWidth || p.Y < 0 {
			return model.Invalid("Item #%d does not fit into the strip", i)
		}
		rects[i] = newRect(p.X, p.Y, it)
	}
	if i, j, ok := firstOverlap(rects); ok {
		return model.Invalid("Items #%d and #%d intersect", i, j)
	}
	return model.Valid()
}

// Bin verifies a bin or orthogonal packing: every item inside its bin and
// no two items of the same bin overlapping. An output that reports no
// solution is accepted as is.
func Bin(in *model.BinInstance, out *model.BinOutput) model.Verdict {
	if out == nil {
		return model.Invalid("Output is nil")
	}
	if !out.Solved {
		return model.Valid()
	}
	if len(in.Items) != len(out.Placements) {
		return model.Invalid("Input and output have different number of items: %d vs %d", len(in.Items), len(out.Placements))
	}

	byBin := make(map[int][]int)
	rects := make([]rect, len(in.Items))
	for i, it := range in.Items {
		p := out.Placements[i]
		if p.Bin < 0 || p.X < 0 || p.X+it.Width > in.BinWidth || p.Y < 0 || p.Y+it.Height > in.BinHeight {
			return model.Invalid("Item #%d does not fit into the bin", i)
		}
		rects[i] = newRect(p.X, p.Y, it)
		byBin[p.Bin] = append(byBin[p.Bin], i)
	}
	bins := make([]int, 0, len(byBin))
	for bin := range byBin {
		bins = append(bins, bin)
	}
	sort.Ints(bins)
	for _, bin := range bins {
		ids := byBin[bin]
		for a := 0; a < len(ids); a++ {
			for b := a + 1; b < len(ids); b++ {
				if rects[ids[a]].intersects(rects[ids[b]]) {
					i, j := min(ids[a], ids[b]), max(ids[a], ids[b])
					return model.Invalid("Items #%d and #%d intersect", i, j)
				}
			}
		}
	}
	return model.Valid()
}

func firstOverlap(rects []rect) (int, int, bool) {
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].intersects(rects[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
