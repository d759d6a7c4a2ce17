// Package bounds computes lower bounds on the height of strip packings.
//
// A bound is only meaningful for valid instances; callers are expected to
// run model.Instance.Validate first.
package bounds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/packbench/internal/model"
)

// ErrUnknownBound is returned by ByName for names it cannot resolve.
var ErrUnknownBound = errors.New("unknown lower bound")

// LowerBound computes a value no packing of the instance can beat.
type LowerBound interface {
	Name() string
	Compute(in *model.Instance) int
}

// ceilDiv returns ceil(a / b) for a >= 0 and b > 0.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b > 0 {
		q++
	}
	return q
}

// Continuous is the area bound ceil(sum(w*h) / W).
type Continuous struct{}

func (Continuous) Name() string { return "Continuous" }

func (Continuous) Compute(in *model.Instance) int {
	return ceilDiv(in.TotalArea(), in.StripWidth)
}

// CCM is the Carlier-Clautiaux-Moukrim bound: the continuous bound of the
// instance after item widths are mapped through the dual-feasible function
// f_k, maximized over every k in [1, W].
type CCM struct{}

func (CCM) Name() string { return "CCM" }

func (CCM) Compute(in *model.Instance) int {
	best := 0
	for k := 1; k <= in.StripWidth; k++ {
		best = max(best, ccmBound(in, k))
	}
	return best
}

func ccmBound(in *model.Instance, k int) int {
	c := in.StripWidth
	capacity := 2 * (c / k)
	if capacity == 0 {
		return 0
	}
	area := 0
	for _, it := range in.Items {
		area += it.Height * ccmFunction(it.Width, c, k)
	}
	return ceilDiv(area, capacity)
}

// ccmFunction is the dual-feasible function f_k(x) for capacity c.
func ccmFunction(x, c, k int) int {
	switch {
	case 2*x > c:
		return 2 * (c/k - (c-x)/k)
	case 2*x == c:
		return c / k
	default:
		return 2 * (x / k)
	}
}

// Dual applies Nested to the instance rotated by 90 degrees. Starting from
// the nested bound H of the original, it searches the smallest strip width
// H' >= H for which the rotated instance could fit into height W.
type Dual struct {
	Nested LowerBound
}

func (d Dual) Name() string { return "Dual(" + d.Nested.Name() + ")" }

func (d Dual) Compute(in *model.Instance) int {
	bound := d.Nested.Compute(in)
	rotated := make([]model.Item, len(in.Items))
	for i, it := range in.Items {
		rotated[i] = it.Rotated()
	}
	for {
		dual := &model.Instance{ID: in.ID, StripWidth: bound, Items: rotated}
		if d.Nested.Compute(dual) <= in.StripWidth {
			return bound
		}
		bound++
	}
}

// ByName resolves continuous, ccm, dual-continuous or dual-ccm.
func ByName(name string) (LowerBound, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "continuous":
		return Continuous{}, nil
	case "ccm":
		return CCM{}, nil
	case "dual-continuous":
		return Dual{Nested: Continuous{}}, nil
	case "dual-ccm", "":
		return Dual{Nested: CCM{}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBound, name)
}
