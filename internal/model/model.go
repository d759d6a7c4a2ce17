package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInstance is returned when an instance violates the preconditions
// of the packing algorithms.
var ErrInvalidInstance = errors.New("invalid instance")

// ErrInvalidIdentifier is returned for malformed dot-separated identifiers.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Item is a rectangle to be packed. Items are identified by their index in
// the owning instance.
type Item struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns width * height.
func (it Item) Area() int {
	return it.Width * it.Height
}

// Rotated returns the item with width and height exchanged.
func (it Item) Rotated() Item {
	return Item{Width: it.Height, Height: it.Width}
}

// Placement is the bottom-left corner of a packed item.
type Placement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Instance is a two-dimensional strip packing input: items of fixed
// orientation packed into a strip of StripWidth and unbounded height.
type Instance struct {
	ID         string `json:"id"`
	StripWidth int    `json:"strip_width"`
	Items      []Item `json:"items"`
}

// NewInstance creates an instance after checking the identifier. The items
// slice is copied.
func NewInstance(id string, stripWidth int, items []Item) (*Instance, error) {
	if err := ValidateIdentifier(id); err != nil {
		return nil, err
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return &Instance{ID: id, StripWidth: stripWidth, Items: cp}, nil
}

// ValidateIdentifier checks that id is a non-empty sequence of non-empty
// dot-separated parts.
func ValidateIdentifier(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: identifier must be non-empty", ErrInvalidIdentifier)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q must not start with dot", ErrInvalidIdentifier, id)
	case strings.HasSuffix(id, "."):
		return fmt.Errorf("%w: %q must not end with dot", ErrInvalidIdentifier, id)
	case strings.Contains(id, ".."):
		return fmt.Errorf("%w: all parts of %q must be non-empty", ErrInvalidIdentifier, id)
	}
	return nil
}

// Validate reports the first precondition the instance violates: an empty
// item list, a non-positive strip width, a non-positive item dimension or an
// item wider than the strip.
func (in *Instance) Validate() error {
	if in.StripWidth <= 0 {
		return fmt.Errorf("%w: strip width %d is not positive", ErrInvalidInstance, in.StripWidth)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidInstance)
	}
	for i, it := range in.Items {
		if it.Width <= 0 || it.Height <= 0 {
			return fmt.Errorf("%w: item #%d has non-positive size %dx%d", ErrInvalidInstance, i, it.Width, it.Height)
		}
		if it.Width > in.StripWidth {
			return fmt.Errorf("%w: item #%d width %d exceeds strip width %d", ErrInvalidInstance, i, it.Width, in.StripWidth)
		}
	}
	return nil
}

// Len returns the number of items.
func (in *Instance) Len() int {
	return len(in.Items)
}

// TotalArea returns the summed area of all items.
func (in *Instance) TotalArea() int {
	total := 0
	for _, it := range in.Items {
		total += it.Area()
	}
	return total
}

// Permute returns a copy whose i-th item is the original item perm[i].
func (in *Instance) Permute(perm []int) *Instance {
	items := make([]Item, len(perm))
	for i, id := range perm {
		items[i] = in.Items[id]
	}
	return &Instance{ID: in.ID, StripWidth: in.StripWidth, Items: items}
}

// Output is a packing of an instance: Placements[i] positions Items[i].
type Output struct {
	Instance   *Instance   `json:"instance"`
	Placements []Placement `json:"placements"`
}

// NewOutput binds placements to the instance they pack.
func NewOutput(in *Instance, placements []Placement) *Output {
	return &Output{Instance: in, Placements: placements}
}

// Objective returns the used strip height, the maximum of y + height.
func (o *Output) Objective() int {
	height := 0
	for i, p := range o.Placements {
		if top := p.Y + o.Instance.Items[i].Height; top > height {
			height = top
		}
	}
	return height
}

// Permute reorders placements and the instance items together so that the
// i-th entry of the result is the original entry perm[i].
func (o *Output) Permute(perm []int) *Output {
	placements := make([]Placement, len(perm))
	for i, id := range perm {
		placements[i] = o.Placements[id]
	}
	return &Output{Instance: o.Instance.Permute(perm), Placements: placements}
}

// String renders placements as "(x, y), (x, y)".
func (o *Output) String() string {
	var b strings.Builder
	for i, p := range o.Placements {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d, %d)", p.X, p.Y)
	}
	return b.String()
}

// InversePermutation returns q with q[perm[i]] = i.
func InversePermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, id := range perm {
		inv[id] = i
	}
	return inv
}
