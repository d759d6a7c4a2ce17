package model

import "strings"

// Problem families understood by the identifier converter.
const (
	FamilyStrip       = "spp2d"
	FamilyBinPacking  = "bpp2d"
	FamilyOrthogonal  = "opp2d"
	identifierDivider = "."
)

// BinInstance is a bin packing (bpp2d) or orthogonal packing (opp2d) input:
// items packed into bins of BinWidth x BinHeight.
type BinInstance struct {
	ID        string `json:"id"`
	BinWidth  int    `json:"bin_width"`
	BinHeight int    `json:"bin_height"`
	Items     []Item `json:"items"`
}

// NewBinInstance creates a bin instance after checking the identifier.
func NewBinInstance(id string, binWidth, binHeight int, items []Item) (*BinInstance, error) {
	if err := ValidateIdentifier(id); err != nil {
		return nil, err
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return &BinInstance{ID: id, BinWidth: binWidth, BinHeight: binHeight, Items: cp}, nil
}

// ToStrip converts the instance into a strip packing instance of the bin
// width. The leading family segment of the identifier becomes spp2d.
func (b *BinInstance) ToStrip() *Instance {
	items := make([]Item, len(b.Items))
	copy(items, b.Items)
	return &Instance{ID: StripIdentifier(b.ID), StripWidth: b.BinWidth, Items: items}
}

// StripIdentifier replaces the first bpp2d or opp2d segment of id with spp2d.
func StripIdentifier(id string) string {
	parts := strings.Split(id, identifierDivider)
	for i, p := range parts {
		if p == FamilyBinPacking || p == FamilyOrthogonal {
			parts[i] = FamilyStrip
			break
		}
	}
	return strings.Join(parts, identifierDivider)
}

// ConvertAll converts a list of bin instances to strip instances.
func ConvertAll(bins []*BinInstance) []*Instance {
	out := make([]*Instance, 0, len(bins))
	for _, b := range bins {
		out = append(out, b.ToStrip())
	}
	return out
}

// BinPlacement positions an item inside a numbered bin.
type BinPlacement struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Bin int `json:"bin"`
}

// BinOutput is a packing of a bin instance. An orthogonal packing output may
// report that no solution exists by leaving Solved false.
type BinOutput struct {
	Instance   *BinInstance   `json:"instance"`
	Placements []BinPlacement `json:"placements"`
	Solved     bool           `json:"solved"`
}

// Objective returns the number of bins used.
func (o *BinOutput) Objective() int {
	if !o.Solved {
		return 0
	}
	maxBin := -1
	for _, p := range o.Placements {
		if p.Bin > maxBin {
			maxBin = p.Bin
		}
	}
	return maxBin + 1
}

// SingleBinOutput reads a strip packing of b as a packing into the first
// bin. It is solved only when the strip height does not exceed the bin
// height.
func SingleBinOutput(b *BinInstance, out *Output) *BinOutput {
	placements := make([]BinPlacement, len(out.Placements))
	for i, p := range out.Placements {
		placements[i] = BinPlacement{X: p.X, Y: p.Y}
	}
	return &BinOutput{Instance: b, Placements: placements, Solved: out.Objective() <= b.BinHeight}
}
