package engine

import (
	"fmt"
	"strings"
)

// ItemOrder selects which item is tried against a free segment.
type ItemOrder int

const (
	// NextItem takes items strictly in input order and never skips one.
	NextItem ItemOrder = iota
	// FirstFit takes the lowest-indexed remaining item that fits.
	FirstFit
)

func (o ItemOrder) String() string {
	switch o {
	case FirstFit:
		return "first-fit"
	default:
		return "next-item"
	}
}

// ParseItemOrder accepts "next-item" or "first-fit".
func ParseItemOrder(s string) (ItemOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next-item", "next", "next_item":
		return NextItem, nil
	case "first-fit", "first", "first_fit":
		return FirstFit, nil
	}
	return NextItem, fmt.Errorf("unknown item order %q", s)
}

// PlacementStrategy is an optional correction applied once a free segment
// has been filled.
type PlacementStrategy int

const (
	// Default leaves every item at its bottom-left position.
	Default PlacementStrategy = iota
	// ShiftRightmost moves the last item of the rightmost segment flush
	// against the right edge of the strip.
	ShiftRightmost
)

func (p PlacementStrategy) String() string {
	switch p {
	case ShiftRightmost:
		return "shift-rightmost"
	default:
		return "default"
	}
}

// ParsePlacementStrategy accepts "default" or "shift-rightmost".
func ParsePlacementStrategy(s string) (PlacementStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default", "":
		return Default, nil
	case "shift-rightmost", "shift", "shift_rightmost":
		return ShiftRightmost, nil
	}
	return Default, fmt.Errorf("unknown placement strategy %q", s)
}
