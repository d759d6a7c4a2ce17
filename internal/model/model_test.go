package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"spp2d.bw.Class 1.01", true},
		{"single", true},
		{"", false},
		{".leading", false},
		{"trailing.", false},
		{"a..b", false},
	}
	for _, tt := range tests {
		err := ValidateIdentifier(tt.id)
		if tt.valid {
			assert.NoError(t, err, tt.id)
		} else {
			assert.ErrorIs(t, err, ErrInvalidIdentifier, tt.id)
		}
	}
}

func TestNewInstance_CopiesItems(t *testing.T) {
	items := []Item{{Width: 2, Height: 3}}
	in, err := NewInstance("test", 10, items)
	require.NoError(t, err)

	items[0].Width = 99
	assert.Equal(t, 2, in.Items[0].Width)
}

func TestInstanceValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Instance
		ok   bool
	}{
		{"ok", Instance{ID: "a", StripWidth: 10, Items: []Item{{10, 1}, {1, 1}}}, true},
		{"empty", Instance{ID: "a", StripWidth: 10}, false},
		{"zero strip", Instance{ID: "a", StripWidth: 0, Items: []Item{{1, 1}}}, false},
		{"too wide", Instance{ID: "a", StripWidth: 10, Items: []Item{{11, 1}}}, false},
		{"zero height", Instance{ID: "a", StripWidth: 10, Items: []Item{{1, 0}}}, false},
		{"negative width", Instance{ID: "a", StripWidth: 10, Items: []Item{{-1, 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidInstance))
		})
	}
}

func TestInstancePermute(t *testing.T) {
	in := &Instance{ID: "p", StripWidth: 10, Items: []Item{{1, 1}, {2, 2}, {3, 3}}}
	p := in.Permute([]int{2, 0, 1})

	assert.Equal(t, []Item{{3, 3}, {1, 1}, {2, 2}}, p.Items)
	assert.Equal(t, []Item{{1, 1}, {2, 2}, {3, 3}}, in.Items, "original must be untouched")
}

func TestOutputObjectiveAndPermute(t *testing.T) {
	in := &Instance{ID: "o", StripWidth: 10, Items: []Item{{6, 2}, {6, 2}, {4, 3}}}
	out := NewOutput(in, []Placement{{0, 0}, {0, 2}, {6, 0}})
	assert.Equal(t, 4, out.Objective())
	assert.Equal(t, "(0, 0), (0, 2), (6, 0)", out.String())

	perm := []int{2, 0, 1}
	permuted := out.Permute(perm)
	back := permuted.Permute(InversePermutation(perm))
	assert.Equal(t, out.Placements, back.Placements)
	assert.Equal(t, in.Items, back.Instance.Items)
	assert.Equal(t, 4, permuted.Objective())
}

func TestCompareObjective(t *testing.T) {
	assert.Equal(t, 0, CompareObjective(10, 10))
	assert.Equal(t, 0, CompareObjective(10, 10+1e-12))
	assert.Equal(t, -1, CompareObjective(9, 10))
	assert.Equal(t, 1, CompareObjective(11, 10))
	assert.Equal(t, 0, CompareObjective(0, 0))
}

func TestStripIdentifier(t *testing.T) {
	assert.Equal(t, "spp2d.Clautiaux.E00N10", StripIdentifier("opp2d.Clautiaux.E00N10"))
	assert.Equal(t, "spp2d.Berkey and Wang.Class 1.01", StripIdentifier("bpp2d.Berkey and Wang.Class 1.01"))
	assert.Equal(t, "custom.run", StripIdentifier("custom.run"))
}

func TestBinInstanceToStrip(t *testing.T) {
	b, err := NewBinInstance("opp2d.x.1", 20, 30, []Item{{5, 5}})
	require.NoError(t, err)

	s := b.ToStrip()
	assert.Equal(t, "spp2d.x.1", s.ID)
	assert.Equal(t, 20, s.StripWidth)
	assert.Equal(t, b.Items, s.Items)
}

func TestBinOutputObjective(t *testing.T) {
	out := &BinOutput{Solved: true, Placements: []BinPlacement{{Bin: 0}, {Bin: 2}, {Bin: 1}}}
	assert.Equal(t, 3, out.Objective())

	out.Solved = false
	assert.Equal(t, 0, out.Objective())
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1500ms")))
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestSingleBinOutput(t *testing.T) {
	b := &BinInstance{ID: "opp2d.t", BinWidth: 4, BinHeight: 3, Items: []Item{{Width: 4, Height: 2}, {Width: 2, Height: 1}}}
	strip := b.ToStrip()

	fits := SingleBinOutput(b, NewOutput(strip, []Placement{{X: 0, Y: 0}, {X: 1, Y: 2}}))
	assert.True(t, fits.Solved)
	assert.Equal(t, []BinPlacement{{X: 0, Y: 0}, {X: 1, Y: 2}}, fits.Placements)
	assert.Equal(t, 1, fits.Objective())

	tooHigh := SingleBinOutput(b, NewOutput(strip, []Placement{{X: 0, Y: 0}, {X: 0, Y: 3}}))
	assert.False(t, tooHigh.Solved)
	assert.Equal(t, 0, tooHigh.Objective())
}
