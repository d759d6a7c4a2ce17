package generator

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBerkeyWang_ItemsWithinClassRanges(t *testing.T) {
	g := NewBerkeyWang(1)
	for class, c := range berkeyWang {
		in, err := g.Instance(100, class)
		require.NoError(t, err)

		assert.Equal(t, c.binWidth, in.BinWidth)
		assert.Equal(t, c.binHeight, in.BinHeight)
		assert.Len(t, in.Items, 100)
		assert.True(t, strings.HasPrefix(in.ID, BerkeyWangPrefix+"random."))
		for _, it := range in.Items {
			assert.GreaterOrEqual(t, it.Width, c.items.minWidth)
			assert.LessOrEqual(t, it.Width, c.items.maxWidth)
			assert.GreaterOrEqual(t, it.Height, c.items.minHeight)
			assert.LessOrEqual(t, it.Height, c.items.maxHeight)
		}
	}
}

func TestBerkeyWang_SeedReproducesSequence(t *testing.T) {
	a, err := NewBerkeyWang(42).Instances(3, 20, 3)
	require.NoError(t, err)
	b, err := NewBerkeyWang(42).Instances(3, 20, 3)
	require.NoError(t, err)

	require.Len(t, a, 3)
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
	assert.NotEqual(t, a[0].ID, a[1].ID)
}

func TestBerkeyWang_UnknownClass(t *testing.T) {
	_, err := NewBerkeyWang(1).Instance(5, 7)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestMartelloVigo_DominantItemType(t *testing.T) {
	g := NewMartelloVigo(9)
	in, err := g.Instance(1000, 1)
	require.NoError(t, err)
	assert.Equal(t, MartelloVigoBinWidth, in.BinWidth)

	// Class I favors wide items (width >= 2/3 of the bin, height <= 1/2).
	wide := 0
	for _, it := range in.Items {
		if it.Width >= 66 && it.Height <= 50 {
			wide++
		}
	}
	assert.Greater(t, wide, 600)
}

func TestMartelloVigo_UnknownClass(t *testing.T) {
	_, err := NewMartelloVigo(1).Instance(5, 5)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestPickWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	counts := make([]int, 3)
	for i := 0; i < 10000; i++ {
		counts[pickWeighted(rng, []float64{1, 0, 3})]++
	}
	assert.Zero(t, counts[1])
	assert.InDelta(t, 7500, counts[2], 300)
}

func TestReadClassified(t *testing.T) {
	data := "10 2 3 4 5 6\n 12 1 7 8\n\n20 1 1 1 30 0\n"
	byClass, err := ReadClassified(strings.NewReader(data), BerkeyWangPrefix, 2, 2)
	require.NoError(t, err)

	require.Len(t, byClass[1], 2)
	first := byClass[1][0]
	assert.Equal(t, "bpp2d.Berkey and Wang.Class 1.01", first.ID)
	assert.Equal(t, 10, first.BinWidth)
	assert.Equal(t, 10, first.BinHeight)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, 5, first.Items[1].Width)

	assert.Equal(t, "bpp2d.Berkey and Wang.Class 2.02", byClass[2][1].ID)
	assert.Empty(t, byClass[2][1].Items)
}

func TestReadClassified_Truncated(t *testing.T) {
	_, err := ReadClassified(strings.NewReader("10 2 3 4"), MartelloVigoPrefix, 1, 1)
	assert.Error(t, err)

	_, err = ReadClassified(strings.NewReader("10 x"), MartelloVigoPrefix, 1, 1)
	assert.ErrorContains(t, err, "invalid integer")
}

func TestReadClautiaux(t *testing.T) {
	data := "E00N10 20 20 2 10 20 10 20\nE02F17 20 20 1 20 20\n"
	list, err := ReadClautiaux(strings.NewReader(data))
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "opp2d.Clautiaux.E00N10", list[0].ID)
	assert.Len(t, list[0].Items, 2)
	assert.Equal(t, "spp2d.Clautiaux.E02F17", list[1].ToStrip().ID)
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()

	var b strings.Builder
	for i := 0; i < berkeyWangClasses*instancesPerClass; i++ {
		fmt.Fprintf(&b, "10 1 %d 1\n", i%10+1)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, BerkeyWangFile), []byte(b.String()), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClautiauxFile), []byte("A 5 5 1 5 5\n"), 0644))

	bw, err := LoadSuite(dir, "bw")
	require.NoError(t, err)
	require.Len(t, bw, 300)
	assert.Equal(t, "bpp2d.Berkey and Wang.Class 1.01", bw[0].ID)
	assert.Equal(t, "bpp2d.Berkey and Wang.Class 6.50", bw[299].ID)

	cl, err := LoadSuite(dir, "clautiaux")
	require.NoError(t, err)
	assert.Len(t, cl, 1)

	_, err = LoadSuite(dir, "mv")
	assert.Error(t, err, "missing file")

	_, err = LoadSuite(dir, "nope")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	bw, err := New("bw", 3)
	require.NoError(t, err)
	assert.Equal(t, 6, bw.Classes())

	mv, err := New("mv", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, mv.Classes())
	for c := Class(1); int(c) <= mv.Classes(); c++ {
		_, err := mv.Instance(5, c)
		assert.NoError(t, err)
	}

	_, err = New("zz", 3)
	assert.Error(t, err)
}
