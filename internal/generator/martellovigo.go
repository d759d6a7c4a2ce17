package generator

import (
	"fmt"
	"math/rand"

	"github.com/piwi3910/packbench/internal/model"
)

// Martello and Vigo bins are always 100 x 100.
const (
	MartelloVigoBinWidth  = 100
	MartelloVigoBinHeight = 100
)

// The four item shapes: wide, tall, large and small.
var martelloVigoItemTypes = [4]sizeRange{
	{MartelloVigoBinWidth * 2 / 3, MartelloVigoBinWidth, 1, MartelloVigoBinHeight / 2},
	{1, MartelloVigoBinWidth / 2, MartelloVigoBinHeight * 2 / 3, MartelloVigoBinHeight},
	{MartelloVigoBinWidth / 2, MartelloVigoBinWidth, MartelloVigoBinHeight / 2, MartelloVigoBinHeight},
	{1, MartelloVigoBinWidth / 2, 1, MartelloVigoBinHeight / 2},
}

// Class k draws item type k with weight 7 and every other type with weight 1.
var martelloVigo = map[Class][4]float64{
	1: {7, 1, 1, 1},
	2: {1, 7, 1, 1},
	3: {1, 1, 7, 1},
	4: {1, 1, 1, 7},
}

// MartelloVigo generates random instances of Martello and Vigo's classes
// I-IV.
type MartelloVigo struct {
	seeds *rand.Rand
}

// NewMartelloVigo creates a generator seeded with seed.
func NewMartelloVigo(seed int64) *MartelloVigo {
	return &MartelloVigo{seeds: rand.New(rand.NewSource(seed))}
}

// Instance generates one instance of n items.
func (g *MartelloVigo) Instance(n int, class Class) (*model.BinInstance, error) {
	weights, ok := martelloVigo[class]
	if !ok {
		return nil, fmt.Errorf("%w: Martello and Vigo class %d", ErrUnknownClass, class)
	}
	seed := g.seeds.Int63()
	rng := rand.New(rand.NewSource(seed))
	items := make([]model.Item, n)
	for i := range items {
		items[i] = martelloVigoItemTypes[pickWeighted(rng, weights[:])].draw(rng)
	}
	return model.NewBinInstance(fmt.Sprintf("%srandom.%d", MartelloVigoPrefix, seed),
		MartelloVigoBinWidth, MartelloVigoBinHeight, items)
}

// Instances generates count instances of n items.
func (g *MartelloVigo) Instances(count, n int, class Class) ([]*model.BinInstance, error) {
	out := make([]*model.BinInstance, 0, count)
	for i := 0; i < count; i++ {
		in, err := g.Instance(n, class)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// Classes returns the number of Martello and Vigo classes.
func (g *MartelloVigo) Classes() int { return martelloVigoClasses }

// pickWeighted returns index i with probability weights[i] / sum(weights).
func pickWeighted(rng *rand.Rand, weights []float64) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	x := rng.Float64() * sum
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}
