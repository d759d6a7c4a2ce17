// Package generator produces benchmark instances: random instances of the
// classic Berkey-Wang and Martello-Vigo classes, and the published reference
// instance files for those classes and for Clautiaux's orthogonal packing set.
package generator

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/piwi3910/packbench/internal/model"
)

// ErrUnknownClass is returned for class numbers a family does not define.
var ErrUnknownClass = errors.New("unknown instance class")

// Identifier prefixes of the generated and reference instances.
const (
	BerkeyWangPrefix    = "bpp2d.Berkey and Wang."
	MartelloVigoPrefix  = "bpp2d.Martello and Vigo."
	ClautiauxPrefix     = "opp2d.Clautiaux."
	instancesPerClass   = 50
	berkeyWangClasses   = 6
	martelloVigoClasses = 4
)

// Class is a 1-based instance class number.
type Class int

// sizeRange bounds item dimensions.
type sizeRange struct {
	minWidth, maxWidth   int
	minHeight, maxHeight int
}

func (r sizeRange) draw(rng *rand.Rand) model.Item {
	return model.Item{
		Width:  rng.Intn(r.maxWidth-r.minWidth+1) + r.minWidth,
		Height: rng.Intn(r.maxHeight-r.minHeight+1) + r.minHeight,
	}
}

// berkeyWangClass is item size ranges and bin size of one class.
type berkeyWangClass struct {
	items     sizeRange
	binWidth  int
	binHeight int
}

var berkeyWang = map[Class]berkeyWangClass{
	1: {sizeRange{1, 10, 1, 10}, 10, 10},
	2: {sizeRange{1, 10, 1, 10}, 30, 30},
	3: {sizeRange{1, 35, 1, 35}, 40, 40},
	4: {sizeRange{1, 35, 1, 35}, 100, 100},
	5: {sizeRange{1, 100, 1, 100}, 100, 100},
	6: {sizeRange{1, 100, 1, 100}, 300, 300},
}

// BerkeyWang generates random instances of Berkey and Wang's classes I-VI.
// Every instance gets its own seed drawn from the generator's seed source,
// so a generator built with the same seed reproduces the same sequence.
type BerkeyWang struct {
	seeds *rand.Rand
}

// NewBerkeyWang creates a generator seeded with seed.
func NewBerkeyWang(seed int64) *BerkeyWang {
	return &BerkeyWang{seeds: rand.New(rand.NewSource(seed))}
}

// Instance generates one instance of n items.
func (g *BerkeyWang) Instance(n int, class Class) (*model.BinInstance, error) {
	c, ok := berkeyWang[class]
	if !ok {
		return nil, fmt.Errorf("%w: Berkey and Wang class %d", ErrUnknownClass, class)
	}
	seed := g.seeds.Int63()
	rng := rand.New(rand.NewSource(seed))
	items := make([]model.Item, n)
	for i := range items {
		items[i] = c.items.draw(rng)
	}
	return model.NewBinInstance(fmt.Sprintf("%srandom.%d", BerkeyWangPrefix, seed), c.binWidth, c.binHeight, items)
}

// Instances generates count instances of n items.
func (g *BerkeyWang) Instances(count, n int, class Class) ([]*model.BinInstance, error) {
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

// Classes returns the number of Berkey and Wang classes.
func (g *BerkeyWang) Classes() int { return berkeyWangClasses }

// Generator produces random bin packing instances of one family.
type Generator interface {
	Instance(n int, class Class) (*model.BinInstance, error)
	Instances(count, n int, class Class) ([]*model.BinInstance, error)
	Classes() int
}

// New returns the random generator of a family: "bw" for Berkey and Wang
// or "mv" for Martello and Vigo.
func New(family string, seed int64) (Generator, error) {
	switch family {
	case "bw":
		return NewBerkeyWang(seed), nil
	case "mv":
		return NewMartelloVigo(seed), nil
	}
	return nil, fmt.Errorf("unknown random family %q (want bw or mv)", family)
}
