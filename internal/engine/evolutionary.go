package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/piwi3910/packbench/internal/model"
)

// Bounder computes a lower bound on the objective of an instance.
type Bounder interface {
	Compute(in *model.Instance) int
}

// Selection decides where the next population is drawn from.
type Selection int

const (
	// SelectNewOnly is the (mu, lambda) strategy: parents are discarded.
	SelectNewOnly Selection = iota
	// SelectNewAndBest is the (mu + lambda) strategy: parents compete with
	// their children.
	SelectNewAndBest
)

func (s Selection) String() string {
	if s == SelectNewAndBest {
		return "plus"
	}
	return "comma"
}

// ParseSelection accepts "comma" or "plus".
func ParseSelection(s string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comma", "new", "":
		return SelectNewOnly, nil
	case "plus", "new-and-best":
		return SelectNewAndBest, nil
	}
	return SelectNewOnly, fmt.Errorf("unknown selection %q", s)
}

// EvolutionConfig holds parameters for the evolutionary search.
type EvolutionConfig struct {
	Mu             int
	Lambda         int
	Selection      Selection
	Seed           int64
	MaxGenerations int // 0 runs until the bound is reached or ctx is done
}

// DefaultEvolutionConfig returns sensible default parameters.
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		Mu:        10,
		Lambda:    40,
		Selection: SelectNewAndBest,
		Seed:      42,
	}
}

// Validate rejects population sizes the search cannot work with.
func (c EvolutionConfig) Validate() error {
	if c.Mu <= 0 || c.Lambda <= 0 {
		return fmt.Errorf("mu and lambda must be positive, got mu=%d lambda=%d", c.Mu, c.Lambda)
	}
	if c.Selection == SelectNewOnly && c.Lambda < c.Mu {
		return fmt.Errorf("lambda (%d) must be at least mu (%d) when parents are discarded", c.Lambda, c.Mu)
	}
	if c.MaxGenerations < 0 {
		return fmt.Errorf("max generations must not be negative, got %d", c.MaxGenerations)
	}
	return nil
}

// chromosome is an item order together with its decoded packing.
type chromosome struct {
	perm      []int
	solution  *model.Output
	objective int
}

// Evolutionary searches item orders with a (mu, lambda) or (mu + lambda)
// evolution strategy. Each order is decoded by running Decoder on the
// permuted instance. The search ends when the best objective meets the
// lower bound, after MaxGenerations, or when ctx is cancelled; in the last
// case the best packing found so far is returned.
type Evolutionary struct {
	Decoder Algorithm
	Bound   Bounder
	Config  EvolutionConfig
}

// NewEvolutionary creates an evolutionary search around decoder.
func NewEvolutionary(decoder Algorithm, bound Bounder, config EvolutionConfig) *Evolutionary {
	return &Evolutionary{Decoder: decoder, Bound: bound, Config: config}
}

// Name returns MuLambdaEA(<decoder>).
func (e *Evolutionary) Name() string {
	return "MuLambdaEA(" + e.Decoder.Name() + ")"
}

// Solve runs the search and returns the best packing in the order of in.
func (e *Evolutionary) Solve(ctx context.Context, in *model.Instance) (*model.Output, error) {
	if err := e.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}

	rng := rand.New(rand.NewSource(e.Config.Seed))
	bound := 0
	if e.Bound != nil {
		bound = e.Bound.Compute(in)
	}

	population := make([]chromosome, 0, e.Config.Mu)
	for i := 0; i < e.Config.Mu; i++ {
		c, err := e.decode(ctx, in, rng.Perm(in.Len()))
		if err != nil {
			if len(population) > 0 && isCancellation(err) {
				break
			}
			return nil, err
		}
		population = append(population, c)
	}
	sortPopulation(population)

	for gen := 0; e.Config.MaxGenerations == 0 || gen < e.Config.MaxGenerations; gen++ {
		if model.CompareObjective(float64(bound), float64(population[0].objective)) == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		children, err := e.breed(ctx, in, rng, population)
		if err != nil {
			if isCancellation(err) {
				break
			}
			return nil, err
		}
		population = e.selectBest(children, population)
	}

	best := population[0]
	out := best.solution.Permute(model.InversePermutation(best.perm))
	out.Instance = in
	return out, nil
}

// breed creates lambda children, each a mutated copy of a random parent.
func (e *Evolutionary) breed(ctx context.Context, in *model.Instance, rng *rand.Rand, population []chromosome) ([]chromosome, error) {
	children := make([]chromosome, 0, e.Config.Lambda+len(population))
	for i := 0; i < e.Config.Lambda; i++ {
		parent := population[rng.Intn(len(population))]
		child, err := e.decode(ctx, in, mutate(rng, parent.perm))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// selectBest keeps the mu best of the candidates.
func (e *Evolutionary) selectBest(children, parents []chromosome) []chromosome {
	if e.Config.Selection == SelectNewAndBest {
		children = append(children, parents...)
	}
	sortPopulation(children)
	if len(children) > e.Config.Mu {
		children = children[:e.Config.Mu]
	}
	return children
}

func (e *Evolutionary) decode(ctx context.Context, in *model.Instance, perm []int) (chromosome, error) {
	out, err := e.Decoder.Solve(ctx, in.Permute(perm))
	if err != nil {
		return chromosome{}, err
	}
	return chromosome{perm: perm, solution: out, objective: out.Objective()}, nil
}

// mutate returns a copy of perm with two random transpositions applied.
func mutate(rng *rand.Rand, perm []int) []int {
	child := make([]int, len(perm))
	copy(child, perm)
	for i := 0; i < 2; i++ {
		a := rng.Intn(len(child))
		b := rng.Intn(len(child))
		child[a], child[b] = child[b], child[a]
	}
	return child
}

func sortPopulation(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return model.CompareObjective(float64(population[i].objective), float64(population[j].objective)) < 0
	})
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
