package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/packbench/internal/model"
)

// ErrUnknownAlgorithm is returned by ByName for names it cannot resolve.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm solves strip packing instances.
type Algorithm interface {
	// Name is the display name used in reports.
	Name() string
	// Solve packs in. Implementations stop early when ctx is cancelled.
	Solve(ctx context.Context, in *model.Instance) (*model.Output, error)
}

// SimpleFit places items bottom-left, never looking back: a free segment is
// filled once and its leftover width stays empty until the sweep line rises
// past it. It reproduces NextFit with NextItem and FirstFit with FirstFit.
type SimpleFit struct {
	Order    ItemOrder
	Strategy PlacementStrategy
}

// NewSimpleFit returns a SimpleFit with the given policies.
func NewSimpleFit(order ItemOrder, strategy PlacementStrategy) *SimpleFit {
	return &SimpleFit{Order: order, Strategy: strategy}
}

// Name returns NextFit, FirstFit, GreedyNextFit or GreedyFirstFit.
func (a *SimpleFit) Name() string {
	name := "NextFit"
	if a.Order == FirstFit {
		name = "FirstFit"
	}
	if a.Strategy == ShiftRightmost {
		name = "Greedy" + name
	}
	return name
}

// Solve packs in and returns an output bound to in.
func (a *SimpleFit) Solve(ctx context.Context, in *model.Instance) (*model.Output, error) {
	placements, err := Pack(ctx, in, a.Order, a.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Name(), err)
	}
	return model.NewOutput(in, placements), nil
}

var simpleFits = map[string]*SimpleFit{
	"nextfit":        {Order: NextItem, Strategy: Default},
	"firstfit":       {Order: FirstFit, Strategy: Default},
	"greedynextfit":  {Order: NextItem, Strategy: ShiftRightmost},
	"greedyfirstfit": {Order: FirstFit, Strategy: ShiftRightmost},
}

// ByName resolves one of the SimpleFit display names, case-insensitively.
func ByName(name string) (Algorithm, error) {
	a, ok := simpleFits[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	cp := *a
	return &cp, nil
}

// Names lists the algorithms ByName understands.
func Names() []string {
	names := make([]string, 0, len(simpleFits))
	for _, a := range simpleFits {
		names = append(names, a.Name())
	}
	sort.Strings(names)
	return names
}
