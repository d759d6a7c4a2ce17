package engine

import (
	"context"

	"github.com/piwi3910/packbench/internal/model"
)

// ComparisonResult holds the packing and computed statistics of a single
// algorithm on one instance.
type ComparisonResult struct {
	Algorithm  string
	Output     *model.Output
	Objective  int
	LowerBound int
	GapPercent float64
	Err        error
}

// Gap returns the relative distance (obj - lb) * 100 / obj in percent.
func Gap(objective, lowerBound int) float64 {
	if objective == 0 {
		return 0
	}
	return float64(objective-lowerBound) * 100.0 / float64(objective)
}

// CompareAlgorithms runs every algorithm on in and returns the results in
// algorithm order. This enables side-by-side comparison of heuristics on a
// single instance. A nil bound reports a lower bound of 0.
func CompareAlgorithms(ctx context.Context, algorithms []Algorithm, in *model.Instance, bound Bounder) []ComparisonResult {
	lb := 0
	if bound != nil {
		lb = bound.Compute(in)
	}

	results := make([]ComparisonResult, 0, len(algorithms))
	for _, alg := range algorithms {
		res := ComparisonResult{Algorithm: alg.Name(), LowerBound: lb}
		out, err := alg.Solve(ctx, in)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Output = out
		res.Objective = out.Objective()
		res.GapPercent = Gap(res.Objective, lb)
		results = append(results, res)
	}
	return results
}

// Best returns the index of the successful result with the lowest
// objective, or -1 when every run failed.
func Best(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if best < 0 || r.Objective < results[best].Objective {
			best = i
		}
	}
	return best
}

// BuildDefaultAlgorithms returns the four SimpleFit variants and, when
// evolve is set, an evolutionary search decoded by FirstFit.
func BuildDefaultAlgorithms(evolve bool, bound Bounder, config EvolutionConfig) []Algorithm {
	algorithms := []Algorithm{
		NewSimpleFit(NextItem, Default),
		NewSimpleFit(FirstFit, Default),
		NewSimpleFit(NextItem, ShiftRightmost),
		NewSimpleFit(FirstFit, ShiftRightmost),
	}
	if evolve {
		algorithms = append(algorithms, NewEvolutionary(NewSimpleFit(FirstFit, Default), bound, config))
	}
	return algorithms
}
