// Package runner benchmarks algorithms on instance suites: it runs every
// algorithm on every input under a time limit, verifies the outputs and
// reports progress to listeners.
package runner

import (
	"errors"
	"time"

	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
)

// ErrNegativeTimeLimit is returned when a scenario is given a negative limit.
var ErrNegativeTimeLimit = errors.New("time limit is negative")

// Scenario is a set of algorithms to run on a set of inputs.
type Scenario struct {
	Algorithms []engine.Algorithm
	Inputs     []*model.Instance
	timeLimit  time.Duration
}

// NewScenario creates an empty scenario without a time limit.
func NewScenario() *Scenario {
	return &Scenario{}
}

// AddAlgorithms appends algorithms to the scenario.
func (s *Scenario) AddAlgorithms(algorithms ...engine.Algorithm) {
	s.Algorithms = append(s.Algorithms, algorithms...)
}

// AddInputs appends inputs to the scenario.
func (s *Scenario) AddInputs(inputs ...*model.Instance) {
	s.Inputs = append(s.Inputs, inputs...)
}

// TimeLimit returns the per-run limit; 0 means unlimited.
func (s *Scenario) TimeLimit() time.Duration {
	return s.timeLimit
}

// SetTimeLimit sets the per-run limit.
func (s *Scenario) SetTimeLimit(d time.Duration) error {
	if d < 0 {
		return ErrNegativeTimeLimit
	}
	s.timeLimit = d
	return nil
}
