package runner

import (
	"context"
	"time"

	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/verify"
)

// Core runs scenarios and reports to its listeners.
type Core struct {
	Notifier
}

// NewCore creates a core reporting to listeners.
func NewCore(listeners ...Listener) *Core {
	c := &Core{}
	for _, l := range listeners {
		c.AddListener(l)
	}
	return c
}

// Run executes every algorithm on every input of s in input-major order.
// It stops early and returns ctx.Err() when ctx is cancelled; listeners
// still receive ScenarioFinished.
func (c *Core) Run(ctx context.Context, s *Scenario) error {
	c.FireScenarioStarted(s)
	defer c.FireScenarioFinished()

	for _, in := range s.Inputs {
		for _, alg := range s.Algorithms {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.FireTestStarted(alg, in)
			out, verdict := c.test(ctx, alg, in, s.TimeLimit())
			c.FireTestFinished(alg, in, out, verdict)
		}
	}
	return ctx.Err()
}

func (c *Core) test(ctx context.Context, alg engine.Algorithm, in *model.Instance, limit time.Duration) (*model.Output, model.Verdict) {
	out, info := Run(ctx, alg, in, limit)
	if info.Result != model.RunOK {
		v := model.Verdict{Result: model.ResultFailed, Comment: info.Result.String(), Run: info}
		if info.Err != nil {
			v.Comment += ": " + info.Err.Error()
		}
		return nil, v
	}
	v := verify.Strip(in, out)
	v.Run = info
	return out, v
}
