package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
)

// ExtraTimeLimit is the grace period an interrupted run gets to return
// before it is abandoned.
const ExtraTimeLimit = 100 * time.Millisecond

// Run solves in with alg under limit (0 = unlimited). When the limit
// expires the run's context is cancelled; a run that still returns within
// ExtraTimeLimit keeps its output, otherwise it is reported as
// TIME_LIMIT_EXCEEDED. Errors and panics are reported as EXCEPTION.
func Run(ctx context.Context, alg engine.Algorithm, in *model.Instance, limit time.Duration) (*model.Output, model.RunInfo) {
	return runLimited(ctx, limit, func(ctx context.Context) (*model.Output, error) {
		return alg.Solve(ctx, in)
	})
}

// RunBound computes a lower bound under limit. Bounds cannot be
// interrupted, so an expired bound is abandoned after ExtraTimeLimit.
func RunBound(ctx context.Context, b bounds.LowerBound, in *model.Instance, limit time.Duration) (int, model.RunInfo) {
	return runLimited(ctx, limit, func(context.Context) (int, error) {
		return b.Compute(in), nil
	})
}

type outcome[T any] struct {
	value T
	err   error
}

func runLimited[T any](ctx context.Context, limit time.Duration, task func(context.Context) (T, error)) (T, model.RunInfo) {
	if limit < 0 {
		var zero T
		return zero, model.RunInfo{Result: model.RunException, Err: ErrNegativeTimeLimit}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome[T], 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := task(runCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	var expired <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case o := <-done:
		return finish(o, time.Since(start), false)
	case <-ctx.Done():
		var zero T
		return zero, model.RunInfo{Result: model.RunException, Elapsed: time.Since(start), Err: ctx.Err()}
	case <-expired:
	}

	cancel()
	grace := time.NewTimer(ExtraTimeLimit)
	defer grace.Stop()
	select {
	case o := <-done:
		return finish(o, time.Since(start), true)
	case <-grace.C:
		var zero T
		return zero, model.RunInfo{Result: model.RunTimeLimitExceeded, Elapsed: time.Since(start)}
	}
}

func finish[T any](o outcome[T], elapsed time.Duration, interrupted bool) (T, model.RunInfo) {
	info := model.RunInfo{Result: model.RunOK, Elapsed: elapsed}
	if o.err == nil {
		return o.value, info
	}
	var zero T
	if interrupted && (errors.Is(o.err, context.Canceled) || errors.Is(o.err, context.DeadlineExceeded)) {
		info.Result = model.RunTimeLimitExceeded
		return zero, info
	}
	info.Result = model.RunException
	info.Err = o.err
	return zero, info
}
