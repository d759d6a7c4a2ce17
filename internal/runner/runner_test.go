package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcAlgorithm adapts a function to engine.Algorithm.
type funcAlgorithm struct {
	name string
	fn   func(ctx context.Context, in *model.Instance) (*model.Output, error)
}

func (a funcAlgorithm) Name() string { return a.name }

func (a funcAlgorithm) Solve(ctx context.Context, in *model.Instance) (*model.Output, error) {
	return a.fn(ctx, in)
}

// stack places every item at x=0 on top of the previous one.
var stack = funcAlgorithm{name: "Stack", fn: func(_ context.Context, in *model.Instance) (*model.Output, error) {
	placements := make([]model.Placement, len(in.Items))
	y := 0
	for i, it := range in.Items {
		placements[i] = model.Placement{X: 0, Y: y}
		y += it.Height
	}
	return model.NewOutput(in, placements), nil
}}

// overlapping places every item at the origin.
var overlapping = funcAlgorithm{name: "Overlap", fn: func(_ context.Context, in *model.Instance) (*model.Output, error) {
	return model.NewOutput(in, make([]model.Placement, len(in.Items))), nil
}}

var failing = funcAlgorithm{name: "Fail", fn: func(context.Context, *model.Instance) (*model.Output, error) {
	return nil, errors.New("boom")
}}

func newInstance(id string, width int, dims ...[2]int) *model.Instance {
	items := make([]model.Item, len(dims))
	for i, d := range dims {
		items[i] = model.Item{Width: d[0], Height: d[1]}
	}
	return &model.Instance{ID: id, StripWidth: width, Items: items}
}

func TestRun_OK(t *testing.T) {
	in := newInstance("a", 10, [2]int{5, 2})
	out, info := Run(context.Background(), engine.NewSimpleFit(engine.NextItem, engine.Default), in, time.Second)

	require.NotNil(t, out)
	assert.Equal(t, model.RunOK, info.Result)
	assert.Equal(t, 2, out.Objective())
}

func TestRun_Unlimited(t *testing.T) {
	in := newInstance("a", 10, [2]int{5, 2})
	out, info := Run(context.Background(), stack, in, 0)

	require.NotNil(t, out)
	assert.Equal(t, model.RunOK, info.Result)
}

func TestRun_ErrorAndPanicAreExceptions(t *testing.T) {
	in := newInstance("a", 10, [2]int{5, 2})

	_, info := Run(context.Background(), failing, in, time.Second)
	assert.Equal(t, model.RunException, info.Result)
	assert.EqualError(t, info.Err, "boom")

	panicking := funcAlgorithm{name: "Panic", fn: func(context.Context, *model.Instance) (*model.Output, error) {
		panic("engine: broken invariant")
	}}
	_, info = Run(context.Background(), panicking, in, time.Second)
	assert.Equal(t, model.RunException, info.Result)
	assert.ErrorContains(t, info.Err, "broken invariant")
}

func TestRun_TimeLimitExceeded(t *testing.T) {
	in := newInstance("a", 10, [2]int{5, 2})
	stubborn := funcAlgorithm{name: "Sleep", fn: func(context.Context, *model.Instance) (*model.Output, error) {
		time.Sleep(time.Second)
		return nil, nil
	}}

	_, info := Run(context.Background(), stubborn, in, 20*time.Millisecond)
	assert.Equal(t, model.RunTimeLimitExceeded, info.Result)
	assert.Less(t, info.Elapsed, time.Second)
}

func TestRun_CooperativeStopReturningCancellationIsTimeLimit(t *testing.T) {
	in := newInstance("a", 10, [2]int{5, 2})
	cooperative := funcAlgorithm{name: "Wait", fn: func(ctx context.Context, _ *model.Instance) (*model.Output, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	_, info := Run(context.Background(), cooperative, in, 20*time.Millisecond)
	assert.Equal(t, model.RunTimeLimitExceeded, info.Result)
}

func TestRun_InterruptedRunKeepsItsOutput(t *testing.T) {
	in := newInstance("a", 10, [2]int{5, 2})
	anytime := funcAlgorithm{name: "Anytime", fn: func(ctx context.Context, in *model.Instance) (*model.Output, error) {
		<-ctx.Done()
		return stack.fn(ctx, in)
	}}

	out, info := Run(context.Background(), anytime, in, 20*time.Millisecond)
	require.NotNil(t, out)
	assert.Equal(t, model.RunOK, info.Result)
}

func TestRun_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := funcAlgorithm{name: "Block", fn: func(context.Context, *model.Instance) (*model.Output, error) {
		time.Sleep(200 * time.Millisecond)
		return nil, nil
	}}

	_, info := Run(ctx, blocked, newInstance("a", 10, [2]int{5, 2}), 0)
	assert.Equal(t, model.RunException, info.Result)
	assert.ErrorIs(t, info.Err, context.Canceled)
}

func TestRunBound(t *testing.T) {
	lb, info := RunBound(context.Background(), bounds.Continuous{}, newInstance("a", 10, [2]int{5, 3}), time.Second)
	assert.Equal(t, model.RunOK, info.Result)
	assert.Equal(t, 2, lb)
}

func TestScenarioTimeLimit(t *testing.T) {
	s := NewScenario()
	assert.Equal(t, time.Duration(0), s.TimeLimit())
	require.NoError(t, s.SetTimeLimit(time.Second))
	assert.Equal(t, time.Second, s.TimeLimit())
	assert.ErrorIs(t, s.SetTimeLimit(-time.Second), ErrNegativeTimeLimit)
}

// recorder counts callbacks and can be told to fail.
type recorder struct {
	BaseListener
	started, finished int
	fail              error
	panics            bool
}

func (r *recorder) TestStarted(engine.Algorithm, *model.Instance) error {
	r.started++
	if r.panics {
		panic("listener bug")
	}
	return r.fail
}

func (r *recorder) ScenarioFinished() error {
	r.finished++
	return nil
}

func TestNotifier_DropsFailingListeners(t *testing.T) {
	good := &recorder{}
	bad := &recorder{fail: errors.New("disk full")}
	crashing := &recorder{panics: true}

	var dropped []error
	n := &Notifier{OnDrop: func(_ Listener, err error) { dropped = append(dropped, err) }}
	n.AddListener(good)
	n.AddListener(bad)
	n.AddListener(crashing)

	in := newInstance("a", 10, [2]int{1, 1})
	n.FireTestStarted(stack, in)
	n.FireTestStarted(stack, in)
	n.FireScenarioFinished()

	assert.Equal(t, 2, good.started)
	assert.Equal(t, 1, bad.started)
	assert.Equal(t, 1, crashing.started)
	assert.Equal(t, 1, good.finished)
	assert.Equal(t, 0, bad.finished)
	assert.Len(t, dropped, 2)
	assert.Len(t, n.Listeners(), 1)

	n.RemoveListener(good)
	assert.Empty(t, n.Listeners())
}

func TestCore_TextListener(t *testing.T) {
	var buf bytes.Buffer
	text := NewTextListener(&buf)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	text.now = func() time.Time {
		clock = clock.Add(750 * time.Millisecond)
		return clock
	}

	s := NewScenario()
	s.AddAlgorithms(stack, overlapping, failing)
	s.AddInputs(newInstance("spp2d.t.1", 10, [2]int{5, 1}, [2]int{5, 1}))

	require.NoError(t, NewCore(text).Run(context.Background(), s))

	assert.Equal(t, "Starting scenario\n.EF\nScenario finished in 0.750 sec\n"+
		"ERROR: 2 runs of total 3 runs were not successful\n", buf.String())
}

func TestCore_AllValid(t *testing.T) {
	var buf bytes.Buffer
	s := NewScenario()
	s.AddAlgorithms(engine.BuildDefaultAlgorithms(false, nil, engine.DefaultEvolutionConfig())...)
	s.AddInputs(newInstance("spp2d.t.1", 10, [2]int{6, 2}, [2]int{6, 2}, [2]int{4, 3}))
	require.NoError(t, s.SetTimeLimit(time.Second))

	require.NoError(t, NewCore(NewTextListener(&buf)).Run(context.Background(), s))
	assert.Contains(t, buf.String(), "....\n")
	assert.Contains(t, buf.String(), "OK: all 4 runs were successful")
}

func TestCore_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}

	s := NewScenario()
	s.AddAlgorithms(stack)
	s.AddInputs(newInstance("a", 10, [2]int{1, 1}))

	err := NewCore(rec).Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, rec.started)
	assert.Equal(t, 1, rec.finished)
}

func statsScenario() *Scenario {
	s := NewScenario()
	s.AddAlgorithms(stack, engine.NewSimpleFit(engine.FirstFit, engine.Default))
	s.AddInputs(
		newInstance("spp2d.A.1", 10, [2]int{5, 2}, [2]int{5, 2}),
		newInstance("spp2d.A.2", 10, [2]int{10, 1}),
		newInstance("spp2d.B.1", 4, [2]int{4, 3}),
	)
	return s
}

func TestStatsCollector_Tree(t *testing.T) {
	stats := NewStatsCollector(bounds.Continuous{}, nil)
	require.NoError(t, NewCore(stats).Run(context.Background(), statsScenario()))

	root := stats.Root()
	require.Len(t, root.Children, 1)
	top := root.Children[0]
	assert.Equal(t, "spp2d", top.Name)
	assert.Equal(t, 3, top.Inputs)
	assert.InDelta(t, 2.0, top.AverageLowerBound(), 1e-9)
	assert.Equal(t, 3, top.BestCount["FirstFit"])
	assert.Equal(t, 2, top.BestCount["Stack"])
	assert.InDelta(t, 50.0/3, top.AverageGap("Stack"), 1e-9)

	require.Len(t, top.Children, 2)
	a := top.Children[0]
	assert.Equal(t, "A", a.Name)
	assert.InDelta(t, 5.0, a.Objective["Stack"], 1e-9)
	assert.InDelta(t, 3.0, a.Objective["FirstFit"], 1e-9)

	var names []string
	root.Walk(func(path []string, _ *StatsNode) {
		names = append(names, strings.Join(path, "."))
	})
	assert.Equal(t, []string{"spp2d", "spp2d.A", "spp2d.A.1", "spp2d.A.2", "spp2d.B", "spp2d.B.1"}, names)

	rows := stats.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, top, rows[0].Node)
	assert.Equal(t, 1, rows[1].Depth)
}

func TestStatsCollector_Print(t *testing.T) {
	var buf bytes.Buffer
	stats := NewStatsCollector(bounds.Continuous{}, &buf)
	require.NoError(t, NewCore(stats).Run(context.Background(), statsScenario()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"LowerBound", "FirstFit", "Stack"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"gap", "best", "gap", "best"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"spp2d", "2.00", "0.00%", "3", "16.67%", "2"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"A", "1.50", "0.00%", "2", "25.00%", "1"}, strings.Fields(lines[3]))
	assert.True(t, strings.HasPrefix(lines[3], "  A"))
}

func TestStatsCollector_DuplicateIdentifiers(t *testing.T) {
	s := NewScenario()
	s.AddAlgorithms(stack)
	s.AddInputs(newInstance("x.1", 4, [2]int{1, 1}), newInstance("x.1", 4, [2]int{1, 1}))

	stats := NewStatsCollector(bounds.Continuous{}, nil)
	assert.ErrorContains(t, stats.ScenarioStarted(s), "unique identifiers")
}

func TestStatsCollector_InvalidOutputsAreIgnored(t *testing.T) {
	s := NewScenario()
	s.AddAlgorithms(overlapping, stack)
	s.AddInputs(newInstance("x.1", 10, [2]int{5, 1}, [2]int{5, 1}), newInstance("x.2", 10, [2]int{5, 1}))

	stats := NewStatsCollector(bounds.Continuous{}, nil)
	require.NoError(t, NewCore(stats).Run(context.Background(), s))

	x := stats.Root().Children[0]
	assert.Equal(t, 1, x.BestCount["Overlap"], "only the single-item input is valid for Overlap")
	assert.Equal(t, 2, x.BestCount["Stack"])
}

func TestNaturalOrderOfChildren(t *testing.T) {
	stats := NewStatsCollector(bounds.Continuous{}, nil)
	s := NewScenario()
	s.AddAlgorithms(stack)
	s.AddInputs(newInstance("c.10", 4, [2]int{1, 1}), newInstance("c.9", 4, [2]int{1, 1}), newInstance("c.1", 4, [2]int{1, 1}))
	require.NoError(t, stats.ScenarioStarted(s))

	var names []string
	for _, c := range stats.Root().Children[0].Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"1", "9", "10"}, names)
}

func TestBinFitListener(t *testing.T) {
	fitting := &model.BinInstance{ID: "opp2d.t.1", BinWidth: 10, BinHeight: 2, Items: []model.Item{{Width: 5, Height: 2}, {Width: 5, Height: 2}}}
	tight := &model.BinInstance{ID: "opp2d.t.2", BinWidth: 10, BinHeight: 3, Items: []model.Item{{Width: 6, Height: 2}, {Width: 6, Height: 2}}}
	inputs := model.ConvertAll([]*model.BinInstance{fitting, tight})

	var buf bytes.Buffer
	fit := NewBinFitListener(&buf)
	fit.Track(inputs[0], fitting)
	fit.Track(inputs[1], tight)

	s := NewScenario()
	s.AddAlgorithms(stack, engine.NewSimpleFit(engine.FirstFit, engine.Default), overlapping)
	s.AddInputs(inputs...)
	s.AddInputs(newInstance("spp2d.untracked", 10, [2]int{1, 1}))

	require.NoError(t, NewCore(fit).Run(context.Background(), s))

	fits, tested := fit.Fits("Stack")
	assert.Equal(t, 0, fits)
	assert.Equal(t, 2, tested)
	fits, tested = fit.Fits("FirstFit")
	assert.Equal(t, 1, fits)
	assert.Equal(t, 2, tested)
	fits, _ = fit.Fits("Overlap")
	assert.Equal(t, 0, fits, "invalid strip packings never count")

	assert.Equal(t, "Single-bin packings: Stack 0/2, FirstFit 1/2, Overlap 0/2\n", buf.String())
}

func TestBinFitListener_SilentWithoutTrackedInputs(t *testing.T) {
	var buf bytes.Buffer
	s := NewScenario()
	s.AddAlgorithms(stack)
	s.AddInputs(newInstance("spp2d.t.1", 10, [2]int{1, 1}))

	require.NoError(t, NewCore(NewBinFitListener(&buf)).Run(context.Background(), s))
	assert.Empty(t, buf.String())
}
