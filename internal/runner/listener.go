package runner

import (
	"fmt"

	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
)

// Listener receives scenario progress. A listener that returns an error or
// panics is dropped from the notifier.
type Listener interface {
	ScenarioStarted(s *Scenario) error
	TestStarted(alg engine.Algorithm, in *model.Instance) error
	TestFinished(alg engine.Algorithm, in *model.Instance, out *model.Output, v model.Verdict) error
	ScenarioFinished() error
}

// BaseListener implements every Listener callback as a no-op. Embed it to
// override only the callbacks of interest.
type BaseListener struct{}

func (BaseListener) ScenarioStarted(*Scenario) error                     { return nil }
func (BaseListener) TestStarted(engine.Algorithm, *model.Instance) error { return nil }
func (BaseListener) ScenarioFinished() error                             { return nil }

func (BaseListener) TestFinished(engine.Algorithm, *model.Instance, *model.Output, model.Verdict) error {
	return nil
}

// Notifier fans events out to listeners.
type Notifier struct {
	listeners []Listener

	// OnDrop is called with a listener that failed and the failure.
	OnDrop func(l Listener, err error)
}

// AddListener registers l.
func (n *Notifier) AddListener(l Listener) {
	n.listeners = append(n.listeners, l)
}

// RemoveListener unregisters l.
func (n *Notifier) RemoveListener(l Listener) {
	for i, each := range n.listeners {
		if each == l {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Listeners returns the registered listeners.
func (n *Notifier) Listeners() []Listener {
	return n.listeners
}

// notify calls fn for every listener, dropping those that fail.
func (n *Notifier) notify(fn func(Listener) error) {
	kept := n.listeners[:0]
	for _, l := range n.listeners {
		if err := safeCall(l, fn); err != nil {
			if n.OnDrop != nil {
				n.OnDrop(l, err)
			}
			continue
		}
		kept = append(kept, l)
	}
	n.listeners = kept
}

func safeCall(l Listener, fn func(Listener) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return fn(l)
}

func (n *Notifier) FireScenarioStarted(s *Scenario) {
	n.notify(func(l Listener) error { return l.ScenarioStarted(s) })
}

func (n *Notifier) FireTestStarted(alg engine.Algorithm, in *model.Instance) {
	n.notify(func(l Listener) error { return l.TestStarted(alg, in) })
}

func (n *Notifier) FireTestFinished(alg engine.Algorithm, in *model.Instance, out *model.Output, v model.Verdict) {
	n.notify(func(l Listener) error { return l.TestFinished(alg, in, out, v) })
}

func (n *Notifier) FireScenarioFinished() {
	n.notify(func(l Listener) error { return l.ScenarioFinished() })
}
