package runner

import (
	"fmt"
	"io"
	"time"

	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
)

// TextListener prints a dot per valid run, E per invalid output and F per
// failed run, followed by a summary.
type TextListener struct {
	BaseListener
	w     io.Writer
	now   func() time.Time
	start time.Time
	total int
	valid int
}

// NewTextListener creates a listener writing to w.
func NewTextListener(w io.Writer) *TextListener {
	return &TextListener{w: w, now: time.Now}
}

func (t *TextListener) ScenarioStarted(*Scenario) error {
	t.start = t.now()
	t.total, t.valid = 0, 0
	_, err := fmt.Fprintln(t.w, "Starting scenario")
	return err
}

func (t *TextListener) TestFinished(_ engine.Algorithm, _ *model.Instance, _ *model.Output, v model.Verdict) error {
	t.total++
	mark := "F"
	switch v.Result {
	case model.ResultValid:
		mark = "."
		t.valid++
	case model.ResultInvalid:
		mark = "E"
	}
	_, err := io.WriteString(t.w, mark)
	return err
}

func (t *TextListener) ScenarioFinished() error {
	elapsed := t.now().Sub(t.start)
	if _, err := fmt.Fprintf(t.w, "\nScenario finished in %.3f sec\n", elapsed.Seconds()); err != nil {
		return err
	}
	var err error
	if t.total == t.valid {
		_, err = fmt.Fprintf(t.w, "OK: all %d runs were successful\n", t.total)
	} else {
		_, err = fmt.Fprintf(t.w, "ERROR: %d runs of total %d runs were not successful\n", t.total-t.valid, t.total)
	}
	return err
}
