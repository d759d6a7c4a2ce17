package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/verify"
)

// BinFitListener counts, per algorithm, the strip packings of converted bin
// instances that also pack the items into a single bin. This answers the
// orthogonal packing question for the instance: a strip packing no higher
// than the bin is a feasible opp2d solution.
type BinFitListener struct {
	BaseListener
	w      io.Writer
	bins   map[*model.Instance]*model.BinInstance
	names  []string
	fits   map[string]int
	tested map[string]int
}

// NewBinFitListener creates a listener writing its summary to w.
func NewBinFitListener(w io.Writer) *BinFitListener {
	return &BinFitListener{w: w, bins: make(map[*model.Instance]*model.BinInstance)}
}

// Track registers in as the strip form of b. Results for untracked inputs
// are ignored.
func (l *BinFitListener) Track(in *model.Instance, b *model.BinInstance) {
	l.bins[in] = b
}

// Fits returns how many tracked inputs alg packed into one bin, and how many
// tracked inputs it ran on.
func (l *BinFitListener) Fits(alg string) (fits, tested int) {
	return l.fits[alg], l.tested[alg]
}

func (l *BinFitListener) ScenarioStarted(s *Scenario) error {
	l.names = l.names[:0]
	for _, alg := range s.Algorithms {
		l.names = append(l.names, alg.Name())
	}
	l.fits = make(map[string]int)
	l.tested = make(map[string]int)
	return nil
}

func (l *BinFitListener) TestFinished(alg engine.Algorithm, in *model.Instance, out *model.Output, v model.Verdict) error {
	b, ok := l.bins[in]
	if !ok {
		return nil
	}
	l.tested[alg.Name()]++
	if v.Result != model.ResultValid {
		return nil
	}
	bo := model.SingleBinOutput(b, out)
	if !bo.Solved {
		return nil
	}
	if bv := verify.Bin(b, bo); bv.Result != model.ResultValid {
		return fmt.Errorf("single bin packing of %s by %s: %s", b.ID, alg.Name(), bv.Comment)
	}
	l.fits[alg.Name()]++
	return nil
}

func (l *BinFitListener) ScenarioFinished() error {
	if l.w == nil || len(l.bins) == 0 {
		return nil
	}
	counts := make([]string, 0, len(l.names))
	for _, name := range l.names {
		counts = append(counts, fmt.Sprintf("%s %d/%d", name, l.fits[name], l.tested[name]))
	}
	_, err := fmt.Fprintf(l.w, "Single-bin packings: %s\n", strings.Join(counts, ", "))
	return err
}
