package runner

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
)

// StatsNode aggregates results over the inputs whose identifiers share a
// dot-separated prefix. Leaves are single inputs.
type StatsNode struct {
	Name          string
	Children      []*StatsNode
	Inputs        int
	LowerBoundSum float64

	// Per algorithm: summed objective, number of inputs on which the
	// algorithm matched the best objective, and summed gap in percent.
	Objective map[string]float64
	BestCount map[string]int
	Gap       map[string]float64

	best float64
}

func newStatsNode(name string) *StatsNode {
	return &StatsNode{
		Name:      name,
		Objective: make(map[string]float64),
		BestCount: make(map[string]int),
		Gap:       make(map[string]float64),
		best:      math.MaxFloat64,
	}
}

// Leaf reports whether the node represents a single input.
func (n *StatsNode) Leaf() bool {
	return len(n.Children) == 0
}

// AverageGap returns the mean gap in percent of alg over the node's inputs.
func (n *StatsNode) AverageGap(alg string) float64 {
	if n.Inputs == 0 {
		return 0
	}
	return n.Gap[alg] / float64(n.Inputs)
}

// AverageLowerBound returns the mean lower bound over the node's inputs.
func (n *StatsNode) AverageLowerBound() float64 {
	if n.Inputs == 0 {
		return 0
	}
	return n.LowerBoundSum / float64(n.Inputs)
}

func (n *StatsNode) child(name string) *StatsNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func splitID(id string) (head, rest string, leaf bool) {
	head, rest, found := strings.Cut(id, ".")
	return head, rest, !found
}

func (n *StatsNode) add(id string, lowerBound float64) error {
	n.Inputs++
	n.LowerBoundSum += lowerBound

	name, rest, leaf := splitID(id)
	c := n.child(name)
	if c == nil {
		c = newStatsNode(name)
		n.Children = append(n.Children, c)
	} else if leaf {
		return fmt.Errorf("inputs must have unique identifiers within a scenario: duplicate %q", name)
	}
	if leaf {
		c.Inputs = 1
		c.LowerBoundSum = lowerBound
		return nil
	}
	return c.add(rest, lowerBound)
}

func (n *StatsNode) normalize() {
	for _, c := range n.Children {
		c.normalize()
	}
	sort.Slice(n.Children, func(i, j int) bool {
		return natural.Less(n.Children[i].Name, n.Children[j].Name)
	})
}

func (n *StatsNode) collect(id, alg string, out *model.Output, v model.Verdict) error {
	name, rest, leaf := splitID(id)
	c := n.child(name)
	if c == nil {
		return fmt.Errorf("unknown input %q: inputs must not change during a scenario", id)
	}
	if leaf {
		c.record(alg, out, v)
		return nil
	}
	if err := c.collect(rest, alg, out, v); err != nil {
		return err
	}
	c.update(alg)
	return nil
}

// record stores the result of alg on the single input of a leaf.
func (n *StatsNode) record(alg string, out *model.Output, v model.Verdict) {
	if v.Result != model.ResultValid || out == nil {
		return
	}
	objective := float64(out.Objective())
	n.Objective[alg] = objective
	n.Gap[alg] = (objective - n.LowerBoundSum) * 100.0 / objective
	n.best = math.Min(n.best, objective)
	for name, obj := range n.Objective {
		if math.Abs(obj-n.best)/n.best <= model.ObjectiveEPS {
			n.BestCount[name] = 1
		} else {
			n.BestCount[name] = 0
		}
	}
}

// update recomputes the sums of an inner node from its children.
func (n *StatsNode) update(alg string) {
	if _, ok := n.Objective[alg]; !ok {
		n.Objective[alg] = 0
	}
	for name := range n.Objective {
		objective, gap, best := 0.0, 0.0, 0
		for _, c := range n.Children {
			if obj, ok := c.Objective[name]; ok {
				objective += obj
				gap += c.Gap[name]
				best += c.BestCount[name]
			}
		}
		n.Objective[name] = objective
		n.Gap[name] = gap
		n.BestCount[name] = best
	}
}

// StatsCollector aggregates objective gaps to a lower bound over a tree
// built from input identifiers, and prints the tree when the scenario ends.
type StatsCollector struct {
	BaseListener
	bound      bounds.LowerBound
	w          io.Writer
	algorithms []string
	root       *StatsNode
}

// NewStatsCollector creates a collector printing to w. A nil w disables
// printing; the tree stays available through Root.
func NewStatsCollector(bound bounds.LowerBound, w io.Writer) *StatsCollector {
	return &StatsCollector{bound: bound, w: w}
}

// Root returns the collected tree.
func (s *StatsCollector) Root() *StatsNode {
	return s.root
}

// Algorithms returns the sorted algorithm names of the scenario.
func (s *StatsCollector) Algorithms() []string {
	return s.algorithms
}

func (s *StatsCollector) ScenarioStarted(sc *Scenario) error {
	s.algorithms = s.algorithms[:0]
	for _, alg := range sc.Algorithms {
		s.algorithms = append(s.algorithms, alg.Name())
	}
	sort.Strings(s.algorithms)

	s.root = newStatsNode("root")
	for _, in := range sc.Inputs {
		if err := s.root.add(in.ID, float64(s.bound.Compute(in))); err != nil {
			return err
		}
	}
	s.root.normalize()
	return nil
}

func (s *StatsCollector) TestFinished(alg engine.Algorithm, in *model.Instance, out *model.Output, v model.Verdict) error {
	return s.root.collect(in.ID, alg.Name(), out, v)
}

func (s *StatsCollector) ScenarioFinished() error {
	if s.w == nil {
		return nil
	}
	return s.Print(s.w)
}

// StatsRow is a node as it appears in the printed table, Depth levels
// below the first printed node.
type StatsRow struct {
	Node  *StatsNode
	Depth int
}

// Rows returns the nodes shown by Print, in order. Nodes with a single
// child are skipped from the top, and subtrees holding a single input are
// not expanded.
func (s *StatsCollector) Rows() []StatsRow {
	if s.root == nil {
		return nil
	}
	top := s.root
	for len(top.Children) == 1 {
		top = top.Children[0]
	}
	var rows []StatsRow
	var visit func(n *StatsNode, depth int)
	visit = func(n *StatsNode, depth int) {
		rows = append(rows, StatsRow{Node: n, Depth: depth})
		for _, c := range n.Children {
			if c.Inputs > 1 {
				visit(c, depth+1)
			}
		}
	}
	visit(top, 0)
	return rows
}

// Print writes Rows as a table of average lower bound, average gap and
// best count per algorithm.
func (s *StatsCollector) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%30s%-15s", " ", "LowerBound")
	for _, alg := range s.algorithms {
		fmt.Fprintf(&b, "%-15s", alg)
	}
	fmt.Fprintf(&b, "\n%45s", " ")
	for range s.algorithms {
		fmt.Fprintf(&b, "%-8s%-7s", "gap", "best")
	}
	b.WriteString("\n")

	for _, row := range s.Rows() {
		n := row.Node
		fmt.Fprintf(&b, "%-30s%-15.2f", strings.Repeat("  ", row.Depth)+n.Name, n.AverageLowerBound())
		for _, alg := range s.algorithms {
			fmt.Fprintf(&b, "%-8s%-7d", fmt.Sprintf("%.2f%%", n.AverageGap(alg)), n.BestCount[alg])
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Walk visits every node below n depth-first, passing the names from n's
// first child level down to the node.
func (n *StatsNode) Walk(fn func(path []string, node *StatsNode)) {
	n.walk(fn, nil)
}

func (n *StatsNode) walk(fn func([]string, *StatsNode), path []string) {
	for _, c := range n.Children {
		p := append(path[:len(path):len(path)], c.Name)
		fn(p, c)
		c.walk(fn, p)
	}
}
