package engine

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/piwi3910/packbench/internal/model"
)

// occupiedHeap orders occupied segments by ceiling y, then by xl.
type occupiedHeap struct {
	a   *arena
	ids []int
}

func (h *occupiedHeap) Len() int { return len(h.ids) }

func (h *occupiedHeap) Less(i, j int) bool {
	si, sj := h.a.at(h.ids[i]), h.a.at(h.ids[j])
	if si.y != sj.y {
		return si.y < sj.y
	}
	return si.xl < sj.xl
}

func (h *occupiedHeap) Swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
	h.a.at(h.ids[i]).heap = i
	h.a.at(h.ids[j]).heap = j
}

func (h *occupiedHeap) Push(x any) {
	id := x.(int)
	h.a.at(id).heap = len(h.ids)
	h.ids = append(h.ids, id)
}

func (h *occupiedHeap) Pop() any {
	n := len(h.ids)
	id := h.ids[n-1]
	h.ids = h.ids[:n-1]
	h.a.at(id).heap = none
	return id
}

func (h *occupiedHeap) peek() *segment {
	return h.a.at(h.ids[0])
}

// skyline is the state of one placement run. It sweeps a horizontal line
// upwards, filling free segments of the current contour left to right and
// releasing occupied segments once the line reaches their ceiling.
type skyline struct {
	order    ItemOrder
	strategy PlacementStrategy

	widths     []int
	heights    []int
	stripWidth int

	segs  *arena
	queue []int // free segments, FIFO
	heap  *occupiedHeap
	index *widthIndex

	placements []model.Placement
	placed     int
	y0         int
}

func newSkyline(in *model.Instance, order ItemOrder, strategy PlacementStrategy) *skyline {
	n := len(in.Items)
	s := &skyline{
		order:      order,
		strategy:   strategy,
		widths:     make([]int, n),
		heights:    make([]int, n),
		stripWidth: in.StripWidth,
		segs:       newArena(2*n + 1),
		placements: make([]model.Placement, n),
	}
	for i, it := range in.Items {
		s.widths[i] = it.Width
		s.heights[i] = it.Height
	}
	s.heap = &occupiedHeap{a: s.segs, ids: make([]int, 0, n)}
	s.queue = append(s.queue, s.segs.newFree(0, in.StripWidth, 0))
	if order == FirstFit {
		s.index = newWidthIndex(s.widths, in.StripWidth)
	}
	return s
}

// run places every item. It checks ctx once per drain or advance step.
func (s *skyline) run(ctx context.Context) error {
	for s.placed < len(s.widths) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(s.queue) > 0 {
			s.drain()
		} else {
			s.advance()
		}
	}
	return nil
}

// drain fills the front free segment with feasible items.
func (s *skyline) drain() {
	fi := s.queue[0]
	s.queue = s.queue[1:]
	free := s.segs.at(fi)
	if free.state == stateInvalid {
		return
	}

	success := false
	for {
		id := s.nextFeasible(free.width())
		if id == none {
			break
		}
		ri := s.segs.newOccupied(free.xl, free.xl+s.widths[id], s.y0+s.heights[id], id)
		// newOccupied may grow the arena, so reload the free segment.
		free = s.segs.at(fi)
		rect := s.segs.at(ri)
		free.xl = rect.xr

		rect.prev = free.prev
		if rect.prev != none {
			s.segs.at(rect.prev).next = ri
		}
		if free.width() == 0 {
			rect.next = free.next
			free.state = stateInvalid
		} else {
			rect.next = fi
		}
		if rect.next != none {
			s.segs.at(rect.next).prev = ri
		}

		s.placements[id] = model.Placement{X: rect.xl, Y: s.y0}
		heap.Push(s.heap, ri)
		success = true
	}

	if s.strategy == ShiftRightmost && success && free.width() > 0 && free.next == none {
		s.segs.swapWithPrevious(fi)
		moved := s.segs.at(s.segs.at(fi).next)
		s.placements[moved.item].X = moved.xl
		heap.Fix(s.heap, moved.heap)
	}
}

// advance raises the sweep line to the lowest occupied ceiling and frees
// every segment that ends there.
func (s *skyline) advance() {
	if s.heap.Len() == 0 {
		panic(fmt.Sprintf("engine: no occupied segments left with %d of %d items placed", s.placed, len(s.widths)))
	}
	s.y0 = s.heap.peek().y
	for s.heap.Len() > 0 && s.heap.peek().y == s.y0 {
		si := heap.Pop(s.heap).(int)
		s.segs.release(si)
		if s.segs.isFree(s.segs.at(si).prev) {
			s.segs.mergeWithPrevious(si)
		}
		if s.segs.isFree(s.segs.at(si).next) {
			s.segs.mergeWithNext(si)
		}
		s.queue = append(s.queue, si)
	}
}

// nextFeasible selects and consumes the next item that fits maxWidth
// according to the item order, or returns none.
func (s *skyline) nextFeasible(maxWidth int) int {
	switch s.order {
	case NextItem:
		if s.placed < len(s.widths) && s.widths[s.placed] <= maxWidth {
			s.placed++
			return s.placed - 1
		}
	case FirstFit:
		if id := s.index.findFeasible(maxWidth); id != none {
			s.index.remove(id)
			s.placed++
			return id
		}
	}
	return none
}

// Pack places the items of in with the given policies. The instance is
// validated first; a cancelled ctx stops the sweep and returns its error.
func Pack(ctx context.Context, in *model.Instance, order ItemOrder, strategy PlacementStrategy) ([]model.Placement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := newSkyline(in, order, strategy)
	if err := s.run(ctx); err != nil {
		return nil, err
	}
	return s.placements, nil
}
