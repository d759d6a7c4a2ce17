package engine

import "fmt"

// none marks a missing neighbor link.
const none = -1

// segmentState tags a segment as free, occupied by an item, or dead.
type segmentState uint8

const (
	stateFree segmentState = iota
	stateOccupied
	stateInvalid
)

// segment is one horizontal run [xl, xr) of the skyline. A segment is only
// meaningful while the sweep line is at or below y.
type segment struct {
	xl, xr int
	y      int
	prev   int
	next   int
	state  segmentState
	item   int // occupant while state == stateOccupied
	heap   int // position in the occupied heap, none when not queued
}

func (s *segment) width() int {
	return s.xr - s.xl
}

// arena stores every segment created during one solve. Segments are
// addressed by index and never reused.
type arena struct {
	segs []segment
}

func newArena(capacity int) *arena {
	return &arena{segs: make([]segment, 0, capacity)}
}

func (a *arena) newFree(xl, xr, y int) int {
	a.segs = append(a.segs, segment{xl: xl, xr: xr, y: y, prev: none, next: none, state: stateFree, item: none, heap: none})
	return len(a.segs) - 1
}

func (a *arena) newOccupied(xl, xr, y, item int) int {
	a.segs = append(a.segs, segment{xl: xl, xr: xr, y: y, prev: none, next: none, state: stateOccupied, item: item, heap: none})
	return len(a.segs) - 1
}

func (a *arena) at(i int) *segment {
	return &a.segs[i]
}

func (a *arena) isFree(i int) bool {
	return i != none && a.segs[i].state == stateFree
}

// release turns an occupied segment back into a free one.
func (a *arena) release(i int) {
	s := a.at(i)
	if s.state != stateOccupied {
		panic(fmt.Sprintf("engine: release of segment %d in state %d", i, s.state))
	}
	s.state = stateFree
	s.item = none
}

// mergeWithPrevious absorbs the free left neighbor of i and invalidates it.
func (a *arena) mergeWithPrevious(i int) {
	s := a.at(i)
	if !a.isFree(s.prev) {
		panic(fmt.Sprintf("engine: segment %d has no free previous neighbor", i))
	}
	p := a.at(s.prev)
	s.xl = p.xl
	p.state = stateInvalid
	p.xr = s.xl
	s.prev = p.prev
	if s.prev != none {
		a.at(s.prev).next = i
	}
}

// mergeWithNext absorbs the free right neighbor of i and invalidates it.
func (a *arena) mergeWithNext(i int) {
	s := a.at(i)
	if !a.isFree(s.next) {
		panic(fmt.Sprintf("engine: segment %d has no free next neighbor", i))
	}
	n := a.at(s.next)
	s.xr = n.xr
	n.state = stateInvalid
	n.xl = s.xr
	s.next = n.next
	if s.next != none {
		a.at(s.next).prev = i
	}
}

// swapWithPrevious exchanges the x-extents of i and its left neighbor while
// keeping both widths, and relinks them so the neighbor follows i.
func (a *arena) swapWithPrevious(i int) {
	s := a.at(i)
	if s.prev == none {
		panic(fmt.Sprintf("engine: segment %d has no previous neighbor to swap with", i))
	}
	pi := s.prev
	p := a.at(pi)

	if p.prev != none {
		a.at(p.prev).next = i
	}
	if s.next != none {
		a.at(s.next).prev = pi
	}
	s.prev = p.prev
	p.next = s.next
	s.next = pi
	p.prev = i

	dxPrev := p.width()
	dxSelf := s.width()
	s.xl -= dxPrev
	s.xr -= dxPrev
	p.xl += dxSelf
	p.xr += dxSelf
}
