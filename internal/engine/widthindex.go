package engine

// widthIndex is an array-backed complete binary tree over item widths. Leaf
// leafCnt+i holds the width of item i, every inner node the minimum of its
// subtree. Removed items and padding leaves hold sentinel, a width no
// segment of the strip can accommodate.
type widthIndex struct {
	tree     []int
	leafCnt  int
	sentinel int
}

func newWidthIndex(widths []int, stripWidth int) *widthIndex {
	leafCnt := 1
	for leafCnt < len(widths) {
		leafCnt <<= 1
	}
	idx := &widthIndex{
		tree:     make([]int, leafCnt<<1),
		leafCnt:  leafCnt,
		sentinel: stripWidth + 1,
	}
	for i := 0; i < leafCnt; i++ {
		if i < len(widths) {
			idx.tree[leafCnt+i] = widths[i]
		} else {
			idx.tree[leafCnt+i] = idx.sentinel
		}
	}
	for i := leafCnt - 1; i > 0; i-- {
		idx.tree[i] = min(idx.tree[i<<1], idx.tree[i<<1|1])
	}
	return idx
}

// findFeasible returns the smallest item id whose width is at most maxWidth,
// or none.
func (w *widthIndex) findFeasible(maxWidth int) int {
	if w.tree[1] > maxWidth {
		return none
	}
	node := 1
	for node < w.leafCnt {
		node <<= 1
		if w.tree[node] > maxWidth {
			node |= 1
		}
	}
	return node - w.leafCnt
}

// remove drops item id from the index.
func (w *widthIndex) remove(id int) {
	i := id + w.leafCnt
	w.tree[i] = w.sentinel
	for i > 1 {
		i >>= 1
		w.tree[i] = min(w.tree[i<<1], w.tree[i<<1|1])
	}
}
