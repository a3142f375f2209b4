package graph

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// circuitSearch enumerates the elementary circuits of one strongly connected
// component with Johnson's algorithm. The depth-first search runs on an
// explicit frame stack so large components cannot exhaust the goroutine
// stack. Blocked nodes and the block map are roaring bitmaps over node
// indices.
type circuitSearch struct {
	succ     [][]int
	member   *roaring.Bitmap
	blocked  *roaring.Bitmap
	blockMap map[uint32]*roaring.Bitmap
	limit    int
	found    [][]int
}

// frame is one level of the depth-first search.
type frame struct {
	v      int
	next   int
	closed bool
}

// findCircuits returns at most limit circuits of the component scc (sorted
// member indices). Each circuit is closed: it ends with its start node.
// Start nodes and successors are visited in index order, so the result is
// the same for the same input.
func findCircuits(g *indexedGraph, scc []int, limit int) [][]int {
	s := &circuitSearch{
		succ:     g.succ,
		member:   roaring.New(),
		blocked:  roaring.New(),
		blockMap: make(map[uint32]*roaring.Bitmap, len(scc)),
		limit:    limit,
	}
	for _, v := range scc {
		s.member.Add(uint32(v))
	}

	for _, start := range scc {
		if len(s.found) >= s.limit {
			break
		}
		s.reset()
		s.searchFrom(start)
	}
	return s.found
}

func (s *circuitSearch) reset() {
	s.blocked.Clear()
	for _, b := range s.blockMap {
		b.Clear()
	}
}

// allowed reports whether w takes part in the search rooted at start:
// it must be in the component and not precede start.
func (s *circuitSearch) allowed(w, start int) bool {
	return w >= start && s.member.Contains(uint32(w))
}

func (s *circuitSearch) searchFrom(start int) {
	path := []int{start}
	stack := []frame{{v: start}}
	s.blocked.Add(uint32(start))

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succ := s.succ[top.v]

		if top.next < len(succ) {
			w := succ[top.next]
			top.next++
			if !s.allowed(w, start) {
				continue
			}
			if w == start {
				circuit := make([]int, len(path)+1)
				copy(circuit, path)
				circuit[len(path)] = start
				s.found = append(s.found, circuit)
				top.closed = true
				if len(s.found) >= s.limit {
					return
				}
				continue
			}
			if !s.blocked.Contains(uint32(w)) {
				s.blocked.Add(uint32(w))
				path = append(path, w)
				stack = append(stack, frame{v: w})
			}
			continue
		}

		// every successor of top.v has been explored
		v, closed := top.v, top.closed
		if closed {
			s.unblock(v)
		} else {
			for _, w := range succ {
				if s.allowed(w, start) {
					s.blockedBy(w).Add(uint32(v))
				}
			}
		}
		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
		if closed && len(stack) > 0 {
			stack[len(stack)-1].closed = true
		}
	}
}

// blockedBy returns the set of nodes waiting for w to be unblocked.
func (s *circuitSearch) blockedBy(w int) *roaring.Bitmap {
	b, ok := s.blockMap[uint32(w)]
	if !ok {
		b = roaring.New()
		s.blockMap[uint32(w)] = b
	}
	return b
}

// unblock clears v and, transitively, every node that was blocked on it.
func (s *circuitSearch) unblock(v int) {
	work := []uint32{uint32(v)}
	for len(work) > 0 {
		u := work[len(work)-1]
		work = work[:len(work)-1]
		s.blocked.Remove(u)

		b, ok := s.blockMap[u]
		if !ok || b.IsEmpty() {
			continue
		}
		waiting := b.ToArray()
		b.Clear()
		for _, w := range waiting {
			if s.blocked.Contains(w) {
				work = append(work, w)
			}
		}
	}
}
