package graph

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// DefaultMaxCircuits bounds the elementary circuits enumerated per strongly
// connected component.
const DefaultMaxCircuits = 100

// indexedGraph is an Adjacency with modules mapped to dense indices in
// lexicographic order, so index order equals name order.
type indexedGraph struct {
	names    []ModuleID
	index    map[ModuleID]int
	succ     [][]int
	selfLoop []bool
}

func newIndexedGraph(adj Adjacency) *indexedGraph {
	names := adj.Modules()
	g := &indexedGraph{
		names:    names,
		index:    make(map[ModuleID]int, len(names)),
		succ:     make([][]int, len(names)),
		selfLoop: make([]bool, len(names)),
	}
	for i, m := range names {
		g.index[m] = i
	}
	for from, targets := range adj {
		fi := g.index[from]
		for _, to := range targets {
			ti := g.index[to]
			if ti == fi {
				g.selfLoop[fi] = true
			}
			g.succ[fi] = append(g.succ[fi], ti)
		}
	}
	for i := range g.succ {
		sort.Ints(g.succ[i])
		g.succ[i] = slices.Compact(g.succ[i])
	}
	return g
}

// toGonum converts the graph for SCC decomposition. Self loops are left
// out because simple graphs reject them; they are tracked in selfLoop.
func (g *indexedGraph) toGonum() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := range g.names {
		dg.AddNode(simple.Node(int64(i)))
	}
	for from, targets := range g.succ {
		for _, to := range targets {
			if from != to {
				dg.SetEdge(simple.Edge{F: simple.Node(int64(from)), T: simple.Node(int64(to))})
			}
		}
	}
	return dg
}

// components returns the strongly connected components as sorted index
// lists, ordered by their smallest member.
func (g *indexedGraph) components() [][]int {
	sccs := topo.TarjanSCC(g.toGonum())
	out := make([][]int, 0, len(sccs))
	for _, scc := range sccs {
		members := make([]int, len(scc))
		for i, n := range scc {
			members[i] = int(n.ID())
		}
		sort.Ints(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// DetectCycles returns the de-duplicated canonical cycles of adj using the
// default per-component circuit cap.
func DetectCycles(adj Adjacency) []Cycle {
	return detectCycles(adj, DefaultMaxCircuits)
}

func detectCycles(adj Adjacency, maxCircuits int) []Cycle {
	cycles := []Cycle{}
	if len(adj) == 0 {
		return cycles
	}
	if maxCircuits <= 0 {
		maxCircuits = DefaultMaxCircuits
	}

	g := newIndexedGraph(adj)
	seen := map[string]struct{}{}
	emit := func(path []ModuleID) {
		c := Cycle{Path: Canonicalize(path)}
		if len(c.Path) == 0 {
			return
		}
		key := c.Key()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		cycles = append(cycles, c)
	}

	for _, scc := range g.components() {
		if len(scc) == 1 {
			if m := scc[0]; g.selfLoop[m] {
				emit([]ModuleID{g.names[m], g.names[m]})
			}
			continue
		}
		for _, circuit := range findCircuits(g, scc, maxCircuits) {
			path := make([]ModuleID, len(circuit))
			for i, idx := range circuit {
				path[i] = g.names[idx]
			}
			emit(path)
		}
	}
	return cycles
}

// Canonicalize rotates a closed walk so its node sequence starts at the
// lexicographically smallest rotation, then closes it again. Both closed
// ([a b a]) and open ([a b]) inputs are accepted.
func Canonicalize(path []ModuleID) []ModuleID {
	nodes := path
	if len(nodes) > 1 && nodes[0] == nodes[len(nodes)-1] {
		nodes = nodes[:len(nodes)-1]
	}
	n := len(nodes)
	if n == 0 {
		return nil
	}

	best := 0
	for r := 1; r < n; r++ {
		if rotationLess(nodes, r, best) {
			best = r
		}
	}

	out := make([]ModuleID, 0, n+1)
	for i := range n {
		out = append(out, nodes[(best+i)%n])
	}
	return append(out, out[0])
}

// rotationLess compares the rotations of nodes starting at a and b element-wise.
func rotationLess(nodes []ModuleID, a, b int) bool {
	n := len(nodes)
	for i := range n {
		x, y := nodes[(a+i)%n], nodes[(b+i)%n]
		if x != y {
			return x < y
		}
	}
	return false
}
