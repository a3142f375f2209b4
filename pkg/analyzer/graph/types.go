package graph

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// ModuleID identifies a module by its normalized forward-slash path.
type ModuleID = string

// Adjacency maps each module to the sorted, de-duplicated modules it imports.
type Adjacency map[ModuleID][]ModuleID

// Modules returns every module appearing as a key or a target, sorted.
func (a Adjacency) Modules() []ModuleID {
	seen := make(map[ModuleID]struct{}, len(a))
	for from, targets := range a {
		seen[from] = struct{}{}
		for _, to := range targets {
			seen[to] = struct{}{}
		}
	}
	out := make([]ModuleID, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// HasEdge reports whether from imports to.
func (a Adjacency) HasEdge(from, to ModuleID) bool {
	_, found := slices.BinarySearch(a[from], to)
	return found
}

// ExportStat counts a module's exported declarations and how many of them
// are abstract (interfaces and abstract classes).
type ExportStat struct {
	Total    int `json:"total" toon:"total"`
	Abstract int `json:"abstract" toon:"abstract"`
}

// Cycle is a closed walk: Path[0] == Path[len(Path)-1].
type Cycle struct {
	Path []ModuleID `json:"path" toon:"path"`
}

// Nodes returns the cycle members without the closing element.
func (c Cycle) Nodes() []ModuleID {
	if len(c.Path) > 1 && c.Path[0] == c.Path[len(c.Path)-1] {
		return c.Path[:len(c.Path)-1]
	}
	return c.Path
}

// Key returns the canonical join string used for de-duplication.
func (c Cycle) Key() string {
	return strings.Join(c.Path, " -> ")
}

// FanStat is one entry of a fan-in or fan-out ranking.
type FanStat struct {
	Module ModuleID `json:"module" toon:"module"`
	Count  int      `json:"count" toon:"count"`
}

// EdgeCutHint suggests an import whose removal breaks a cycle.
type EdgeCutHint struct {
	From   ModuleID `json:"from" toon:"from"`
	To     ModuleID `json:"to" toon:"to"`
	Score  int      `json:"score" toon:"score"`
	Reason string   `json:"reason" toon:"reason"`
}

// ImportGraph is the output of BuildImportGraph.
type ImportGraph struct {
	Adjacency   Adjacency
	ExportStats map[ModuleID]ExportStat
}

// DependencyAnalysis is the full dependency report.
type DependencyAnalysis struct {
	Cycles       []Cycle                 `json:"cycles" toon:"cycles"`
	Adjacency    Adjacency               `json:"adjacency" toon:"adjacency"`
	ExportStats  map[ModuleID]ExportStat `json:"exportStats" toon:"exportStats"`
	FanInTop     []FanStat               `json:"fanInTop" toon:"fanInTop"`
	FanOutTop    []FanStat               `json:"fanOutTop" toon:"fanOutTop"`
	EdgeCutHints []EdgeCutHint           `json:"edgeCutHints" toon:"edgeCutHints"`
}

// NewDependencyAnalysis returns an empty analysis with non-nil collections
// so it serializes as empty arrays and objects.
func NewDependencyAnalysis() *DependencyAnalysis {
	return &DependencyAnalysis{
		Cycles:       []Cycle{},
		Adjacency:    Adjacency{},
		ExportStats:  map[ModuleID]ExportStat{},
		FanInTop:     []FanStat{},
		FanOutTop:    []FanStat{},
		EdgeCutHints: []EdgeCutHint{},
	}
}

// Relative returns a copy of d with every module path rewritten relative to
// root. Cycles are re-canonicalized on the new names and fan lists re-ranked,
// so ordering rules hold on the rewritten paths. Cycle emission order is kept.
func (d *DependencyAnalysis) Relative(root string) *DependencyAnalysis {
	rel := func(m ModuleID) ModuleID { return RelativePath(root, m) }

	out := NewDependencyAnalysis()
	for _, c := range d.Cycles {
		path := make([]ModuleID, len(c.Path))
		for i, m := range c.Path {
			path[i] = rel(m)
		}
		out.Cycles = append(out.Cycles, Cycle{Path: Canonicalize(path)})
	}
	for from, targets := range d.Adjacency {
		mapped := make([]ModuleID, len(targets))
		for i, t := range targets {
			mapped[i] = rel(t)
		}
		sort.Strings(mapped)
		out.Adjacency[rel(from)] = mapped
	}
	for m, s := range d.ExportStats {
		out.ExportStats[rel(m)] = s
	}
	for _, f := range d.FanInTop {
		out.FanInTop = append(out.FanInTop, FanStat{Module: rel(f.Module), Count: f.Count})
	}
	for _, f := range d.FanOutTop {
		out.FanOutTop = append(out.FanOutTop, FanStat{Module: rel(f.Module), Count: f.Count})
	}
	sortFan(out.FanInTop)
	sortFan(out.FanOutTop)

	if len(out.Adjacency) > 0 {
		// the cut edge depends on where each cycle starts
		out.EdgeCutHints = EdgeCutHints(out.Cycles, ComputeDegrees(out.Adjacency).Out)
		return out
	}
	for _, h := range d.EdgeCutHints {
		out.EdgeCutHints = append(out.EdgeCutHints, EdgeCutHint{
			From: rel(h.From), To: rel(h.To), Score: h.Score, Reason: h.Reason,
		})
	}
	return out
}

// RelativePath rewrites m relative to root using forward slashes. Paths that
// cannot be made relative are returned unchanged.
func RelativePath(root string, m ModuleID) ModuleID {
	if root == "" {
		return m
	}
	r, err := filepath.Rel(filepath.FromSlash(NormalizePath(root)), filepath.FromSlash(m))
	if err != nil {
		return m
	}
	return filepath.ToSlash(r)
}
