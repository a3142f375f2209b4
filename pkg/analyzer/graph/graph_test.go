package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
	"github.com/parkrevil/firebat-sub000/pkg/parser"
)

// parseFiles parses path -> source pairs in path order.
func parseFiles(t *testing.T, sources map[string]string) []*ast.ParsedFile {
	t.Helper()
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	p := parser.New()
	defer p.Close()

	files := make([]*ast.ParsedFile, 0, len(paths))
	for _, path := range paths {
		f, err := p.Parse(context.Background(), path, []byte(sources[path]))
		require.NoError(t, err)
		files = append(files, f)
	}
	return files
}

// complete returns the complete digraph over the given names.
func complete(names ...string) Adjacency {
	adj := Adjacency{}
	for _, from := range names {
		for _, to := range names {
			if from != to {
				adj[from] = append(adj[from], to)
			}
		}
		sort.Strings(adj[from])
	}
	return adj
}

func TestNew(t *testing.T) {
	a := New()
	assert.Equal(t, DefaultMaxCircuits, a.maxCircuits)
	assert.Equal(t, DefaultTopN, a.topN)

	a = New(WithMaxCircuits(5), WithTopN(3))
	assert.Equal(t, 5, a.maxCircuits)
	assert.Equal(t, 3, a.topN)

	a = New(WithMaxCircuits(0), WithTopN(-1))
	assert.Equal(t, DefaultMaxCircuits, a.maxCircuits)
	assert.Equal(t, DefaultTopN, a.topN)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/src/a.ts", "/src/a.ts"},
		{"/src/./lib/../a.ts", "/src/a.ts"},
		{"/src/dir/", "/src/dir"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), tt.in)
	}
}

func TestBuildImportGraph(t *testing.T) {
	files := parseFiles(t, map[string]string{
		"/p/a.ts": `import { b } from "./b";
import type { C } from "./c";
import lodash from "lodash";
import { gone } from "./missing";
export { d } from "./dir";
export * from "../p/b";
`,
		"/p/b.ts":         `export const b = 1;`,
		"/p/c.tsx":        `export interface C {}`,
		"/p/dir/index.ts": `export const d = 2;`,
		"/p/broken.ts":    `import { a } from "./a"; function (`,
		"/p/plain.mjs":    `export default 1;`,
		"/p/u.ts":         `import "./u/x.js";`,
		"/p/u/x.js":       `import "../plain.mjs";`,
		"/p/self.ts":      `import "./self";`,
	})

	g := BuildImportGraph(files)

	assert.Equal(t, []ModuleID{"/p/b.ts", "/p/c.tsx", "/p/dir/index.ts"}, g.Adjacency["/p/a.ts"])
	assert.Equal(t, []ModuleID{}, g.Adjacency["/p/b.ts"])
	assert.Equal(t, []ModuleID{"/p/u/x.js"}, g.Adjacency["/p/u.ts"])
	assert.Equal(t, []ModuleID{"/p/plain.mjs"}, g.Adjacency["/p/u/x.js"])
	assert.Equal(t, []ModuleID{"/p/self.ts"}, g.Adjacency["/p/self.ts"])

	_, hasBroken := g.Adjacency["/p/broken.ts"]
	assert.False(t, hasBroken, "files with parse errors are excluded")
	_, hasBrokenStats := g.ExportStats["/p/broken.ts"]
	assert.False(t, hasBrokenStats)
}

func TestResolveSpecifierOrder(t *testing.T) {
	known := map[ModuleID]struct{}{
		"/p/u.ts":          {},
		"/p/u.js":          {},
		"/p/u/index.ts":    {},
		"/p/v/index.js":    {},
		"/p/v/index.cjs":   {},
		"/p/lit.generated": {},
	}
	tests := []struct {
		spec string
		want ModuleID
		ok   bool
	}{
		{"./u", "/p/u.ts", true},
		{"./u.js", "/p/u.js", true},
		{"./v", "/p/v/index.js", true},
		{"./lit.generated", "/p/lit.generated", true},
		{"../p/u", "/p/u.ts", true},
		{"./nope", "", false},
		{"react", "", false},
		{"@scope/pkg", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, ok := resolveSpecifier("/p/main.ts", tt.spec, known)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportStats(t *testing.T) {
	files := parseFiles(t, map[string]string{
		"/p/m.ts": `interface Hidden {}
abstract class Shape {}
class Concrete {}
export interface Repo {}
export abstract class Base {}
export class Impl {}
export function f() {}
export type Alias = string;
export enum Color { Red }
export const x = 1, y = 2;
export { Hidden, Shape, Concrete };
export { foreign } from "./foreign";
export * from "./all";
`,
		"/p/d.ts": `abstract class Model {}
export default Model;
`,
		"/p/none.ts": `const a = 1;`,
	})

	g := BuildImportGraph(files)

	// Repo, Base, Hidden, Shape are abstract; Impl, f, Alias, Color, x, y, Concrete are not.
	assert.Equal(t, ExportStat{Total: 11, Abstract: 4}, g.ExportStats["/p/m.ts"])
	assert.Equal(t, ExportStat{Total: 1, Abstract: 1}, g.ExportStats["/p/d.ts"])
	assert.Equal(t, ExportStat{}, g.ExportStats["/p/none.ts"])

	for m, s := range g.ExportStats {
		assert.LessOrEqual(t, s.Abstract, s.Total, m)
		assert.GreaterOrEqual(t, s.Abstract, 0, m)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	d := New().Analyze(nil)
	require.NotNil(t, d)
	assert.Empty(t, d.Cycles)
	assert.Empty(t, d.Adjacency)
	assert.Empty(t, d.FanInTop)
	assert.Empty(t, d.FanOutTop)
	assert.Empty(t, d.EdgeCutHints)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cycles":[],"adjacency":{},"exportStats":{},"fanInTop":[],"fanOutTop":[],"edgeCutHints":[]}`, string(data))
}

func TestDetectCycles_NoCycles(t *testing.T) {
	adj := Adjacency{"a": {"b"}, "b": {"c"}, "c": {}}
	assert.Empty(t, DetectCycles(adj))
}

func TestDetectCycles_Ring(t *testing.T) {
	adj := Adjacency{"c": {"a"}, "a": {"b"}, "b": {"c"}}
	cycles := DetectCycles(adj)
	require.Len(t, cycles, 1)
	assert.Equal(t, []ModuleID{"a", "b", "c", "a"}, cycles[0].Path)
}

func TestDetectCycles_SelfImport(t *testing.T) {
	adj := Adjacency{"m": {"m"}, "n": {"m"}}
	cycles := DetectCycles(adj)
	require.Len(t, cycles, 1)
	assert.Equal(t, []ModuleID{"m", "m"}, cycles[0].Path)
}

func TestDetectCycles_SelfImportInsideComponent(t *testing.T) {
	adj := Adjacency{"a": {"a", "b"}, "b": {"a"}}
	cycles := DetectCycles(adj)
	keys := make([]string, len(cycles))
	for i, c := range cycles {
		keys[i] = c.Key()
	}
	assert.ElementsMatch(t, []string{"a -> a", "a -> b -> a"}, keys)
}

func TestDetectCycles_Mutual(t *testing.T) {
	adj := Adjacency{"b": {"a"}, "a": {"b"}}
	cycles := DetectCycles(adj)
	require.Len(t, cycles, 1)
	assert.Equal(t, []ModuleID{"a", "b", "a"}, cycles[0].Path)
}

func TestDetectCycles_CompleteGraphCap(t *testing.T) {
	adj := complete("a", "b", "c", "d", "e", "f")
	cycles := DetectCycles(adj)
	assert.Len(t, cycles, DefaultMaxCircuits)

	// without the cap K6 has 409 elementary circuits
	assert.Len(t, detectCycles(adj, 1000), 409)
}

func TestDetectCycles_TwoCompleteGraphs(t *testing.T) {
	adj := complete("a", "b", "c", "d", "e", "f")
	for k, v := range complete("u", "v", "w", "x", "y", "z") {
		adj[k] = v
	}
	assert.Len(t, DetectCycles(adj), 2*DefaultMaxCircuits)
}

func TestDetectCycles_CustomCap(t *testing.T) {
	adj := complete("a", "b", "c", "d")
	assert.Len(t, New(WithMaxCircuits(7)).DetectCycles(adj), 7)
}

func TestDetectCycles_Idempotent(t *testing.T) {
	adj := complete("a", "b", "c", "d", "e", "f")
	adj["g"] = []ModuleID{"a", "g"}
	adj["a"] = append(adj["a"], "g")
	sort.Strings(adj["a"])

	first, err := json.Marshal(DetectCycles(adj))
	require.NoError(t, err)
	for range 5 {
		again, err := json.Marshal(DetectCycles(adj))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestDetectCycles_ClosedAndElementary(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := range 50 {
		adj := randomAdjacency(rng, 8, 0.3, true)
		for _, c := range DetectCycles(adj) {
			require.GreaterOrEqual(t, len(c.Path), 2, "round %d", round)
			assert.Equal(t, c.Path[0], c.Path[len(c.Path)-1], "cycle must close")

			seen := map[ModuleID]bool{}
			for _, m := range c.Nodes() {
				assert.False(t, seen[m], "node %s repeated in %v", m, c.Path)
				seen[m] = true
			}
			for i := 0; i+1 < len(c.Path); i++ {
				assert.True(t, adj.HasEdge(c.Path[i], c.Path[i+1]), "edge %s -> %s", c.Path[i], c.Path[i+1])
			}
			assert.Equal(t, c.Path, Canonicalize(c.Path), "cycle must be canonical")
		}
	}
}

func TestDetectCycles_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for round := range 40 {
		adj := randomAdjacency(rng, 7, 0.25, false)
		got := cycleKeys(detectCycles(adj, 1<<20))
		want := gonumCycleKeys(adj)
		assert.Equal(t, want, got, "round %d", round)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want []ModuleID
	}{
		{[]ModuleID{"c", "a", "b", "c"}, []ModuleID{"a", "b", "c", "a"}},
		{[]ModuleID{"b", "a", "b"}, []ModuleID{"a", "b", "a"}},
		{[]ModuleID{"m", "m"}, []ModuleID{"m", "m"}},
		{[]ModuleID{"b", "c", "a"}, []ModuleID{"a", "b", "c", "a"}},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), fmt.Sprint(tt.in))
	}
}

func TestComputeDegrees(t *testing.T) {
	adj := Adjacency{"a": {"a", "b"}, "b": {"c"}, "c": {}}
	d := ComputeDegrees(adj)
	assert.Equal(t, map[ModuleID]int{"a": 2, "b": 1, "c": 0}, d.Out)
	assert.Equal(t, map[ModuleID]int{"a": 1, "b": 1, "c": 1}, d.In)
}

func TestTopFan(t *testing.T) {
	counts := map[ModuleID]int{}
	for i := range 15 {
		counts[fmt.Sprintf("m%02d", i)] = i % 4
	}
	top := TopFan(counts, DefaultTopN)
	require.Len(t, top, DefaultTopN)
	for i, f := range top {
		assert.Positive(t, f.Count)
		if i > 0 {
			prev := top[i-1]
			ordered := prev.Count > f.Count || (prev.Count == f.Count && prev.Module < f.Module)
			assert.True(t, ordered, "%v before %v", prev, f)
		}
	}
	assert.Equal(t, FanStat{Module: "m03", Count: 3}, top[0])

	assert.Empty(t, TopFan(map[ModuleID]int{"x": 0}, DefaultTopN))
}

func TestEdgeCutHints(t *testing.T) {
	cycles := []Cycle{
		{Path: []ModuleID{"a", "b", "c", "a"}},
		{Path: []ModuleID{"b", "c", "b"}},
		{Path: []ModuleID{"m", "m"}},
	}
	out := map[ModuleID]int{"a": 1, "b": 3, "c": 3}
	hints := EdgeCutHints(cycles, out)
	assert.Equal(t, []EdgeCutHint{
		{From: "b", To: "c", Score: 3, Reason: "breaks cycle"},
		{From: "m", To: "m", Score: 1, Reason: "breaks cycle"},
	}, hints)
}

func TestAnalyze(t *testing.T) {
	files := parseFiles(t, map[string]string{
		"/p/a.ts": `import "./b"; export interface A {}`,
		"/p/b.ts": `import "./a"; import "./c"; export const b = 1;`,
		"/p/c.ts": `export class C {}`,
	})
	d := New().Analyze(files)

	require.Len(t, d.Cycles, 1)
	assert.Equal(t, []ModuleID{"/p/a.ts", "/p/b.ts", "/p/a.ts"}, d.Cycles[0].Path)
	assert.Equal(t, []FanStat{{Module: "/p/b.ts", Count: 2}, {Module: "/p/a.ts", Count: 1}}, d.FanOutTop)
	assert.Equal(t, []FanStat{{Module: "/p/a.ts", Count: 1}, {Module: "/p/b.ts", Count: 1}, {Module: "/p/c.ts", Count: 1}}, d.FanInTop)
	assert.Equal(t, []EdgeCutHint{{From: "/p/b.ts", To: "/p/a.ts", Score: 2, Reason: "breaks cycle"}}, d.EdgeCutHints)
	assert.Equal(t, ExportStat{Total: 1, Abstract: 1}, d.ExportStats["/p/a.ts"])

	rel := d.Relative("/p")
	assert.Equal(t, []ModuleID{"a.ts", "b.ts", "a.ts"}, rel.Cycles[0].Path)
	assert.Equal(t, []ModuleID{"a.ts", "c.ts"}, rel.Adjacency["b.ts"])
	assert.Equal(t, "b.ts", rel.EdgeCutHints[0].From)
}

func TestRelativeOutsideRoot(t *testing.T) {
	d := NewDependencyAnalysis()
	d.Adjacency = Adjacency{"/w/app/m.ts": {"/w/z.ts"}, "/w/z.ts": {"/w/app/m.ts"}}
	d.Cycles = DetectCycles(d.Adjacency)
	deg := ComputeDegrees(d.Adjacency)
	d.FanInTop = TopFan(deg.In, 10)
	d.FanOutTop = TopFan(deg.Out, 10)
	d.EdgeCutHints = EdgeCutHints(d.Cycles, deg.Out)
	require.Equal(t, []ModuleID{"/w/app/m.ts", "/w/z.ts", "/w/app/m.ts"}, d.Cycles[0].Path)

	rel := d.Relative("/w/app")
	assert.Equal(t, []ModuleID{"../z.ts", "m.ts", "../z.ts"}, rel.Cycles[0].Path)
	assert.Equal(t, []FanStat{{Module: "../z.ts", Count: 1}, {Module: "m.ts", Count: 1}}, rel.FanInTop)
	assert.Equal(t, []FanStat{{Module: "../z.ts", Count: 1}, {Module: "m.ts", Count: 1}}, rel.FanOutTop)
	assert.Equal(t, []EdgeCutHint{{From: "../z.ts", To: "m.ts", Score: 1, Reason: "breaks cycle"}}, rel.EdgeCutHints)
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "src/a.ts", RelativePath("/repo", "/repo/src/a.ts"))
	assert.Equal(t, "../other/a.ts", RelativePath("/repo", "/other/a.ts"))
	assert.Equal(t, "/repo/a.ts", RelativePath("", "/repo/a.ts"))
}

func TestToMermaid(t *testing.T) {
	d := NewDependencyAnalysis()
	d.Adjacency = Adjacency{"/p/a.ts": {"/p/b.ts"}, "/p/b.ts": {"/p/a.ts", "/p/c.ts"}, "/p/c.ts": {}}
	d.Cycles = DetectCycles(d.Adjacency)

	out := d.ToMermaid(DefaultMermaidOptions())
	assert.Contains(t, out, "graph LR\n")
	assert.Contains(t, out, `_p_a_ts["/p/a.ts"]`)
	assert.Contains(t, out, "_p_a_ts ==> _p_b_ts")
	assert.Contains(t, out, "_p_b_ts --> _p_c_ts")

	limited := d.ToMermaid(MermaidOptions{MaxNodes: 2, Direction: DirectionTD})
	assert.Contains(t, limited, "graph TD\n")
	assert.NotContains(t, limited, `["/p/c.ts"]`)
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "empty", SanitizeMermaidID(""))
	assert.Equal(t, "n1abc", SanitizeMermaidID("1abc"))
	assert.Equal(t, "src_a_ts", SanitizeMermaidID("src/a.ts"))
	assert.Equal(t, "a &quot;b&quot; &lt;c&gt;", EscapeMermaidLabel(`a "b" <c>`))
}

func randomAdjacency(rng *rand.Rand, n int, p float64, selfLoops bool) Adjacency {
	adj := Adjacency{}
	for i := range n {
		from := fmt.Sprintf("n%d", i)
		adj[from] = []ModuleID{}
		for j := range n {
			if i == j && !selfLoops {
				continue
			}
			if rng.Float64() < p {
				adj[from] = append(adj[from], fmt.Sprintf("n%d", j))
			}
		}
		sort.Strings(adj[from])
	}
	return adj
}

func cycleKeys(cycles []Cycle) []string {
	keys := make([]string, 0, len(cycles))
	for _, c := range cycles {
		keys = append(keys, c.Key())
	}
	sort.Strings(keys)
	return keys
}

// gonumCycleKeys enumerates cycles with gonum's own Johnson implementation.
func gonumCycleKeys(adj Adjacency) []string {
	g := newIndexedGraph(adj)
	keys := []string{}
	for _, cyc := range topo.DirectedCyclesIn(g.toGonum()) {
		path := make([]ModuleID, len(cyc))
		for i, n := range cyc {
			path[i] = g.names[n.ID()]
		}
		keys = append(keys, Cycle{Path: Canonicalize(path)}.Key())
	}
	sort.Strings(keys)
	return keys
}
