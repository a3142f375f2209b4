// Package graph builds the module import graph of a TypeScript/JavaScript
// project and derives cycles, fan rankings and edge-cut hints from it.
//
// All functions are pure: they read the parsed files they are given and
// never touch the file system.
package graph

import (
	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// Analyzer runs the dependency analysis.
type Analyzer struct {
	maxCircuits int
	topN        int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxCircuits caps the elementary circuits enumerated per strongly
// connected component. Values <= 0 select DefaultMaxCircuits.
func WithMaxCircuits(n int) Option {
	return func(a *Analyzer) {
		a.maxCircuits = n
	}
}

// WithTopN sets the length of the fan rankings. Values <= 0 select DefaultTopN.
func WithTopN(n int) Option {
	return func(a *Analyzer) {
		a.topN = n
	}
}

// New creates a new dependency analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxCircuits: DefaultMaxCircuits,
		topN:        DefaultTopN,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxCircuits <= 0 {
		a.maxCircuits = DefaultMaxCircuits
	}
	if a.topN <= 0 {
		a.topN = DefaultTopN
	}
	return a
}

// Analyze builds the import graph of files and analyzes it. An empty input
// yields an empty analysis.
func (a *Analyzer) Analyze(files []*ast.ParsedFile) *DependencyAnalysis {
	return a.AnalyzeGraph(BuildImportGraph(files))
}

// AnalyzeGraph analyzes an already built import graph.
func (a *Analyzer) AnalyzeGraph(g *ImportGraph) *DependencyAnalysis {
	out := NewDependencyAnalysis()
	if g == nil {
		return out
	}
	if g.Adjacency != nil {
		out.Adjacency = g.Adjacency
	}
	if g.ExportStats != nil {
		out.ExportStats = g.ExportStats
	}

	out.Cycles = a.DetectCycles(out.Adjacency)
	deg := ComputeDegrees(out.Adjacency)
	out.FanInTop = TopFan(deg.In, a.topN)
	out.FanOutTop = TopFan(deg.Out, a.topN)
	out.EdgeCutHints = EdgeCutHints(out.Cycles, deg.Out)
	return out
}

// DetectCycles returns the canonical cycles of adj using the analyzer's cap.
func (a *Analyzer) DetectCycles(adj Adjacency) []Cycle {
	return detectCycles(adj, a.maxCircuits)
}
