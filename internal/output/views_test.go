package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkrevil/firebat-sub000/internal/service/analysis"
	"github.com/parkrevil/firebat-sub000/internal/vcs"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/coupling"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/duplicates"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

func sampleDependencies() *graph.DependencyAnalysis {
	d := graph.NewDependencyAnalysis()
	d.Adjacency = graph.Adjacency{
		"src/a.ts": {"src/b.ts"},
		"src/b.ts": {"src/a.ts"},
	}
	d.Cycles = []graph.Cycle{{Path: []string{"src/a.ts", "src/b.ts", "src/a.ts"}}}
	d.FanInTop = []graph.FanStat{{Module: "src/a.ts", Count: 1}, {Module: "src/b.ts", Count: 1}}
	d.FanOutTop = []graph.FanStat{{Module: "src/a.ts", Count: 1}, {Module: "src/b.ts", Count: 1}}
	d.EdgeCutHints = []graph.EdgeCutHint{{From: "src/a.ts", To: "src/b.ts", Score: 1, Reason: "breaks 1 cycle"}}
	return d
}

func sampleCoupling() *analysis.CouplingReport {
	hotspots := []coupling.Hotspot{{
		Module:            "src/a.ts",
		Score:             85,
		Signals:           []string{"bidirectional-coupling"},
		Metrics:           coupling.Metrics{FanIn: 1, FanOut: 1, Instability: 0.5, Distance: 0.5},
		Why:               "Imports a module that imports it back.",
		SuggestedRefactor: "Break the mutual import.",
	}}
	return &analysis.CouplingReport{Hotspots: hotspots, Summary: coupling.Summarize(hotspots)}
}

func sampleDuplicates() *analysis.DuplicatesReport {
	groups := []duplicates.Group{{
		Fingerprint: "exact:00000000000000ff",
		Items: []duplicates.Item{
			{Kind: duplicates.KindFunction, Header: "add", FilePath: "one.ts", Size: 12,
				Span: duplicates.Span{Start: ast.Position{Line: 1, Column: 1}, End: ast.Position{Line: 7, Column: 2}}},
			{Kind: duplicates.KindFunction, Header: "add", FilePath: "two.ts", Size: 12,
				Span: duplicates.Span{Start: ast.Position{Line: 3, Column: 1}, End: ast.Position{Line: 9, Column: 2}}},
		},
	}}
	return &analysis.DuplicatesReport{
		Mode:    duplicates.ModeExact,
		MinSize: 10,
		Groups:  groups,
		Summary: duplicates.Summarize(groups),
	}
}

func TestDependencyView(t *testing.T) {
	view := NewDependencyView(sampleDependencies())

	var text bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatText, &text, false).Output(view))
	assert.Contains(t, text.String(), "Import cycles")
	assert.Contains(t, text.String(), "src/a.ts -> src/b.ts -> src/a.ts")
	assert.Contains(t, text.String(), "breaks 1 cycle")

	var mmd bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatMermaid, &mmd, false).Output(view))
	assert.True(t, strings.HasPrefix(mmd.String(), "graph LR\n"))
	assert.Contains(t, mmd.String(), "src_a_ts ==> src_b_ts")

	var js bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &js, false).Output(view))
	var decoded graph.DependencyAnalysis
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, view.Analysis.Cycles, decoded.Cycles)
}

func TestDependencyView_NoCycles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDependencyView(graph.NewDependencyAnalysis()).RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "No import cycles.")
	assert.Contains(t, buf.String(), "Nothing to cut.")
}

func TestCouplingView(t *testing.T) {
	view := &CouplingView{Report: sampleCoupling()}

	var md bytes.Buffer
	require.NoError(t, view.RenderMarkdown(&md))
	assert.Contains(t, md.String(), "## Coupling")
	assert.Contains(t, md.String(), "| src/a.ts | 85 | bidirectional-coupling | 1 | 1 | 0.50 | 0.00 | 0.50 |")
	assert.Contains(t, md.String(), "Break the mutual import.")

	var toon bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatTOON, &toon, false).Output(view))
	assert.Contains(t, toon.String(), "hotspots")

	var empty bytes.Buffer
	require.NoError(t, (&CouplingView{Report: &analysis.CouplingReport{}}).RenderText(&empty, false))
	assert.Contains(t, empty.String(), "No coupling hotspots.")
}

func TestDuplicatesView(t *testing.T) {
	view := &DuplicatesView{Report: sampleDuplicates()}

	var text bytes.Buffer
	require.NoError(t, view.RenderText(&text, false))
	out := text.String()
	assert.Contains(t, out, "Mode: exact, minimum size: 10")
	assert.Contains(t, out, "Groups: 1, items: 2, duplicated nodes: 24")
	assert.Contains(t, out, "one.ts:1-7")
	assert.Contains(t, out, "two.ts:3-9")

	var toon bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatTOON, &toon, false).Output(view))
	assert.Contains(t, toon.String(), "groups")
	assert.Contains(t, toon.String(), "function")
	assert.Contains(t, toon.String(), "one.ts")
}

func TestReportView(t *testing.T) {
	report := &analysis.Report{
		Project:      vcs.Project{Root: "/work/app", Revision: "0123456789abcdef0123", Branch: "main"},
		Files:        3,
		Excluded:     []string{"src/bad.ts"},
		Dependencies: sampleDependencies(),
		Coupling:     sampleCoupling(),
		Duplicates:   sampleDuplicates(),
	}
	view := NewReportView(report)

	var md bytes.Buffer
	require.NoError(t, view.RenderMarkdown(&md))
	out := md.String()
	assert.Contains(t, out, "Project: /work/app @ 0123456789ab (main)")
	assert.Contains(t, out, "Files: 2 analyzed, 1 excluded")
	assert.Contains(t, out, "src/bad.ts")
	assert.Less(t, strings.Index(out, "## Dependencies"), strings.Index(out, "## Coupling"))
	assert.Less(t, strings.Index(out, "## Coupling"), strings.Index(out, "## Duplicates"))

	var toon bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatTOON, &toon, false).Output(view))
	assert.Contains(t, toon.String(), "dependencies")
	assert.Contains(t, toon.String(), "duplicates")

	var mmd bytes.Buffer
	require.NoError(t, view.RenderMermaid(&mmd))
	assert.Contains(t, mmd.String(), "graph LR")

	report.Dependencies = nil
	assert.ErrorIs(t, view.RenderMermaid(&mmd), ErrNoDiagram)
}
