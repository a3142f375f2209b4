package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parkrevil/firebat-sub000/internal/service/analysis"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
)

// DependencyView renders a dependency analysis.
type DependencyView struct {
	Analysis *graph.DependencyAnalysis
	Mermaid  graph.MermaidOptions
}

// NewDependencyView wraps d with the default diagram options.
func NewDependencyView(d *graph.DependencyAnalysis) *DependencyView {
	return &DependencyView{Analysis: d, Mermaid: graph.DefaultMermaidOptions()}
}

func (v *DependencyView) report() *Report {
	d := v.Analysis
	return &Report{
		Title: "Dependencies",
		Summary: []string{
			fmt.Sprintf("Modules: %d", len(d.Adjacency.Modules())),
			fmt.Sprintf("Cycles: %d", len(d.Cycles)),
		},
		Sections: []Renderable{
			cyclesTable(d.Cycles),
			fanTable("Most imported", "Fan-in", d.FanInTop),
			fanTable("Most importing", "Fan-out", d.FanOutTop),
			edgeCutTable(d.EdgeCutHints),
		},
	}
}

func (v *DependencyView) RenderData() any { return v.Analysis }

func (v *DependencyView) RenderText(w io.Writer, colored bool) error {
	return v.report().RenderText(w, colored)
}

func (v *DependencyView) RenderMarkdown(w io.Writer) error {
	return v.report().RenderMarkdown(w)
}

func (v *DependencyView) RenderMermaid(w io.Writer) error {
	_, err := io.WriteString(w, v.Analysis.ToMermaid(v.Mermaid))
	return err
}

func cyclesTable(cycles []graph.Cycle) *Table {
	rows := make([][]string, len(cycles))
	for i, c := range cycles {
		rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(len(c.Nodes())), c.Key()}
	}
	t := NewTable("Import cycles", []string{"#", "Length", "Path"}, rows, nil, nil)
	t.Empty = "No import cycles."
	return t
}

func fanTable(title, column string, stats []graph.FanStat) *Table {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{s.Module, strconv.Itoa(s.Count)}
	}
	t := NewTable(title, []string{"Module", column}, rows, nil, nil)
	t.Empty = "No imports."
	return t
}

func edgeCutTable(hints []graph.EdgeCutHint) *Table {
	rows := make([][]string, len(hints))
	for i, h := range hints {
		rows[i] = []string{h.From, h.To, strconv.Itoa(h.Score), h.Reason}
	}
	t := NewTable("Suggested edge cuts", []string{"From", "To", "Score", "Reason"}, rows, nil, nil)
	t.Empty = "Nothing to cut."
	return t
}

// CouplingView renders a coupling report.
type CouplingView struct {
	Report *analysis.CouplingReport
}

func (v *CouplingView) tables(colored bool) []Renderable {
	hotspots := v.Report.Hotspots
	rows := make([][]string, len(hotspots))
	advice := make([][]string, len(hotspots))
	for i, h := range hotspots {
		score := strconv.Itoa(h.Score)
		if colored {
			score = ScoreColor(h.Score, score)
		}
		m := h.Metrics
		rows[i] = []string{
			h.Module,
			score,
			strings.Join(h.Signals, ", "),
			strconv.Itoa(m.FanIn),
			strconv.Itoa(m.FanOut),
			formatRatio(m.Instability),
			formatRatio(m.Abstractness),
			formatRatio(m.Distance),
		}
		advice[i] = []string{h.Module, h.Why, h.SuggestedRefactor}
	}

	summary := v.Report.Summary
	footer := []string{
		fmt.Sprintf("%d hotspots", summary.TotalHotspots), "", "", "", "",
		formatRatio(summary.AverageInstability), "", formatRatio(summary.AverageDistance),
	}
	if len(rows) == 0 {
		footer = nil
	}

	hot := NewTable("Coupling hotspots",
		[]string{"Module", "Score", "Signals", "Fan-in", "Fan-out", "I", "A", "D"},
		rows, footer, nil)
	hot.Empty = "No coupling hotspots."
	out := []Renderable{hot}
	if len(advice) > 0 {
		out = append(out, NewTable("Advice", []string{"Module", "Why", "Suggested refactor"}, advice, nil, nil))
	}
	return out
}

func (v *CouplingView) RenderData() any { return v.Report }

func (v *CouplingView) RenderText(w io.Writer, colored bool) error {
	r := &Report{Title: "Coupling", Sections: v.tables(colored)}
	return r.RenderText(w, colored)
}

func (v *CouplingView) RenderMarkdown(w io.Writer) error {
	r := &Report{Title: "Coupling", Sections: v.tables(false)}
	return r.RenderMarkdown(w)
}

// DuplicatesView renders a clone report.
type DuplicatesView struct {
	Report *analysis.DuplicatesReport
}

func (v *DuplicatesView) report() *Report {
	s := v.Report.Summary
	rows := make([][]string, 0, s.TotalItems)
	for i, g := range v.Report.Groups {
		for _, it := range g.Items {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				string(it.Kind),
				it.Header,
				fmt.Sprintf("%s:%d-%d", it.FilePath, it.Span.Start.Line, it.Span.End.Line),
				strconv.Itoa(it.Size),
			})
		}
	}
	t := NewTable("Clone groups", []string{"Group", "Kind", "Header", "Location", "Size"}, rows, nil, nil)
	t.Empty = "No duplicates found."

	return &Report{
		Title: "Duplicates",
		Summary: []string{
			fmt.Sprintf("Mode: %s, minimum size: %d", v.Report.Mode, v.Report.MinSize),
			fmt.Sprintf("Groups: %d, items: %d, duplicated nodes: %d", s.TotalGroups, s.TotalItems, s.DuplicatedNodes),
		},
		Sections: []Renderable{t},
	}
}

func (v *DuplicatesView) RenderData() any { return v.Report }

func (v *DuplicatesView) RenderText(w io.Writer, colored bool) error {
	return v.report().RenderText(w, colored)
}

func (v *DuplicatesView) RenderMarkdown(w io.Writer) error {
	return v.report().RenderMarkdown(w)
}

// ReportView renders the combined report.
type ReportView struct {
	Report  *analysis.Report
	Mermaid graph.MermaidOptions
}

// NewReportView wraps r with the default diagram options.
func NewReportView(r *analysis.Report) *ReportView {
	return &ReportView{Report: r, Mermaid: graph.DefaultMermaidOptions()}
}

func (v *ReportView) header() *Report {
	r := v.Report
	project := r.Project.Root
	if r.Project.Revision != "" {
		rev := r.Project.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		project += " @ " + rev
	}
	if r.Project.Branch != "" {
		project += " (" + r.Project.Branch + ")"
	}
	summary := []string{
		"Project: " + project,
		fmt.Sprintf("Files: %d analyzed, %d excluded", r.Files-len(r.Excluded), len(r.Excluded)),
	}
	var sections []Renderable
	if len(r.Excluded) > 0 {
		rows := make([][]string, len(r.Excluded))
		for i, p := range r.Excluded {
			rows[i] = []string{p}
		}
		sections = append(sections, NewTable("Excluded files", []string{"Path"}, rows, nil, nil))
	}
	return &Report{Title: "Firebat report", Summary: summary, Sections: sections}
}

func (v *ReportView) parts() []Renderable {
	var parts []Renderable
	if v.Report.Dependencies != nil {
		parts = append(parts, &DependencyView{Analysis: v.Report.Dependencies, Mermaid: v.Mermaid})
	}
	if v.Report.Coupling != nil {
		parts = append(parts, &CouplingView{Report: v.Report.Coupling})
	}
	if v.Report.Duplicates != nil {
		parts = append(parts, &DuplicatesView{Report: v.Report.Duplicates})
	}
	return parts
}

func (v *ReportView) RenderData() any { return v.Report }

func (v *ReportView) RenderText(w io.Writer, colored bool) error {
	if err := v.header().RenderText(w, colored); err != nil {
		return err
	}
	for _, p := range v.parts() {
		if err := p.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (v *ReportView) RenderMarkdown(w io.Writer) error {
	if err := v.header().RenderMarkdown(w); err != nil {
		return err
	}
	for _, p := range v.parts() {
		if err := p.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

// RenderMermaid draws the import graph when dependencies were analyzed.
func (v *ReportView) RenderMermaid(w io.Writer) error {
	if v.Report.Dependencies == nil {
		return ErrNoDiagram
	}
	return (&DependencyView{Analysis: v.Report.Dependencies, Mermaid: v.Mermaid}).RenderMermaid(w)
}

func formatRatio(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
