package graph

import (
	"strings"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes  int              `json:"maxNodes" toon:"maxNodes"`
	MaxEdges  int              `json:"maxEdges" toon:"maxEdges"`
	Direction MermaidDirection `json:"direction" toon:"direction"`
	// HighlightCycles draws edges that lie on a detected cycle as thick arrows.
	HighlightCycles bool `json:"highlightCycles" toon:"highlightCycles"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
	DirectionBT MermaidDirection = "BT" // Bottom-top
	DirectionRL MermaidDirection = "RL" // Right-left
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:        50,
		MaxEdges:        150,
		Direction:       DirectionLR,
		HighlightCycles: true,
	}
}

// ToMermaid renders the import graph as a Mermaid flowchart. Modules are
// emitted in name order; when MaxNodes is exceeded the modules with the
// highest fan-in are kept.
func (d *DependencyAnalysis) ToMermaid(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}

	var b strings.Builder
	b.WriteString("graph ")
	b.WriteString(string(direction))
	b.WriteByte('\n')

	modules := d.Adjacency.Modules()
	if opts.MaxNodes > 0 && len(modules) > opts.MaxNodes {
		modules = keepMostImported(d.Adjacency, modules, opts.MaxNodes)
	}
	keep := make(map[ModuleID]bool, len(modules))
	for _, m := range modules {
		keep[m] = true
		b.WriteString("    ")
		b.WriteString(SanitizeMermaidID(m))
		b.WriteString(`["`)
		b.WriteString(EscapeMermaidLabel(m))
		b.WriteString("\"]\n")
	}

	onCycle := map[[2]ModuleID]bool{}
	if opts.HighlightCycles {
		for _, c := range d.Cycles {
			for i := 0; i+1 < len(c.Path); i++ {
				onCycle[[2]ModuleID{c.Path[i], c.Path[i+1]}] = true
			}
		}
	}

	edges := 0
	for _, from := range modules {
		for _, to := range d.Adjacency[from] {
			if !keep[to] {
				continue
			}
			if opts.MaxEdges > 0 && edges >= opts.MaxEdges {
				return b.String()
			}
			arrow := "-->"
			if onCycle[[2]ModuleID{from, to}] {
				arrow = "==>"
			}
			b.WriteString("    ")
			b.WriteString(SanitizeMermaidID(from))
			b.WriteByte(' ')
			b.WriteString(arrow)
			b.WriteByte(' ')
			b.WriteString(SanitizeMermaidID(to))
			b.WriteByte('\n')
			edges++
		}
	}
	return b.String()
}

// keepMostImported returns the n modules with the highest fan-in, in name order.
func keepMostImported(adj Adjacency, modules []ModuleID, n int) []ModuleID {
	ranked := TopFan(ComputeDegrees(adj).In, 0)
	keep := make(map[ModuleID]bool, n)
	for _, f := range ranked {
		if len(keep) == n {
			break
		}
		keep[f.Module] = true
	}
	for _, m := range modules {
		if len(keep) == n {
			break
		}
		keep[m] = true
	}
	out := make([]ModuleID, 0, n)
	for _, m := range modules {
		if keep[m] {
			out = append(out, m)
		}
	}
	return out
}

// SanitizeMermaidID makes an ID safe for Mermaid diagrams.
func SanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	var b strings.Builder
	b.Grow(len(id) + 1)
	if id[0] >= '0' && id[0] <= '9' {
		b.WriteByte('n')
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

var mermaidEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
	"|", "&#124;",
	"[", "&#91;",
	"]", "&#93;",
	"{", "&#123;",
	"}", "&#125;",
	"\n", "<br/>",
)

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	return mermaidEscaper.Replace(s)
}
