// Package duplicates finds structurally identical subtrees across parsed
// files by hashing a canonical serialization of each candidate.
package duplicates

import (
	"cmp"
	"slices"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// Analyzer detects code clones by subtree fingerprint.
// This analyzer is safe for concurrent use.
type Analyzer struct {
	config Config
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMode sets the fingerprint mode.
func WithMode(mode Mode) Option {
	return func(a *Analyzer) {
		a.config.Mode = mode
	}
}

// WithMinSize sets the minimum number of named nodes a candidate must have.
func WithMinSize(n int) Option {
	return func(a *Analyzer) {
		a.config.MinSize = n
	}
}

// WithNormalizeLiterals replaces literal values by their kind in shape mode.
func WithNormalizeLiterals(on bool) Option {
	return func(a *Analyzer) {
		a.config.NormalizeLiterals = on
	}
}

// WithConfig sets all duplicate configuration from a config struct.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) {
		a.config = cfg
	}
}

// New creates a new duplicate analyzer with default config.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if !a.config.Mode.Valid() {
		a.config.Mode = ModeExact
	}
	if a.config.MinSize < 1 {
		a.config.MinSize = 1
	}
	return a
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config {
	return a.config
}

type candidate struct {
	fingerprint uint64
	item        Item
}

// Analyze returns the clone groups found in files. Files that are nil or
// carry parse errors are ignored.
func (a *Analyzer) Analyze(files []*ast.ParsedFile) []Group {
	fp := newFingerprinter(a.config.Mode, a.config.NormalizeLiterals)

	var candidates []candidate
	for _, f := range files {
		if !f.Usable() {
			continue
		}
		candidates = a.collect(f, fp, candidates)
	}

	return group(a.config.Mode, candidates)
}

// collect appends every candidate subtree of f that meets the size floor.
func (a *Analyzer) collect(f *ast.ParsedFile, fp *fingerprinter, out []candidate) []candidate {
	ast.InspectWithParent(f.Program, func(n, parent ast.Node) bool {
		kind, ok := a.candidateKind(n)
		if !ok {
			return true
		}
		size := ast.CountNamed(n)
		if size < a.config.MinSize {
			return true
		}
		span := n.Span()
		out = append(out, candidate{
			fingerprint: fp.sum(n),
			item: Item{
				Kind:     kind,
				Header:   header(n, parent),
				FilePath: f.FilePath,
				Span:     Span{Start: span.Start, End: span.End},
				Size:     size,
			},
		})
		return true
	})
	return out
}

func (a *Analyzer) candidateKind(n ast.Node) (ItemKind, bool) {
	switch n.(type) {
	case *ast.FunctionDeclaration, *ast.FunctionExpression, *ast.ArrowFunction:
		return KindFunction, true
	case *ast.MethodDefinition:
		return KindMethod, true
	case *ast.ClassDeclaration, *ast.BlockStatement:
		return KindNode, true
	case *ast.TypeAliasDeclaration:
		return KindType, a.config.Mode == ModeExact
	case *ast.InterfaceDeclaration:
		return KindInterface, a.config.Mode == ModeExact
	}
	return "", false
}

// header names a candidate by its own declaration, then by the declaration
// that directly holds it (variable, property, method, function or class).
func header(n, parent ast.Node) string {
	if name := ast.DeclaredName(n); name != "" {
		return name
	}
	if name := ast.DeclaredName(parent); name != "" {
		return name
	}
	return anonymousHeader
}

// group buckets candidates by fingerprint and keeps buckets of two or more.
func group(mode Mode, candidates []candidate) []Group {
	buckets := make(map[uint64][]Item)
	for _, c := range candidates {
		buckets[c.fingerprint] = append(buckets[c.fingerprint], c.item)
	}

	groups := make([]Group, 0)
	for sum, items := range buckets {
		if len(items) < 2 {
			continue
		}
		slices.SortFunc(items, compareItems)
		groups = append(groups, Group{
			Fingerprint: formatFingerprint(mode, sum),
			Items:       items,
		})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(len(b.Items), len(a.Items)); c != 0 {
			return c
		}
		return cmp.Compare(a.Fingerprint, b.Fingerprint)
	})
	return groups
}

func compareItems(a, b Item) int {
	if c := cmp.Compare(a.FilePath, b.FilePath); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Span.Start.Line, b.Span.Start.Line); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Span.Start.Column, b.Span.Start.Column); c != 0 {
		return c
	}
	return cmp.Compare(a.Span.End.Line, b.Span.End.Line)
}
