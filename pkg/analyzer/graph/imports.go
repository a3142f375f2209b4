package graph

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// resolveExtensions are tried, in order, after the literal specifier.
var resolveExtensions = []string{".ts", ".tsx", ".js", ".mjs", ".cjs"}

// NormalizePath converts a file path into a ModuleID: forward slashes,
// cleaned, no trailing separator.
func NormalizePath(p string) ModuleID {
	if p == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(p))
}

// BuildImportGraph scans every usable file for relative import and
// re-export sources, resolves them against the set of known files and
// returns the adjacency together with per-module export statistics.
// Files with parse errors are ignored entirely.
func BuildImportGraph(files []*ast.ParsedFile) *ImportGraph {
	g := &ImportGraph{
		Adjacency:   Adjacency{},
		ExportStats: map[ModuleID]ExportStat{},
	}

	known := make(map[ModuleID]struct{}, len(files))
	for _, f := range files {
		if f.Usable() {
			known[NormalizePath(f.FilePath)] = struct{}{}
		}
	}

	for _, f := range files {
		if !f.Usable() {
			continue
		}
		from := NormalizePath(f.FilePath)

		var targets []ModuleID
		for _, spec := range importSources(f.Program) {
			if to, ok := resolveSpecifier(from, spec, known); ok {
				targets = append(targets, to)
			}
		}
		g.Adjacency[from] = mergeTargets(g.Adjacency[from], targets)
		g.ExportStats[from] = addStats(g.ExportStats[from], exportStats(f.Program))
	}
	return g
}

// importSources collects the literal sources of import declarations and
// re-exports anywhere in the tree, in source order.
func importSources(prog *ast.Program) []string {
	var sources []string
	ast.Inspect(prog, func(n ast.Node) bool {
		var src string
		switch n := n.(type) {
		case *ast.ImportDeclaration:
			src = n.SourceValue()
		case *ast.ExportNamedDeclaration:
			src = n.SourceValue()
		case *ast.ExportAllDeclaration:
			src = n.SourceValue()
		case *ast.FunctionDeclaration, *ast.FunctionExpression, *ast.ArrowFunction,
			*ast.MethodDefinition, *ast.ClassDeclaration:
			// import declarations cannot appear inside function or class bodies
			return false
		default:
			return true
		}
		if src != "" {
			sources = append(sources, src)
		}
		return false
	})
	return sources
}

// isRelative reports whether spec refers to a file rather than a package.
func isRelative(spec string) bool {
	return strings.HasPrefix(spec, ".")
}

// resolveSpecifier maps a relative specifier to a known module. Candidates
// are the literal path, the path with each known extension and the path's
// index file with each known extension.
func resolveSpecifier(from ModuleID, spec string, known map[ModuleID]struct{}) (ModuleID, bool) {
	if !isRelative(spec) {
		return "", false
	}
	base := path.Join(path.Dir(from), spec)
	if _, ok := known[base]; ok {
		return base, true
	}
	for _, ext := range resolveExtensions {
		if _, ok := known[base+ext]; ok {
			return base + ext, true
		}
	}
	for _, ext := range resolveExtensions {
		candidate := base + "/index" + ext
		if _, ok := known[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// mergeTargets returns the sorted union of existing and added.
func mergeTargets(existing, added []ModuleID) []ModuleID {
	out := make([]ModuleID, 0, len(existing)+len(added))
	out = append(out, existing...)
	out = append(out, added...)
	slices.Sort(out)
	return slices.Compact(out)
}

func addStats(a, b ExportStat) ExportStat {
	return ExportStat{Total: a.Total + b.Total, Abstract: a.Abstract + b.Abstract}
}
