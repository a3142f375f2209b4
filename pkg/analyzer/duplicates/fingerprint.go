package duplicates

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// fingerprinter hashes a subtree as a pre-order stream of
// (kind, child count, content) records with explicit close markers, so the
// digest depends on node types and nesting but never on file or position.
// It is reused across candidates and is not safe for concurrent use.
type fingerprinter struct {
	mode              Mode
	normalizeLiterals bool
	digest            *xxhash.Digest
	names             map[string]int
	scratch           []byte
}

func newFingerprinter(mode Mode, normalizeLiterals bool) *fingerprinter {
	return &fingerprinter{
		mode:              mode,
		normalizeLiterals: normalizeLiterals,
		digest:            xxhash.New(),
		names:             map[string]int{},
	}
}

type fpItem struct {
	n     ast.Node
	close bool
}

// sum returns the fingerprint of the subtree rooted at root.
func (f *fingerprinter) sum(root ast.Node) uint64 {
	f.digest.Reset()
	clear(f.names)

	stack := []fpItem{{n: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.close {
			_, _ = f.digest.Write([]byte{')'})
			continue
		}

		kids := it.n.Children()
		f.writeRecord(it.n, len(kids))
		stack = append(stack, fpItem{close: true})
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] != nil {
				stack = append(stack, fpItem{n: kids[i]})
			}
		}
	}
	return f.digest.Sum64()
}

// writeRecord writes "(" kind "#" childCount content, where content is
// length-prefixed to keep records unambiguous.
func (f *fingerprinter) writeRecord(n ast.Node, children int) {
	b := f.scratch[:0]
	b = append(b, '(')
	b = append(b, n.Kind()...)
	b = append(b, '#')
	b = strconv.AppendInt(b, int64(children), 10)

	content := f.content(n)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(len(content)), 10)
	b = append(b, ':')
	b = append(b, content...)

	f.scratch = b
	_, _ = f.digest.Write(b)
}

// content returns the mode-dependent payload of a node.
func (f *fingerprinter) content(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Identifier:
		if f.mode == ModeShape {
			return f.placeholder(n.Name)
		}
		return n.Name
	case *ast.Literal:
		if f.mode == ModeShape && f.normalizeLiterals {
			return "lit:" + string(n.LitKind)
		}
		return n.Raw
	case *ast.Other:
		if n.Token != "" {
			return n.Type + "=" + n.Token
		}
		return n.Type
	case *ast.VariableDeclaration:
		return n.DeclKind
	case *ast.MethodDefinition:
		return n.Accessor
	}
	return ""
}

// placeholder maps a name to $n by order of first occurrence in the candidate.
func (f *fingerprinter) placeholder(name string) string {
	idx, ok := f.names[name]
	if !ok {
		idx = len(f.names)
		f.names[name] = idx
	}
	return "$" + strconv.Itoa(idx)
}

// formatFingerprint renders a digest as a fixed-width hex string.
func formatFingerprint(mode Mode, sum uint64) string {
	hex := strconv.FormatUint(sum, 16)
	for len(hex) < 16 {
		hex = "0" + hex
	}
	return string(mode) + ":" + hex
}
