// Package parser adapts tree-sitter onto the ast package for TypeScript and
// JavaScript sources.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// ErrUnsupportedLanguage is returned for files whose extension is not a
// TypeScript or JavaScript extension.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// maxParseErrors bounds the syntax errors recorded per file.
const maxParseErrors = 50

// Language represents a supported source language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

// Parser wraps a tree-sitter parser. A Parser is not safe for concurrent
// use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ast.ParsedFile, error) {
	if DetectLanguage(path) == LangUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(ctx, path, source)
}

// Parse parses source using the language implied by path. Syntax errors do
// not fail the call; they are reported in ParsedFile.ParseErrors.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*ast.ParsedFile, error) {
	lang := DetectLanguage(path)
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	file := &ast.ParsedFile{
		FilePath: path,
		Source:   source,
	}
	if root.HasError() {
		file.ParseErrors = collectParseErrors(root, source)
	}

	c := converter{source: source}
	prog, ok := c.convert(root).(*ast.Program)
	if !ok {
		prog = &ast.Program{Base: ast.Base{Loc: spanOf(root)}}
	}
	file.Program = prog
	return file, nil
}

// GetTreeSitterLanguage returns the tree-sitter grammar for lang.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".jsx":
		return LangTSX // JSX parses with the TSX grammar
	default:
		return LangUnknown
	}
}

// IsSupported reports whether path has a parseable extension.
func IsSupported(path string) bool {
	return DetectLanguage(path) != LangUnknown
}

// collectParseErrors gathers ERROR and MISSING nodes in document order.
func collectParseErrors(root *sitter.Node, source []byte) []ast.ParseError {
	var errs []ast.ParseError
	stack := []*sitter.Node{root}
	for len(stack) > 0 && len(errs) < maxParseErrors {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case n.IsMissing():
			errs = append(errs, ast.ParseError{
				Line:    int(n.StartPoint().Row) + 1,
				Column:  int(n.StartPoint().Column),
				Message: fmt.Sprintf("missing %s", n.Type()),
			})
			continue
		case n.IsError():
			errs = append(errs, ast.ParseError{
				Line:    int(n.StartPoint().Row) + 1,
				Column:  int(n.StartPoint().Column),
				Message: fmt.Sprintf("unexpected %q", truncate(nodeText(n, source), 40)),
			})
			continue
		case !n.HasError():
			continue
		}

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return errs
}

// nodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
