package fileproc

import (
	"context"
	"os"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
	"github.com/parkrevil/firebat-sub000/pkg/parser"
)

// SourceFile is a file's content read once and shared by parsing and hashing.
type SourceFile struct {
	Path    string
	Content []byte
}

// ReadFiles loads file contents in parallel, keeping the input order.
func ReadFiles(ctx context.Context, files []string, opts Options) ([]SourceFile, *ProcessingErrors) {
	return ForEachFile(ctx, files, opts, func(path string) (SourceFile, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return SourceFile{}, err
		}
		return SourceFile{Path: path, Content: data}, nil
	})
}

// ParseSources parses already loaded files in parallel, keeping the input
// order. Files with syntax errors are returned with ParseErrors set; only
// unsupported languages and cancellation are reported as errors.
func ParseSources(ctx context.Context, sources []SourceFile, opts Options) ([]*ast.ParsedFile, *ProcessingErrors) {
	if len(sources) == 0 {
		return nil, nil
	}
	paths := make([]string, len(sources))
	byPath := make(map[string][]byte, len(sources))
	for i, s := range sources {
		paths[i] = s.Path
		byPath[s.Path] = s.Content
	}
	return MapFiles(ctx, paths, opts, func(p *parser.Parser, path string) (*ast.ParsedFile, error) {
		return p.Parse(ctx, path, byPath[path])
	})
}

// ParseFiles reads and parses files from disk.
func ParseFiles(ctx context.Context, files []string, opts Options) ([]*ast.ParsedFile, *ProcessingErrors) {
	return MapFiles(ctx, files, opts, func(p *parser.Parser, path string) (*ast.ParsedFile, error) {
		return p.ParseFile(ctx, path)
	})
}
