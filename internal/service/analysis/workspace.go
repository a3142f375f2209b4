package analysis

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/parkrevil/firebat-sub000/internal/cache"
	"github.com/parkrevil/firebat-sub000/internal/fileproc"
	"github.com/parkrevil/firebat-sub000/internal/service/scanner"
	"github.com/parkrevil/firebat-sub000/internal/vcs"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// workspace holds the sources of one request. Parsing is deferred until a
// detector misses the cache and happens at most once.
type workspace struct {
	svc        *Service
	project    vcs.Project
	sources    []fileproc.SourceFile
	digest     string
	unreadable []string
	onProgress fileproc.ProgressFunc

	parsed   bool
	files    []*ast.ParsedFile
	excluded []string
}

// load scans paths and reads every source file. Unreadable files are
// excluded rather than failing the request.
func (s *Service) load(ctx context.Context, paths []string, onProgress fileproc.ProgressFunc) (*workspace, error) {
	scan, err := scanner.New(
		scanner.WithConfig(s.config),
		scanner.WithOpener(s.opener),
	).ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scan complete", "files", len(scan.Files), "root", scan.Project.Root)

	sources, readErrs := fileproc.ReadFiles(ctx, scan.Files, s.procOptions(nil))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws := &workspace{
		svc:        s,
		project:    scan.Project,
		sources:    sources,
		onProgress: onProgress,
	}
	if readErrs.HasErrors() {
		for _, e := range readErrs.Errors {
			s.logger.Warn("skipping unreadable file", "path", e.Path, "error", e.Err)
			ws.unreadable = append(ws.unreadable, s.relative(e.Path))
		}
	}
	ws.digest = sourcesDigest(sources)
	return ws, nil
}

func (s *Service) procOptions(onProgress fileproc.ProgressFunc) fileproc.Options {
	return fileproc.Options{MaxWorkers: s.maxWorkers, OnProgress: onProgress}
}

func (s *Service) relative(path string) string {
	return graph.RelativePath(s.workDir, graph.NormalizePath(path))
}

// sourcesDigest hashes the sorted (path, content hash) pairs.
func sourcesDigest(sources []fileproc.SourceFile) string {
	h := blake3.New()
	for _, src := range sources {
		h.Write([]byte(src.Path))
		h.Write([]byte{0})
		h.Write([]byte(cache.HashBytes(src.Content)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// inputsDigest combines the sources digest with a detector's options.
func (ws *workspace) inputsDigest(kind string, options ...any) string {
	return cache.HashBytes(fmt.Appendf(nil, "%s|%s|%v", ws.digest, kind, options))
}

// parse parses the sources once and returns the usable files. Files with
// syntax errors are recorded as excluded.
func (ws *workspace) parse(ctx context.Context) ([]*ast.ParsedFile, error) {
	if ws.parsed {
		return ws.files, nil
	}

	s := ws.svc
	parsed, errs := fileproc.ParseSources(ctx, ws.sources, s.procOptions(ws.onProgress))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		for _, e := range errs.Errors {
			s.logger.Warn("skipping file", "path", e.Path, "error", e.Err)
			ws.excluded = append(ws.excluded, s.relative(e.Path))
		}
	}

	for _, f := range parsed {
		if !f.Usable() {
			s.logger.Debug("excluding file with parse errors",
				"path", f.FilePath,
				"errors", len(f.ParseErrors))
			ws.excluded = append(ws.excluded, s.relative(f.FilePath))
			continue
		}
		ws.files = append(ws.files, f)
	}
	ws.parsed = true
	return ws.files, nil
}

// excludedFiles returns every file left out of the analysis, sorted. When
// nothing was parsed the list comes from the cache, parsing on a miss.
func (ws *workspace) excludedFiles(ctx context.Context) ([]string, error) {
	s := ws.svc
	digest := ws.inputsDigest(kindExcluded)
	if !ws.parsed {
		var cached []string
		if s.cached(ws, kindExcluded, digest, &cached) {
			return mergeSorted(ws.unreadable, cached), nil
		}
		if _, err := ws.parse(ctx); err != nil {
			return nil, err
		}
	}
	excluded := mergeSorted(nil, ws.excluded)
	s.remember(ws, kindExcluded, digest, excluded)
	return mergeSorted(ws.unreadable, excluded), nil
}
