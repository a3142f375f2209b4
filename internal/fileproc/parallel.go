// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/parkrevil/firebat-sub000/pkg/parser"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		out[i] = pe
	}
	return out
}

// sorted orders the errors by path.
func (e *ProcessingErrors) sorted() *ProcessingErrors {
	e.mu.Lock()
	sort.Slice(e.Errors, func(i, j int) bool { return e.Errors[i].Path < e.Errors[j].Path })
	e.mu.Unlock()
	return e
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// Options configures a parallel run.
type Options struct {
	// MaxWorkers bounds concurrency; <= 0 means 2x NumCPU.
	MaxWorkers int
	OnProgress ProgressFunc
}

func (o Options) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return max(1, min(w, n))
}

func (o Options) progress() {
	if o.OnProgress != nil {
		o.OnProgress()
	}
}

// MapFiles processes files in parallel, calling fn with a parser owned by
// the calling worker. Results keep the input order; failed files are left
// out and reported in the returned errors, which is nil when every file
// succeeded. Cancelling ctx stops files that have not started yet.
func MapFiles[T any](ctx context.Context, files []string, opts Options, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	workers := opts.workers(len(files))
	parsers := newParserPool(workers)
	defer parsers.close()

	return run(ctx, files, opts, func(path string) (T, error) {
		psr := parsers.get()
		defer parsers.put(psr)
		return fn(psr, path)
	})
}

// ForEachFile processes files in parallel without a parser, for example to
// hash file contents. Ordering and error handling match MapFiles.
func ForEachFile[T any](ctx context.Context, files []string, opts Options, fn func(string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	return run(ctx, files, opts, fn)
}

func run[T any](ctx context.Context, files []string, opts Options, fn func(string) (T, error)) ([]T, *ProcessingErrors) {
	results := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(opts.workers(len(files))).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer opts.progress()

			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			result, err := fn(path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}
			results[i] = result
			ok[i] = true
			return nil
		})
	}
	_ = p.Wait()

	out := make([]T, 0, len(files))
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	if !errs.HasErrors() {
		return out, nil
	}
	return out, errs.sorted()
}

// parserPool hands out at most one parser per worker. Parsers are created
// on first use and closed together.
type parserPool struct {
	ch  chan *parser.Parser
	mu  sync.Mutex
	all []*parser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{ch: make(chan *parser.Parser, size)}
}

func (pp *parserPool) get() *parser.Parser {
	select {
	case p := <-pp.ch:
		return p
	default:
	}
	p := parser.New()
	pp.mu.Lock()
	pp.all = append(pp.all, p)
	pp.mu.Unlock()
	return p
}

func (pp *parserPool) put(p *parser.Parser) {
	select {
	case pp.ch <- p:
	default:
	}
}

func (pp *parserPool) close() {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	for _, p := range pp.all {
		p.Close()
	}
	pp.all = nil
}
