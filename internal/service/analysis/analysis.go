// Package analysis runs the dependency, coupling and duplicate detectors over
// a set of paths and assembles their reports.
package analysis

import (
	"context"
	"log/slog"
	"os"

	"github.com/parkrevil/firebat-sub000/internal/cache"
	"github.com/parkrevil/firebat-sub000/internal/fileproc"
	"github.com/parkrevil/firebat-sub000/internal/vcs"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/coupling"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/duplicates"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
	"github.com/parkrevil/firebat-sub000/pkg/config"
)

// Cache kinds.
const (
	kindDependencies = "dependencies"
	kindDuplicates   = "duplicates"
	kindExcluded     = "excluded"
)

// Service orchestrates code analysis operations.
type Service struct {
	config     *config.Config
	opener     vcs.Opener
	store      cache.Store
	logger     *slog.Logger
	workDir    string
	maxWorkers int
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache sets the artifact store. The default store never hits.
func WithCache(store cache.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWorkDir sets the directory reported paths are relative to. It
// defaults to the process working directory.
func WithWorkDir(dir string) Option {
	return func(s *Service) {
		s.workDir = dir
	}
}

// WithMaxWorkers bounds the parse pool.
func WithMaxWorkers(n int) Option {
	return func(s *Service) {
		s.maxWorkers = n
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		opener: vcs.DefaultOpener(),
		store:  cache.Nop{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	if s.store == nil {
		s.store = cache.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.workDir = wd
		}
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// DependencyOptions configures dependency analysis.
type DependencyOptions struct {
	// MaxCircuits caps the circuits enumerated per strongly connected
	// component. Zero uses the configured value.
	MaxCircuits int
	// TopN is the length of the fan rankings. Zero uses the configured value.
	TopN       int
	OnProgress fileproc.ProgressFunc
}

func (o DependencyOptions) resolve(cfg *config.Config) DependencyOptions {
	if o.MaxCircuits <= 0 {
		o.MaxCircuits = cfg.Analysis.MaxCircuits
	}
	if o.TopN <= 0 {
		o.TopN = cfg.Analysis.TopN
	}
	return o
}

// Dependencies builds the import graph of paths and reports its cycles, fan
// rankings and edge-cut hints. Module paths are relative to the work dir.
func (s *Service) Dependencies(ctx context.Context, paths []string, opts DependencyOptions) (*graph.DependencyAnalysis, error) {
	ws, err := s.load(ctx, paths, opts.OnProgress)
	if err != nil {
		return nil, err
	}
	return s.dependencies(ctx, ws, opts.resolve(s.config))
}

func (s *Service) dependencies(ctx context.Context, ws *workspace, opts DependencyOptions) (*graph.DependencyAnalysis, error) {
	digest := ws.inputsDigest(kindDependencies, opts.MaxCircuits, opts.TopN)

	var cached graph.DependencyAnalysis
	if s.cached(ws, kindDependencies, digest, &cached) {
		return &cached, nil
	}

	files, err := ws.parse(ctx)
	if err != nil {
		return nil, err
	}
	deps := graph.New(
		graph.WithMaxCircuits(opts.MaxCircuits),
		graph.WithTopN(opts.TopN),
	).Analyze(files).Relative(s.workDir)

	s.logger.Debug("dependency analysis complete",
		"modules", len(deps.Adjacency),
		"cycles", len(deps.Cycles))
	s.remember(ws, kindDependencies, digest, deps)
	return deps, nil
}

// CouplingOptions configures coupling analysis.
type CouplingOptions struct {
	Dependencies DependencyOptions
	// Thresholds overrides the configured thresholds when set.
	Thresholds *coupling.Thresholds
}

// CouplingReport is the coupling analysis with its summary.
type CouplingReport struct {
	Hotspots []coupling.Hotspot `json:"hotspots" toon:"hotspots"`
	Summary  coupling.Summary   `json:"summary" toon:"summary"`
}

// Coupling scores the modules of the import graph of paths.
func (s *Service) Coupling(ctx context.Context, paths []string, opts CouplingOptions) (*CouplingReport, error) {
	ws, err := s.load(ctx, paths, opts.Dependencies.OnProgress)
	if err != nil {
		return nil, err
	}
	deps, err := s.dependencies(ctx, ws, opts.Dependencies.resolve(s.config))
	if err != nil {
		return nil, err
	}
	return s.coupling(deps, opts), nil
}

func (s *Service) coupling(deps *graph.DependencyAnalysis, opts CouplingOptions) *CouplingReport {
	thresholds := s.config.Thresholds
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}
	result := coupling.New(coupling.WithThresholds(thresholds)).AnalyzeDependencies(deps)
	return &CouplingReport{
		Hotspots: result.Hotspots,
		Summary:  coupling.Summarize(result.Hotspots),
	}
}

// DuplicatesOptions configures clone detection.
type DuplicatesOptions struct {
	// Mode is exact or shape. Empty uses the configured mode.
	Mode duplicates.Mode
	// MinSize is the minimum candidate size in named nodes. Zero uses the
	// configured value.
	MinSize           int
	NormalizeLiterals bool
	OnProgress        fileproc.ProgressFunc
}

func (o DuplicatesOptions) resolve(cfg *config.Config) DuplicatesOptions {
	if o.Mode == "" {
		o.Mode = duplicates.Mode(cfg.Analysis.DuplicateMode)
	}
	if !o.Mode.Valid() {
		o.Mode = duplicates.ModeExact
	}
	if o.MinSize <= 0 {
		o.MinSize = cfg.Analysis.DuplicateMinSize
	}
	if o.MinSize <= 0 {
		o.MinSize = duplicates.DefaultConfig().MinSize
	}
	o.NormalizeLiterals = o.NormalizeLiterals || cfg.Analysis.NormalizeLiterals
	return o
}

// DuplicatesReport is the list of clone groups with its summary.
type DuplicatesReport struct {
	Mode    duplicates.Mode    `json:"mode" toon:"mode"`
	MinSize int                `json:"minSize" toon:"minSize"`
	Groups  []duplicates.Group `json:"groups" toon:"groups"`
	Summary duplicates.Summary `json:"summary" toon:"summary"`
}

// Duplicates finds clone groups across paths. Item paths are relative to
// the work dir.
func (s *Service) Duplicates(ctx context.Context, paths []string, opts DuplicatesOptions) (*DuplicatesReport, error) {
	ws, err := s.load(ctx, paths, opts.OnProgress)
	if err != nil {
		return nil, err
	}
	return s.duplicates(ctx, ws, opts.resolve(s.config))
}

func (s *Service) duplicates(ctx context.Context, ws *workspace, opts DuplicatesOptions) (*DuplicatesReport, error) {
	digest := ws.inputsDigest(kindDuplicates, opts.Mode, opts.MinSize, opts.NormalizeLiterals)

	var cached DuplicatesReport
	if s.cached(ws, kindDuplicates, digest, &cached) {
		return &cached, nil
	}

	files, err := ws.parse(ctx)
	if err != nil {
		return nil, err
	}
	groups := duplicates.New(
		duplicates.WithMode(opts.Mode),
		duplicates.WithMinSize(opts.MinSize),
		duplicates.WithNormalizeLiterals(opts.NormalizeLiterals),
	).Analyze(files)

	for gi := range groups {
		for ii := range groups[gi].Items {
			item := &groups[gi].Items[ii]
			item.FilePath = graph.RelativePath(s.workDir, graph.NormalizePath(item.FilePath))
		}
	}

	report := &DuplicatesReport{
		Mode:    opts.Mode,
		MinSize: opts.MinSize,
		Groups:  groups,
		Summary: duplicates.Summarize(groups),
	}
	s.logger.Debug("duplicate detection complete",
		"groups", report.Summary.TotalGroups,
		"items", report.Summary.TotalItems)
	s.remember(ws, kindDuplicates, digest, report)
	return report, nil
}

// cached loads a cached artifact into v.
func (s *Service) cached(ws *workspace, kind, digest string, v any) bool {
	err := cache.GetJSON(s.store, ws.project.Key(), kind, s.workDir, digest, v)
	if err != nil {
		s.logger.Debug("cache miss", "kind", kind, "error", err)
		return false
	}
	s.logger.Debug("cache hit", "kind", kind)
	return true
}

// remember stores an artifact. Cache failures never fail the analysis.
func (s *Service) remember(ws *workspace, kind, digest string, v any) {
	if err := cache.SetJSON(s.store, ws.project.Key(), kind, s.workDir, digest, v); err != nil {
		s.logger.Warn("failed to write cache entry", "kind", kind, "error", err)
	}
}
