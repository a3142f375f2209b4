package analysis

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/parkrevil/firebat-sub000/internal/fileproc"
	"github.com/parkrevil/firebat-sub000/internal/vcs"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
)

// Detector names a detector of the combined report.
type Detector string

const (
	DetectorDependencies Detector = "dependencies"
	DetectorCoupling     Detector = "coupling"
	DetectorDuplicates   Detector = "duplicates"
)

// AllDetectors lists every detector in report order.
var AllDetectors = []Detector{DetectorDependencies, DetectorCoupling, DetectorDuplicates}

// ParseDetectors converts names into detectors, rejecting unknown names.
// Duplicates are dropped.
func ParseDetectors(names []string) ([]Detector, error) {
	var out []Detector
	for _, name := range names {
		d := Detector(strings.ToLower(strings.TrimSpace(name)))
		if !slices.Contains(AllDetectors, d) {
			return nil, fmt.Errorf("unknown detector %q (valid: dependencies, coupling, duplicates)", name)
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// EnabledDetectors returns the detectors switched on in the configuration.
func (s *Service) EnabledDetectors() []Detector {
	var out []Detector
	if s.config.Analysis.Dependencies {
		out = append(out, DetectorDependencies)
	}
	if s.config.Analysis.Coupling {
		out = append(out, DetectorCoupling)
	}
	if s.config.Analysis.Duplicates {
		out = append(out, DetectorDuplicates)
	}
	return out
}

// Report is the combined result of the selected detectors. Sections of
// detectors that did not run are nil.
type Report struct {
	Project      vcs.Project               `json:"project" toon:"project"`
	Files        int                       `json:"files" toon:"files"`
	Excluded     []string                  `json:"excluded" toon:"excluded"`
	Dependencies *graph.DependencyAnalysis `json:"dependencies,omitempty" toon:"dependencies,omitempty"`
	Coupling     *CouplingReport           `json:"coupling,omitempty" toon:"coupling,omitempty"`
	Duplicates   *DuplicatesReport         `json:"duplicates,omitempty" toon:"duplicates,omitempty"`
}

// AnalyzeOptions configures the combined report.
type AnalyzeOptions struct {
	Dependencies DependencyOptions
	Duplicates   DuplicatesOptions
	OnProgress   fileproc.ProgressFunc
}

// Analyze runs the selected detectors over paths, sharing one scan and one
// parse between them. No detectors selects the configured ones.
func (s *Service) Analyze(ctx context.Context, paths []string, detectors []Detector, opts AnalyzeOptions) (*Report, error) {
	if len(detectors) == 0 {
		detectors = s.EnabledDetectors()
	}

	ws, err := s.load(ctx, paths, opts.OnProgress)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Project: ws.project,
		Files:   len(ws.sources),
	}

	if slices.Contains(detectors, DetectorDependencies) || slices.Contains(detectors, DetectorCoupling) {
		deps, err := s.dependencies(ctx, ws, opts.Dependencies.resolve(s.config))
		if err != nil {
			return nil, err
		}
		if slices.Contains(detectors, DetectorDependencies) {
			report.Dependencies = deps
		}
		if slices.Contains(detectors, DetectorCoupling) {
			report.Coupling = s.coupling(deps, CouplingOptions{})
		}
	}

	if slices.Contains(detectors, DetectorDuplicates) {
		dups, err := s.duplicates(ctx, ws, opts.Duplicates.resolve(s.config))
		if err != nil {
			return nil, err
		}
		report.Duplicates = dups
	}

	report.Excluded, err = ws.excludedFiles(ctx)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// mergeSorted returns the sorted union of a and b, never nil.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
