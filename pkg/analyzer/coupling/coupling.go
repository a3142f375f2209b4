// Package coupling classifies modules with Robert Martin's stability and
// abstractness metrics and reports the modules that need attention.
package coupling

import (
	"math"
	"sort"

	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
)

// Analyzer scores coupling hotspots.
// This analyzer is safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds sets custom detection thresholds.
func WithThresholds(thresholds Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = thresholds
	}
}

// WithOffMainSequenceDistance sets the distance above which a module is
// reported as off the main sequence.
func WithOffMainSequenceDistance(d float64) Option {
	return func(a *Analyzer) {
		a.thresholds.OffMainSequenceDistance = d
	}
}

// WithGodThresholds sets the god module floor and module ratio.
func WithGodThresholds(minFan int, ratio float64) Option {
	return func(a *Analyzer) {
		a.thresholds.GodMinFan = minFan
		a.thresholds.GodFanRatio = ratio
	}
}

// New creates a new coupling analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(a)
	}

	// Non-positive thresholds fall back to the defaults
	def := DefaultThresholds()
	if a.thresholds.OffMainSequenceDistance <= 0 {
		a.thresholds.OffMainSequenceDistance = def.OffMainSequenceDistance
	}
	if a.thresholds.UnstableInstability <= 0 {
		a.thresholds.UnstableInstability = def.UnstableInstability
	}
	if a.thresholds.UnstableFanOut <= 0 {
		a.thresholds.UnstableFanOut = def.UnstableFanOut
	}
	if a.thresholds.RigidInstability <= 0 {
		a.thresholds.RigidInstability = def.RigidInstability
	}
	if a.thresholds.RigidMinFanIn <= 0 {
		a.thresholds.RigidMinFanIn = def.RigidMinFanIn
	}
	if a.thresholds.RigidFanInRatio <= 0 {
		a.thresholds.RigidFanInRatio = def.RigidFanInRatio
	}
	if a.thresholds.GodMinFan <= 0 {
		a.thresholds.GodMinFan = def.GodMinFan
	}
	if a.thresholds.GodFanRatio <= 0 {
		a.thresholds.GodFanRatio = def.GodFanRatio
	}

	return a
}

// Thresholds returns the effective thresholds.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// AnalyzeDependencies scores the modules of a dependency analysis.
func (a *Analyzer) AnalyzeDependencies(d *graph.DependencyAnalysis) *Analysis {
	if d == nil {
		return &Analysis{Hotspots: []Hotspot{}}
	}
	return a.Analyze(d.Adjacency, d.ExportStats, d.Cycles)
}

// Analyze computes metrics for every connected module of adj and returns
// the modules that trip at least one signal, ordered by score descending
// then name. Modules with neither importers nor imports are never reported.
func (a *Analyzer) Analyze(adj graph.Adjacency, stats map[graph.ModuleID]graph.ExportStat, cycles []graph.Cycle) *Analysis {
	analysis := &Analysis{Hotspots: []Hotspot{}}

	modules := adj.Modules()
	if len(modules) == 0 {
		return analysis
	}

	deg := graph.ComputeDegrees(adj)
	mutual := mutualModules(cycles)
	limits := a.limits(len(modules))

	for _, m := range modules {
		// a module outside the import graph has no coupling to report
		if deg.In[m] == 0 && deg.Out[m] == 0 {
			continue
		}
		stat := stats[m]
		metrics := Metrics{
			FanIn:        deg.In[m],
			FanOut:       deg.Out[m],
			Instability:  CalculateInstability(deg.In[m], deg.Out[m]),
			Abstractness: CalculateAbstractness(stat.Abstract, stat.Total),
		}
		metrics.Distance = CalculateDistance(metrics.Abstractness, metrics.Instability)

		signals := a.signals(metrics, limits, mutual[m])
		if len(signals) == 0 {
			continue
		}
		analysis.Hotspots = append(analysis.Hotspots, newHotspot(m, metrics, signals))
	}

	sort.Slice(analysis.Hotspots, func(i, j int) bool {
		hi, hj := analysis.Hotspots[i], analysis.Hotspots[j]
		if hi.Score != hj.Score {
			return hi.Score > hj.Score
		}
		return hi.Module < hj.Module
	})
	return analysis
}

// fanLimits are the project-size dependent thresholds.
type fanLimits struct {
	rigidFanIn int
	godFan     int
}

func (a *Analyzer) limits(totalModules int) fanLimits {
	return fanLimits{
		rigidFanIn: max(a.thresholds.RigidMinFanIn, int(math.Ceil(float64(totalModules)*a.thresholds.RigidFanInRatio))),
		godFan:     max(a.thresholds.GodMinFan, int(math.Ceil(float64(totalModules)*a.thresholds.GodFanRatio))),
	}
}

// signals returns the tripped signals in evaluation order.
func (a *Analyzer) signals(m Metrics, l fanLimits, mutual bool) []Signal {
	t := a.thresholds
	var out []Signal
	if m.Distance > t.OffMainSequenceDistance {
		out = append(out, SignalOffMainSequence)
	}
	if m.Instability > t.UnstableInstability && m.FanOut > t.UnstableFanOut {
		out = append(out, SignalUnstableModule)
	}
	if m.Instability < t.RigidInstability && m.FanIn > l.rigidFanIn {
		out = append(out, SignalRigidModule)
	}
	if m.FanIn > l.godFan && m.FanOut > l.godFan {
		out = append(out, SignalGodModule)
	}
	if mutual {
		out = append(out, SignalBidirectionalCoupling)
	}
	return out
}

// severity returns the highest clamped severity among the signals.
func severity(m Metrics, signals []Signal) float64 {
	var sev float64
	for _, s := range signals {
		var v float64
		switch s {
		case SignalOffMainSequence:
			v = m.Distance
		case SignalUnstableModule:
			v = 0.7 + 0.3*m.Instability
		case SignalRigidModule:
			v = 0.7 + 0.3*(1-m.Instability)
		case SignalGodModule:
			v = godSeverity
		case SignalBidirectionalCoupling:
			v = bidirectionalSeverity
		}
		sev = max(sev, clamp01(v))
	}
	return sev
}

func newHotspot(module string, m Metrics, signals []Signal) Hotspot {
	tags := make([]string, len(signals))
	for i, s := range signals {
		tags[i] = string(s)
	}
	sort.Strings(tags)

	return Hotspot{
		Module:            module,
		Score:             int(math.Round(severity(m, signals) * 100)),
		Signals:           tags,
		Metrics:           m,
		Why:               explain(m, signals),
		SuggestedRefactor: suggest(m, signals),
	}
}

// mutualModules returns the members of every two-node cycle.
func mutualModules(cycles []graph.Cycle) map[graph.ModuleID]bool {
	out := map[graph.ModuleID]bool{}
	for _, c := range cycles {
		nodes := c.Nodes()
		if len(nodes) == 2 && nodes[0] != nodes[1] {
			out[nodes[0]] = true
			out[nodes[1]] = true
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
