package coupling

import "math"

// Signal tags a coupling problem detected on a module.
type Signal string

const (
	SignalOffMainSequence       Signal = "off-main-sequence"
	SignalUnstableModule        Signal = "unstable-module"
	SignalRigidModule           Signal = "rigid-module"
	SignalGodModule             Signal = "god-module"
	SignalBidirectionalCoupling Signal = "bidirectional-coupling"
)

// signalOrder is the order in which signals are evaluated and explained.
var signalOrder = []Signal{
	SignalOffMainSequence,
	SignalUnstableModule,
	SignalRigidModule,
	SignalGodModule,
	SignalBidirectionalCoupling,
}

// Metrics are Robert Martin's package metrics for one module.
type Metrics struct {
	FanIn        int     `json:"fanIn" toon:"fanIn"`               // Afferent coupling (incoming imports)
	FanOut       int     `json:"fanOut" toon:"fanOut"`             // Efferent coupling (outgoing imports)
	Instability  float64 `json:"instability" toon:"instability"`   // Ce / (Ca + Ce), 0 = stable, 1 = unstable
	Abstractness float64 `json:"abstractness" toon:"abstractness"` // abstract exports / all exports
	Distance     float64 `json:"distance" toon:"distance"`         // |A + I - 1|
}

// CalculateInstability calculates Martin's Instability metric.
// I = Ce / (Ca + Ce)
// Where Ce = efferent coupling (outgoing), Ca = afferent coupling (incoming)
// Returns 0 for modules nothing imports and that import nothing.
func CalculateInstability(fanIn, fanOut int) float64 {
	total := fanIn + fanOut
	if total == 0 {
		return 0
	}
	return float64(fanOut) / float64(total)
}

// CalculateAbstractness returns abstract/total, or 0 when nothing is exported.
func CalculateAbstractness(abstract, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(abstract) / float64(total)
}

// CalculateDistance returns the distance from the main sequence A + I = 1.
func CalculateDistance(abstractness, instability float64) float64 {
	return math.Abs(abstractness + instability - 1)
}

// Hotspot is a module that trips at least one coupling signal.
type Hotspot struct {
	Module            string   `json:"module" toon:"module"`
	Score             int      `json:"score" toon:"score"`
	Signals           []string `json:"signals" toon:"signals"`
	Metrics           Metrics  `json:"metrics" toon:"metrics"`
	Why               string   `json:"why" toon:"why"`
	SuggestedRefactor string   `json:"suggestedRefactor" toon:"suggestedRefactor"`
}

// Analysis is the coupling report.
type Analysis struct {
	Hotspots []Hotspot `json:"hotspots" toon:"hotspots"`
}

// Thresholds configures signal detection.
type Thresholds struct {
	// Distance above which a module is off the main sequence.
	OffMainSequenceDistance float64 `json:"offMainSequenceDistance" koanf:"off_main_sequence_distance" toml:"off_main_sequence_distance"`
	// Instability and fan-out above which a module is unstable.
	UnstableInstability float64 `json:"unstableInstability" koanf:"unstable_instability" toml:"unstable_instability"`
	UnstableFanOut      int     `json:"unstableFanOut" koanf:"unstable_fan_out" toml:"unstable_fan_out"`
	// Instability below which, with enough importers, a module is rigid.
	RigidInstability float64 `json:"rigidInstability" koanf:"rigid_instability" toml:"rigid_instability"`
	RigidMinFanIn    int     `json:"rigidMinFanIn" koanf:"rigid_min_fan_in" toml:"rigid_min_fan_in"`
	RigidFanInRatio  float64 `json:"rigidFanInRatio" koanf:"rigid_fan_in_ratio" toml:"rigid_fan_in_ratio"`
	// Fan-in and fan-out above max(GodMinFan, ceil(modules*GodFanRatio)) make a god module.
	GodMinFan   int     `json:"godMinFan" koanf:"god_min_fan" toml:"god_min_fan"`
	GodFanRatio float64 `json:"godFanRatio" koanf:"god_fan_ratio" toml:"god_fan_ratio"`
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OffMainSequenceDistance: 0.7,
		UnstableInstability:     0.8,
		UnstableFanOut:          5,
		RigidInstability:        0.2,
		RigidMinFanIn:           10,
		RigidFanInRatio:         0.15,
		GodMinFan:               10,
		GodFanRatio:             0.1,
	}
}

// Severity values for signals with a fixed weight.
const (
	godSeverity           = 0.95
	bidirectionalSeverity = 0.85
)

// Summary provides aggregate statistics over a set of hotspots.
type Summary struct {
	TotalHotspots      int            `json:"totalHotspots" toon:"totalHotspots"`
	SignalCounts       map[string]int `json:"signalCounts" toon:"signalCounts"`
	AverageInstability float64        `json:"averageInstability" toon:"averageInstability"`
	AverageDistance    float64        `json:"averageDistance" toon:"averageDistance"`
	MaxScore           int            `json:"maxScore" toon:"maxScore"`
}

// Summarize computes summary statistics for hotspots.
func Summarize(hotspots []Hotspot) Summary {
	s := Summary{SignalCounts: map[string]int{}}
	if len(hotspots) == 0 {
		return s
	}
	s.TotalHotspots = len(hotspots)
	var inst, dist float64
	for _, h := range hotspots {
		for _, sig := range h.Signals {
			s.SignalCounts[sig]++
		}
		inst += h.Metrics.Instability
		dist += h.Metrics.Distance
		s.MaxScore = max(s.MaxScore, h.Score)
	}
	s.AverageInstability = inst / float64(len(hotspots))
	s.AverageDistance = dist / float64(len(hotspots))
	return s
}
