package coupling

import (
	"fmt"
	"strings"
)

// explain builds the why text, one sentence per signal in evaluation order.
func explain(m Metrics, signals []Signal) string {
	sentences := make([]string, 0, len(signals))
	for _, s := range signals {
		switch s {
		case SignalOffMainSequence:
			sentences = append(sentences, fmt.Sprintf(
				"Distance from the main sequence is %.2f (abstractness %.2f, instability %.2f).",
				m.Distance, m.Abstractness, m.Instability))
		case SignalUnstableModule:
			sentences = append(sentences, fmt.Sprintf(
				"Imports %d modules with instability %.2f, so changes elsewhere ripple into it.",
				m.FanOut, m.Instability))
		case SignalRigidModule:
			sentences = append(sentences, fmt.Sprintf(
				"Imported by %d modules while highly stable (instability %.2f), so every change is expensive.",
				m.FanIn, m.Instability))
		case SignalGodModule:
			sentences = append(sentences, fmt.Sprintf(
				"Both fan-in (%d) and fan-out (%d) are high, so it sits in the middle of most dependency paths.",
				m.FanIn, m.FanOut))
		case SignalBidirectionalCoupling:
			sentences = append(sentences, "Imports a module that imports it back.")
		}
	}
	return strings.Join(sentences, " ")
}

// suggest builds the remediation text, one sentence per signal in
// evaluation order.
func suggest(m Metrics, signals []Signal) string {
	sentences := make([]string, 0, len(signals))
	for _, s := range signals {
		switch s {
		case SignalOffMainSequence:
			sentences = append(sentences, mainSequenceAdvice(m))
		case SignalUnstableModule:
			sentences = append(sentences,
				"Reduce outgoing imports by depending on narrower abstractions or moving logic next to the data it uses.")
		case SignalRigidModule:
			sentences = append(sentences,
				"Extract stable interfaces and keep the implementation behind them so dependents are insulated from change.")
		case SignalGodModule:
			sentences = append(sentences,
				"Split the module into smaller packages with a single responsibility each.")
		case SignalBidirectionalCoupling:
			sentences = append(sentences,
				"Break the mutual import by moving the shared code into a third module or inverting one dependency.")
		}
	}
	return strings.Join(sentences, " ")
}

// mainSequenceAdvice picks advice by the zone the module falls in.
func mainSequenceAdvice(m Metrics) string {
	switch {
	case m.Abstractness < 0.5 && m.Instability < 0.5:
		return "Zone of pain: concrete and heavily depended upon; introduce interfaces so dependents stop relying on implementation details."
	case m.Abstractness > 0.5 && m.Instability > 0.5:
		return "Zone of uselessness: abstractions nobody depends on; remove unused interfaces or inline them into their single implementation."
	default:
		return "Rebalance abstractness and instability toward the main sequence by moving abstractions to stable modules and concrete code to unstable ones."
	}
}
