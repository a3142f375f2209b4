package graph

import "sort"

// DefaultTopN is the length of the fan-in and fan-out rankings.
const DefaultTopN = 10

// cutReason is attached to every edge-cut hint.
const cutReason = "breaks cycle"

// Degrees holds in- and out-degree per module. Self imports count on both
// sides.
type Degrees struct {
	In  map[ModuleID]int
	Out map[ModuleID]int
}

// ComputeDegrees derives degree maps from adj. Every module of adj has an
// entry in both maps, possibly zero.
func ComputeDegrees(adj Adjacency) Degrees {
	d := Degrees{In: map[ModuleID]int{}, Out: map[ModuleID]int{}}
	for _, m := range adj.Modules() {
		d.In[m] = 0
		d.Out[m] = 0
	}
	for from, targets := range adj {
		d.Out[from] += len(targets)
		for _, to := range targets {
			d.In[to]++
		}
	}
	return d
}

// TopFan ranks modules by count, descending, breaking ties by name. Zero
// counts are dropped and at most limit entries are returned.
func TopFan(counts map[ModuleID]int, limit int) []FanStat {
	stats := make([]FanStat, 0, len(counts))
	for m, c := range counts {
		if c > 0 {
			stats = append(stats, FanStat{Module: m, Count: c})
		}
	}
	sortFan(stats)
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// sortFan orders by count descending, then module name.
func sortFan(stats []FanStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Module < stats[j].Module
	})
}

// EdgeCutHints suggests one edge per cycle: the edge leaving the member
// with the highest out-degree, the first such edge on ties. Hints are
// de-duplicated by (from, to) in cycle order.
func EdgeCutHints(cycles []Cycle, outDegree map[ModuleID]int) []EdgeCutHint {
	hints := []EdgeCutHint{}
	seen := map[[2]ModuleID]struct{}{}
	for _, c := range cycles {
		if len(c.Path) < 2 {
			continue
		}
		best := 0
		for i := 1; i < len(c.Path)-1; i++ {
			if outDegree[c.Path[i]] > outDegree[c.Path[best]] {
				best = i
			}
		}
		from, to := c.Path[best], c.Path[best+1]
		key := [2]ModuleID{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		hints = append(hints, EdgeCutHint{
			From:   from,
			To:     to,
			Score:  max(1, outDegree[from]),
			Reason: cutReason,
		})
	}
	return hints
}
