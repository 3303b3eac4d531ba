// Package cpm computes arrival times, slack and the critical path of a circuit.
package cpm

import (
	"sort"

	"github.com/joshharrison/critpath/internal/graph"
)

// Analyze performs static timing analysis on a circuit.
//
// Arrival times are propagated in topological order; each node keeps a
// pointer to the predecessor with the latest arrival (the first one in
// input order on ties). The critical path ends at the sink with the latest
// arrival, the first one in topological order on ties, and is recovered by
// one walk back along those pointers. An empty circuit yields an empty path
// and a total delay of zero.
//
// Edge endpoints are checked first; a circuit built in code with an edge
// to an unknown component fails with *graph.DanglingEdgeError.
func Analyze(c *graph.Circuit) (*Result, error) {
	if err := c.Finalize(); err != nil {
		return nil, err
	}

	order, err := topoSort(c)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Nodes:     make(map[string]*NodeTiming, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		result.Nodes[id] = &NodeTiming{ID: id, Delay: c.Components[id].Delay}
	}

	// Forward pass: arrival, best predecessor, level
	for _, id := range order {
		nt := result.Nodes[id]
		latest := 0.0
		for _, pred := range c.RevAdj[id] {
			pt := result.Nodes[pred]
			if nt.BestPred == "" || pt.Arrival > latest {
				latest = pt.Arrival
				nt.BestPred = pred
			}
			if pt.Level+1 > nt.Level {
				nt.Level = pt.Level + 1
			}
		}
		nt.Arrival = latest + nt.Delay
	}

	// Pick the latest sink, earliest in topological order on ties
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	last := ""
	for _, id := range c.Leaves {
		if last == "" {
			last = id
			continue
		}
		a, b := result.Nodes[id].Arrival, result.Nodes[last].Arrival
		if a > b || (a == b && pos[id] < pos[last]) {
			last = id
		}
	}
	if last == "" {
		return result, nil
	}

	result.TotalDelay = result.Nodes[last].Arrival
	for id := last; id != ""; id = result.Nodes[id].BestPred {
		result.CriticalPath = append(result.CriticalPath, id)
		result.Nodes[id].IsCritical = true
	}
	for i, j := 0, len(result.CriticalPath)-1; i < j; i, j = i+1, j-1 {
		result.CriticalPath[i], result.CriticalPath[j] = result.CriticalPath[j], result.CriticalPath[i]
	}

	// Backward pass: required time and slack
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		nt := result.Nodes[id]
		if len(c.Adj[id]) == 0 {
			nt.Required = result.TotalDelay
		} else {
			for k, succ := range c.Adj[id] {
				st := result.Nodes[succ]
				if req := st.Required - st.Delay; k == 0 || req < nt.Required {
					nt.Required = req
				}
			}
		}
		nt.Slack = nt.Required - nt.Arrival
	}

	result.Levels = computeLevels(result, c)

	return result, nil
}

// topoSort performs Kahn's algorithm for topological sorting. Ready
// components are released in definition order.
func topoSort(c *graph.Circuit) ([]string, error) {
	ids := c.IDs()
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = len(c.RevAdj[id])
	}

	queue := append([]string(nil), c.Roots...)

	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, succ := range c.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Slice(newReady, func(a, b int) bool {
			return c.Index(newReady[a]) < c.Index(newReady[b])
		})
		queue = append(queue, newReady...)
	}

	if len(order) != len(ids) {
		return nil, &CyclicGraphError{Cycle: c.DetectCycle()}
	}

	return order, nil
}

// computeLevels groups components by logic depth.
func computeLevels(result *Result, c *graph.Circuit) []Level {
	groups := make(map[int][]string)
	maxLevel := -1
	for _, id := range result.TopoOrder {
		lvl := result.Nodes[id].Level
		groups[lvl] = append(groups[lvl], id)
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	levels := make([]Level, 0, maxLevel+1)
	for i := 0; i <= maxLevel; i++ {
		ids := groups[i]
		sort.SliceStable(ids, func(a, b int) bool {
			aCrit := result.Nodes[ids[a]].IsCritical
			bCrit := result.Nodes[ids[b]].IsCritical
			if aCrit != bCrit {
				return aCrit
			}
			return c.Index(ids[a]) < c.Index(ids[b])
		})

		hasCritical := len(ids) > 0 && result.Nodes[ids[0]].IsCritical
		levels = append(levels, Level{Index: i, IDs: ids, IsCritical: hasCritical})
	}

	return levels
}
