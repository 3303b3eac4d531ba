package cpm

import (
	"fmt"
	"strings"
)

// Result holds the complete timing analysis of a circuit.
type Result struct {
	Nodes        map[string]*NodeTiming
	CriticalPath []string // source-to-sink, in signal order
	TotalDelay   float64  // arrival time at the last node of CriticalPath
	TopoOrder    []string
	Levels       []Level
}

// NodeTiming holds the timing of a single component.
type NodeTiming struct {
	ID         string
	Delay      float64
	Arrival    float64 // longest path ending here, own delay included
	Required   float64 // latest arrival that keeps TotalDelay unchanged
	Slack      float64
	BestPred   string // predecessor on the longest path into this node
	Level      int    // logic depth, 0 for sources
	IsCritical bool   // on CriticalPath
}

// Level groups components of equal logic depth.
type Level struct {
	Index      int
	IDs        []string
	IsCritical bool // contains a critical path component
}

// CyclicGraphError reports a feedback loop with no topological order.
type CyclicGraphError struct {
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	if len(e.Cycle) == 0 {
		return "circuit contains a combinational cycle"
	}
	return fmt.Sprintf("circuit contains a combinational cycle: %s", strings.Join(e.Cycle, " -> "))
}
