package graph

// Component is a single typed circuit element.
type Component struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Delay float64 `json:"delay"`
	Line  int     `json:"line,omitempty"` // defining netlist line, 0 if built programmatically
}

// Edge is a producer → consumer signal dependency.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Circuit is a directed acyclic graph of components.
type Circuit struct {
	Components map[string]*Component
	Adj        map[string][]string // producer -> consumers, insertion order
	RevAdj     map[string][]string // consumer -> producers, insertion order
	Roots      []string            // components with no inputs
	Leaves     []string            // components that feed nothing

	order   []string // definition order
	index   map[string]int
	edgeSet map[Edge]bool
	edges   []Edge
}
