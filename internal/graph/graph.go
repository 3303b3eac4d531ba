package graph

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrDuplicateComponent is returned when a component id is added twice.
var ErrDuplicateComponent = errors.New("duplicate component id")

// DanglingEdgeError reports an edge whose endpoint is not a component.
type DanglingEdgeError struct {
	Edge    Edge
	Missing string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s references undefined component %q", e.Edge.From, e.Edge.To, e.Missing)
}

// New returns an empty circuit.
func New() *Circuit {
	return &Circuit{
		Components: make(map[string]*Component),
		Adj:        make(map[string][]string),
		RevAdj:     make(map[string][]string),
		index:      make(map[string]int),
		edgeSet:    make(map[Edge]bool),
	}
}

// AddComponent registers a component. Ids must be unique.
func (c *Circuit) AddComponent(id, typ string, delay float64, line int) (*Component, error) {
	if _, ok := c.Components[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, id)
	}
	comp := &Component{ID: id, Type: typ, Delay: delay, Line: line}
	c.Components[id] = comp
	c.index[id] = len(c.order)
	c.order = append(c.order, id)
	return comp, nil
}

// AddEdge records that from feeds to. Either endpoint may be added later;
// repeated edges are ignored.
func (c *Circuit) AddEdge(from, to string) {
	e := Edge{From: from, To: to}
	if c.edgeSet[e] {
		return
	}
	c.edgeSet[e] = true
	c.edges = append(c.edges, e)
	c.Adj[from] = append(c.Adj[from], to)
	c.RevAdj[to] = append(c.RevAdj[to], from)
}

// Finalize checks every edge endpoint and computes Roots and Leaves.
// It must be called after the last AddComponent/AddEdge.
func (c *Circuit) Finalize() error {
	for _, e := range c.edges {
		if _, ok := c.Components[e.From]; !ok {
			return &DanglingEdgeError{Edge: e, Missing: e.From}
		}
		if _, ok := c.Components[e.To]; !ok {
			return &DanglingEdgeError{Edge: e, Missing: e.To}
		}
	}

	c.Roots = lo.Filter(c.order, func(id string, _ int) bool { return len(c.RevAdj[id]) == 0 })
	c.Leaves = lo.Filter(c.order, func(id string, _ int) bool { return len(c.Adj[id]) == 0 })
	return nil
}

// Component returns the component with the given id, or nil.
func (c *Circuit) Component(id string) *Component {
	return c.Components[id]
}

// IDs returns component ids in definition order.
func (c *Circuit) IDs() []string {
	return append([]string(nil), c.order...)
}

// Index returns the definition position of id, or -1.
func (c *Circuit) Index(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Edges returns all distinct edges in insertion order.
func (c *Circuit) Edges() []Edge {
	return append([]Edge(nil), c.edges...)
}

// HasEdge reports whether from feeds to.
func (c *Circuit) HasEdge(from, to string) bool {
	return c.edgeSet[Edge{From: from, To: to}]
}

// ComponentCount returns the number of components in the circuit.
func (c *Circuit) ComponentCount() int {
	return len(c.Components)
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (c *Circuit) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range c.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range c.order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Filter returns a new circuit containing only components matching the
// predicate, and the edges between them. Definition order is preserved.
func (c *Circuit) Filter(pred func(*Component) bool) (*Circuit, error) {
	out := New()
	for _, id := range c.order {
		comp := c.Components[id]
		if pred(comp) {
			if _, err := out.AddComponent(comp.ID, comp.Type, comp.Delay, comp.Line); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range c.edges {
		if out.Components[e.From] != nil && out.Components[e.To] != nil {
			out.AddEdge(e.From, e.To)
		}
	}
	if err := out.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// FanInCone returns the sub-circuit made of id and everything that
// transitively feeds it.
func (c *Circuit) FanInCone(id string) (*Circuit, error) {
	if _, ok := c.Components[id]; !ok {
		return nil, fmt.Errorf("component %q not found", id)
	}

	inCone := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, pred := range c.RevAdj[node] {
			if !inCone[pred] {
				inCone[pred] = true
				queue = append(queue, pred)
			}
		}
	}

	return c.Filter(func(comp *Component) bool { return inCone[comp.ID] })
}
