package graph

import "prism/internal/extractor"

// Graph holds the call graph as forward (caller -> callees) and backward
// (callee -> callers) adjacency over call-graph identifiers.
type Graph struct {
	Nodes map[string]extractor.FunctionRecord
	Edges []Edge

	forward  map[string][]Hop
	backward map[string][]Hop
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:    make(map[string]extractor.FunctionRecord),
		Edges:    []Edge{},
		forward:  make(map[string][]Hop),
		backward: make(map[string][]Hop),
	}
}

// Build creates a graph from call-graph output. Every CallEdge becomes an
// edge, duplicates included, in input order.
func Build(functions []extractor.FunctionRecord, calls []extractor.CallEdge) *Graph {
	g := NewGraph()
	for _, fn := range functions {
		g.AddFunction(fn)
	}
	for _, call := range calls {
		g.AddCall(call.Caller, call.Callee, call.Lineno)
	}
	return g
}

// AddFunction registers a function under its identifier. The first
// registration wins.
func (g *Graph) AddFunction(fn extractor.FunctionRecord) {
	id := fn.Identifier
	if id == "" {
		id = fn.Name
	}
	if _, ok := g.Nodes[id]; ok {
		return
	}
	g.Nodes[id] = fn
}

// AddCall records a call edge in both adjacency maps.
func (g *Graph) AddCall(caller, callee string, line int) {
	g.Edges = append(g.Edges, Edge{From: caller, To: callee, Line: line})
	g.forward[caller] = append(g.forward[caller], Hop{To: callee, Line: line, Direction: Forward})
	g.backward[callee] = append(g.backward[callee], Hop{To: caller, Line: line, Direction: Backward})
}

// Callees returns the outgoing hops of id in insertion order.
func (g *Graph) Callees(id string) []Hop {
	return g.forward[id]
}

// Callers returns the incoming hops of id in insertion order.
func (g *Graph) Callers(id string) []Hop {
	return g.backward[id]
}

// Neighbors returns the callees of id followed by its callers.
func (g *Graph) Neighbors(id string) []Hop {
	out := make([]Hop, 0, len(g.forward[id])+len(g.backward[id]))
	out = append(out, g.forward[id]...)
	return append(out, g.backward[id]...)
}
