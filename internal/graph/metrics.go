package graph

// UnresolvedCallees counts distinct callees that match no known function.
// Receiver-qualified calls such as "self.save" typically land here.
func (g *Graph) UnresolvedCallees() int {
	if g == nil {
		return 0
	}
	seen := make(map[string]struct{})
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.To]; ok {
			continue
		}
		seen[e.To] = struct{}{}
	}
	return len(seen)
}

// Degree returns the number of outgoing and incoming edges of id.
func (g *Graph) Degree(id string) (out, in int) {
	return len(g.forward[id]), len(g.backward[id])
}
