package graph

// Direction tells whether an edge was followed from caller to callee.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Edge is a directed call from one identifier to another.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Line int    `json:"call_line"`
}

// Hop is one adjacency entry: the neighbour reached and the call site that
// connects it.
type Hop struct {
	To        string
	Line      int
	Direction Direction
}

// Edge returns the underlying call edge of a hop taken from node.
func (h Hop) Edge(node string) Edge {
	if h.Direction == Backward {
		return Edge{From: h.To, To: node, Line: h.Line}
	}
	return Edge{From: node, To: h.To, Line: h.Line}
}
