package retrieval

import "prism/internal/graph"

type step struct {
	node string
	hop  graph.Hop
}

type queueItem struct {
	id    string
	steps []step
}

// shortestPath runs a breadth-first search from source to target over both
// edge directions, trying callees before callers at every node. Paths longer
// than maxDepth edges are not explored.
func shortestPath(g *graph.Graph, source, target string, maxDepth int) (PathRecord, bool) {
	visited := map[string]bool{source: true}
	queue := []queueItem{{id: source}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur.steps) >= maxDepth {
			continue
		}
		for _, hop := range g.Neighbors(cur.id) {
			if visited[hop.To] {
				continue
			}
			steps := make([]step, len(cur.steps), len(cur.steps)+1)
			copy(steps, cur.steps)
			steps = append(steps, step{node: cur.id, hop: hop})
			if hop.To == target {
				return buildPath(source, target, steps), true
			}
			visited[hop.To] = true
			queue = append(queue, queueItem{id: hop.To, steps: steps})
		}
	}
	return PathRecord{}, false
}

func buildPath(source, target string, steps []step) PathRecord {
	rec := PathRecord{
		From:              source,
		To:                target,
		IntermediateNodes: []string{},
		Edges:             make([]PathEdge, 0, len(steps)),
		Length:            len(steps),
	}
	forward, backward := 0, 0
	for i, s := range steps {
		e := s.hop.Edge(s.node)
		rec.Edges = append(rec.Edges, PathEdge{From: e.From, To: e.To, CallLine: e.Line, Direction: s.hop.Direction})
		if s.hop.Direction == graph.Forward {
			forward++
		} else {
			backward++
		}
		if i < len(steps)-1 {
			rec.IntermediateNodes = append(rec.IntermediateNodes, s.hop.To)
		}
	}
	switch {
	case backward == 0:
		rec.PathType = CallerToCallee
	case forward == 0:
		rec.PathType = CalleeToCaller
	default:
		rec.PathType = Bidirectional
	}
	return rec
}
