package graph

import (
	"testing"

	"prism/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Build(t *testing.T) {
	functions := []extractor.FunctionRecord{
		{Identifier: "a", Name: "a"},
		{Identifier: "b", Name: "b"},
		{Identifier: "Repo.save", Name: "save", Class: "Repo"},
	}
	calls := []extractor.CallEdge{
		{Caller: "a", Callee: "b", Lineno: 2},
		{Caller: "a", Callee: "b", Lineno: 3},
		{Caller: "b", Callee: "self.save", Lineno: 6},
		{Caller: extractor.GlobalCaller, Callee: "a", Lineno: 9},
	}
	g := Build(functions, calls)

	t.Run("duplicate edges kept", func(t *testing.T) {
		require.Len(t, g.Callees("a"), 2)
		assert.Equal(t, Hop{To: "b", Line: 2, Direction: Forward}, g.Callees("a")[0])
		assert.Equal(t, 3, g.Callees("a")[1].Line)
		assert.Len(t, g.Edges, 4)
	})

	t.Run("neighbors forward first", func(t *testing.T) {
		hops := g.Neighbors("a")
		require.Len(t, hops, 3)
		assert.Equal(t, Forward, hops[0].Direction)
		assert.Equal(t, Forward, hops[1].Direction)
		assert.Equal(t, Hop{To: extractor.GlobalCaller, Line: 9, Direction: Backward}, hops[2])
	})

	t.Run("hop edge orientation", func(t *testing.T) {
		back := g.Callers("b")[0]
		assert.Equal(t, Edge{From: "a", To: "b", Line: 2}, back.Edge("b"))
		fwd := g.Callees("b")[0]
		assert.Equal(t, Edge{From: "b", To: "self.save", Line: 6}, fwd.Edge("b"))
	})

	t.Run("unresolved callees", func(t *testing.T) {
		assert.Equal(t, 1, g.UnresolvedCallees())
		out, in := g.Degree("b")
		assert.Equal(t, 1, out)
		assert.Equal(t, 2, in)
	})
}
