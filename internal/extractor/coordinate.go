package extractor

import (
	"fmt"

	"prism/internal/ast"
)

// NodeID renders the "<Kind>_<line>_<col>" identifier of n.
func NodeID(n *ast.Node) string {
	return fmt.Sprintf("%s_%d_%d", n.Kind, n.Line, n.Col)
}

// CoordinateOf builds the coordinate of node within tree. The path is found by
// a pre-order search from the root; an unreachable node gets ["Module"].
func CoordinateOf(node *ast.Node, tree *ast.Tree) Coordinate {
	path := []string{ast.Module.String()}
	if tree != nil && tree.Root != nil {
		if found, ok := findPath(tree.Root, node, path); ok {
			path = found
		}
	}
	return coordinateWithPath(node, path)
}

func coordinateWithPath(node *ast.Node, path []string) Coordinate {
	return Coordinate{
		NodeID:   NodeID(node),
		Line:     node.Line,
		Col:      node.Col,
		EndLine:  node.EndLine,
		EndCol:   node.EndCol,
		NodeType: node.Kind.String(),
		NodePath: path,
	}
}

func findPath(cur, target *ast.Node, path []string) ([]string, bool) {
	if cur == target {
		return path, true
	}
	if cur.Kind.IsStructural() {
		path = append(path[:len(path):len(path)], cur.Kind.String())
	}
	for _, child := range cur.Children() {
		if found, ok := findPath(child, target, path); ok {
			return found, true
		}
	}
	return nil, false
}

// Assigner memoizes node paths for a tree so that extractors can assign
// coordinates to many nodes with a single traversal.
type Assigner struct {
	tree  *ast.Tree
	paths map[*ast.Node][]string
}

func NewAssigner(tree *ast.Tree) *Assigner {
	a := &Assigner{tree: tree, paths: make(map[*ast.Node][]string)}
	if tree == nil || tree.Root == nil {
		return a
	}
	var visit func(n *ast.Node, path []string)
	visit = func(n *ast.Node, path []string) {
		a.paths[n] = path
		if n.Kind.IsStructural() {
			path = append(path[:len(path):len(path)], n.Kind.String())
		}
		for _, child := range n.Children() {
			visit(child, path)
		}
	}
	visit(tree.Root, []string{ast.Module.String()})
	return a
}

// Coordinate returns the same value as CoordinateOf.
func (a *Assigner) Coordinate(node *ast.Node) Coordinate {
	path, ok := a.paths[node]
	if !ok {
		path = []string{ast.Module.String()}
	}
	return coordinateWithPath(node, path)
}

// LineIndex maps each start line to the nodes beginning there, in
// traversal order.
func LineIndex(tree *ast.Tree) map[int][]*ast.Node {
	index := make(map[int][]*ast.Node)
	if tree == nil {
		return index
	}
	ast.Walk(tree.Root, func(n *ast.Node) bool {
		if n.Kind != ast.Module {
			index[n.Line] = append(index[n.Line], n)
		}
		return true
	})
	return index
}

// ResolveAt finds the coordinate of the unit starting at line. unitType
// "function" selects a function definition, "class" a ClassDef, anything
// else the first function, class or Assign.
func ResolveAt(index map[int][]*ast.Node, tree *ast.Tree, line int, unitType string) (Coordinate, bool) {
	for _, n := range index[line] {
		if matchesUnit(n.Kind, unitType) {
			return CoordinateOf(n, tree), true
		}
	}
	return Coordinate{}, false
}

func matchesUnit(kind ast.Kind, unitType string) bool {
	switch unitType {
	case "function":
		return kind.IsFunction()
	case "class":
		return kind == ast.ClassDef
	default:
		return kind.IsFunction() || kind == ast.ClassDef || kind == ast.Assign
	}
}
