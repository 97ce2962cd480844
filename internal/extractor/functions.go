package extractor

import "prism/internal/ast"

// Functions reports standalone functions: every function definition not
// lexically inside a class. Nested functions are reported.
func Functions(tree *ast.Tree) []FunctionRecord {
	return functions(tree, NewAssigner(tree))
}

func functions(tree *ast.Tree, assigner *Assigner) []FunctionRecord {
	out := []FunctionRecord{}
	if tree == nil {
		return out
	}
	ast.Walk(tree.Root, func(n *ast.Node) bool {
		switch {
		case n.Kind == ast.ClassDef:
			return false
		case n.Kind.IsFunction():
			out = append(out, functionRecord(n, "", n.Name(), tree, assigner))
		}
		return true
	})
	return out
}

func functionRecord(n *ast.Node, class, identifier string, tree *ast.Tree, assigner *Assigner) FunctionRecord {
	return FunctionRecord{
		Identifier: identifier,
		Name:       n.Name(),
		Class:      class,
		Params:     positionalParams(n),
		Calls:      functionCalls(n, tree),
		Docstring:  ast.Docstring(n),
		Lineno:     n.Line,
		ASTRef:     assigner.Coordinate(n),
	}
}
