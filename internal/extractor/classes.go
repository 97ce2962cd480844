package extractor

import "prism/internal/ast"

// Classes reports every class definition in pre-order, nested ones included.
func Classes(tree *ast.Tree) []ClassRecord {
	return classes(tree, NewAssigner(tree))
}

func classes(tree *ast.Tree, assigner *Assigner) []ClassRecord {
	out := []ClassRecord{}
	if tree == nil {
		return out
	}
	ast.Walk(tree.Root, func(n *ast.Node) bool {
		if n.Kind == ast.ClassDef {
			out = append(out, classRecord(n, tree, assigner))
		}
		return true
	})
	return out
}

func classRecord(n *ast.Node, tree *ast.Tree, assigner *Assigner) ClassRecord {
	rec := ClassRecord{
		Name:       n.Name(),
		Bases:      []string{},
		Methods:    []MethodRecord{},
		Attributes: []string{},
		Docstring:  ast.Docstring(n),
		Lineno:     n.Line,
		ASTRef:     assigner.Coordinate(n),
	}
	for _, base := range n.List("bases") {
		if name, ok := baseName(base, tree); ok {
			rec.Bases = append(rec.Bases, name)
		}
	}
	for _, stmt := range n.Body() {
		switch {
		case stmt.Kind.IsFunction():
			rec.Methods = append(rec.Methods, MethodRecord{
				Name:      stmt.Name(),
				Params:    positionalParams(stmt),
				Calls:     functionCalls(stmt, tree),
				Docstring: ast.Docstring(stmt),
				Lineno:    stmt.Line,
				ASTRef:    assigner.Coordinate(stmt),
			})
		case stmt.Kind == ast.Assign:
			for _, target := range stmt.List("targets") {
				switch target.Kind {
				case ast.Name:
					rec.Attributes = append(rec.Attributes, target.Str("id"))
				case ast.Attribute:
					rec.Attributes = append(rec.Attributes, target.Str("attr"))
				}
			}
		}
	}
	return rec
}
