package ast

// ToMap renders the tree in the shape the tree view consumes: each node is
// {type, lineno, col_offset, end_lineno, end_col_offset, <field>: ...}.
func ToMap(t *Tree) map[string]any {
	if t == nil {
		return nil
	}
	return nodeMap(t.Root)
}

func nodeMap(n *Node) map[string]any {
	if n == nil {
		return nil
	}
	out := map[string]any{
		"type":           n.Kind.String(),
		"lineno":         n.Line,
		"col_offset":     n.Col,
		"end_lineno":     n.EndLine,
		"end_col_offset": n.EndCol,
	}
	if n.Kind == Module {
		delete(out, "lineno")
		delete(out, "col_offset")
		delete(out, "end_lineno")
		delete(out, "end_col_offset")
	}
	if n.RawType != "" {
		out["raw_type"] = n.RawType
	}
	for _, f := range n.Fields {
		switch {
		case f.IsList():
			items := make([]any, 0, len(f.List))
			for _, c := range f.List {
				if c != nil {
					items = append(items, nodeMap(c))
				}
			}
			out[f.Name] = items
		case f.IsNode():
			if f.Node == nil {
				out[f.Name] = nil
				continue
			}
			out[f.Name] = nodeMap(f.Node)
		default:
			out[f.Name] = f.Value
		}
	}
	return out
}
