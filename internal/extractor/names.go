package extractor

import "prism/internal/ast"

// CalleeName resolves the callee expression of a call: a bare name, a dotted
// attribute chain, or the collapsed source text of anything else.
func CalleeName(n *ast.Node, tree *ast.Tree) string {
	if n == nil {
		return "<expr>"
	}
	switch n.Kind {
	case ast.Name:
		return n.Str("id")
	case ast.Attribute:
		return CalleeName(n.Child("value"), tree) + "." + n.Str("attr")
	}
	text := ""
	if tree != nil {
		text = ast.CollapseWhitespace(tree.Text(n))
	}
	if text == "" {
		return "<expr>"
	}
	return text
}

// baseName resolves a class base; only names and attribute chains count.
func baseName(n *ast.Node, tree *ast.Tree) (string, bool) {
	switch n.Kind {
	case ast.Name, ast.Attribute:
		return CalleeName(n, tree), true
	}
	return "", false
}

// positionalParams lists the names of a function's plain positional
// parameters.
func positionalParams(fn *ast.Node) []string {
	params := []string{}
	args := fn.Child("args")
	if args == nil {
		return params
	}
	for _, a := range args.List("args") {
		params = append(params, a.Str("arg"))
	}
	return params
}

// orderedSet keeps distinct strings in insertion order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// functionCalls collects the distinct callees of fn, leaving nested function
// definitions to their own records.
func functionCalls(fn *ast.Node, tree *ast.Tree) []string {
	calls := newOrderedSet()
	for _, child := range fn.Children() {
		ast.Walk(child, func(n *ast.Node) bool {
			if n.Kind.IsFunction() {
				return false
			}
			if n.Kind == ast.Call {
				calls.add(CalleeName(n.Child("func"), tree))
			}
			return true
		})
	}
	return calls.items
}
