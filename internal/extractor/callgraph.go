package extractor

import "prism/internal/ast"

// scope is the lexical context of the call-graph walk. It is passed by value
// so that leaving a definition restores the enclosing context.
type scope struct {
	class    string
	function string
}

type callGraphBuilder struct {
	tree     *ast.Tree
	assigner *Assigner
	order    []string
	records  map[string]*FunctionRecord
	calls    map[string]*orderedSet
	edges    []CallEdge
}

// CallGraph extracts every function (methods named "Class.method") with its
// distinct callees, plus every call edge. Calls outside any function are
// attributed to GlobalCaller.
func CallGraph(tree *ast.Tree) CallGraphResult {
	return callGraph(tree, NewAssigner(tree))
}

func callGraph(tree *ast.Tree, assigner *Assigner) CallGraphResult {
	b := &callGraphBuilder{
		tree:     tree,
		assigner: assigner,
		records:  make(map[string]*FunctionRecord),
		calls:    make(map[string]*orderedSet),
		edges:    []CallEdge{},
	}
	if tree != nil && tree.Root != nil {
		b.visit(tree.Root, scope{})
		b.visitGlobal(tree.Root)
	}

	functions := make([]FunctionRecord, 0, len(b.order))
	for _, id := range b.order {
		rec := *b.records[id]
		rec.Calls = b.calls[id].items
		functions = append(functions, rec)
	}
	return CallGraphResult{Functions: functions, Calls: b.edges}
}

func (b *callGraphBuilder) visit(n *ast.Node, sc scope) {
	switch {
	case n.Kind == ast.ClassDef:
		sc.class = n.Name()
	case n.Kind.IsFunction():
		id := n.Name()
		if sc.class != "" {
			id = sc.class + "." + id
		}
		sc.function = id
		b.define(id, n, sc.class)
	case n.Kind == ast.Call && sc.function != "":
		callee := CalleeName(n.Child("func"), b.tree)
		b.calls[sc.function].add(callee)
		b.edges = append(b.edges, CallEdge{Caller: sc.function, Callee: callee, Lineno: n.Line})
	}
	for _, child := range n.Children() {
		b.visit(child, sc)
	}
}

// define registers a function; a redefinition keeps the first position but
// replaces the record and its calls.
func (b *callGraphBuilder) define(id string, n *ast.Node, class string) {
	rec := FunctionRecord{
		Identifier: id,
		Name:       n.Name(),
		Class:      class,
		Params:     positionalParams(n),
		Docstring:  ast.Docstring(n),
		Lineno:     n.Line,
		ASTRef:     b.assigner.Coordinate(n),
	}
	if _, ok := b.records[id]; !ok {
		b.order = append(b.order, id)
	}
	b.records[id] = &rec
	b.calls[id] = newOrderedSet()
}

func (b *callGraphBuilder) visitGlobal(n *ast.Node) {
	if n.Kind == ast.Call {
		b.edges = append(b.edges, CallEdge{
			Caller: GlobalCaller,
			Callee: CalleeName(n.Child("func"), b.tree),
			Lineno: n.Line,
		})
	}
	if n.Kind.IsFunction() {
		return
	}
	for _, child := range n.Children() {
		b.visitGlobal(child)
	}
}
