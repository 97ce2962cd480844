package ast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("prism/ast")

// ErrSyntax marks source that the grammar could not parse.
var ErrSyntax = errors.New("syntax error")

// SyntaxError locates the first offending node of an unparsable source.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d, col %d)", e.Msg, e.Line, e.Col)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Parse converts Python source into a Tree. Sources with grammar errors
// return a *SyntaxError.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	ctx, span := tracer.Start(ctx, "ast.Parse",
		trace.WithAttributes(attribute.Int("source.bytes", len(source))))
	defer span.End()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	st, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		parseTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer st.Close()

	root := st.RootNode()
	if root == nil {
		parseTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("tree-sitter returned nil root node")
	}
	if root.HasError() {
		parseTotal.WithLabelValues("syntax_error").Inc()
		serr := firstSyntaxError(root)
		span.RecordError(serr)
		return nil, serr
	}

	if serr := invalidStatement(root); serr != nil {
		parseTotal.WithLabelValues("syntax_error").Inc()
		span.RecordError(serr)
		return nil, serr
	}

	c := &converter{src: source}
	mod := c.base(Module, root)
	mod.setList("body", c.statements(root))

	parseTotal.WithLabelValues("ok").Inc()
	return &Tree{Root: mod, Source: source}, nil
}

func firstSyntaxError(root *sitter.Node) *SyntaxError {
	var found *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if n.IsMissing() || n.Type() == "ERROR" {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	if found == nil {
		return &SyntaxError{Line: 1, Col: 0, Msg: "invalid syntax"}
	}
	msg := "invalid syntax"
	if found.IsMissing() {
		msg = fmt.Sprintf("missing %q", found.Type())
	}
	pt := found.StartPoint()
	return &SyntaxError{Line: int(pt.Row) + 1, Col: int(pt.Column), Msg: msg}
}

// compoundTypes are the grammar nodes that must own a non-empty block.
var compoundTypes = map[string]string{
	"function_definition": "function definition",
	"class_definition":    "class definition",
	"if_statement":        "'if' statement",
	"elif_clause":         "'elif' statement",
	"else_clause":         "'else' statement",
	"for_statement":       "'for' statement",
	"while_statement":     "'while' statement",
	"with_statement":      "'with' statement",
	"try_statement":       "'try' statement",
	"except_clause":       "'except' statement",
	"except_group_clause": "'except*' statement",
	"finally_clause":      "'finally' statement",
	"case_clause":         "'case' statement",
}

// invalidStatement finds constructs the grammar accepts but Python 3 does
// not: compound statements without an indented body, and the Python 2
// print and exec statements.
func invalidStatement(root *sitter.Node) *SyntaxError {
	var found *SyntaxError
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		pt := n.StartPoint()
		switch n.Type() {
		case "print_statement", "exec_statement":
			name := strings.TrimSuffix(n.Type(), "_statement")
			found = &SyntaxError{
				Line: int(pt.Row) + 1,
				Col:  int(pt.Column),
				Msg:  fmt.Sprintf("Missing parentheses in call to '%s'", name),
			}
			return
		}
		if what, ok := compoundTypes[n.Type()]; ok && !hasBody(n) {
			found = &SyntaxError{
				Line: int(pt.Row) + 1,
				Col:  int(pt.Column),
				Msg:  fmt.Sprintf("expected an indented block after %s on line %d", what, pt.Row+1),
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)
	return found
}

// hasBody reports whether every block directly owned by n holds at least
// one statement. Statements that own their body through clauses (try, and
// if without its own block) are checked at the clause.
func hasBody(n *sitter.Node) bool {
	blocks := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() != "block" {
			continue
		}
		blocks++
		if len(namedChildren(child)) == 0 {
			return false
		}
	}
	return blocks > 0
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) base(kind Kind, n *sitter.Node) *Node {
	start, end := n.StartPoint(), n.EndPoint()
	node := &Node{
		Kind:      kind,
		Line:      int(start.Row) + 1,
		Col:       int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
	}
	if kind == Other {
		node.RawType = n.Type()
	}
	return node
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" || child.Type() == "line_continuation" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// statements converts the statements of a module or block.
func (c *converter) statements(n *sitter.Node) []*Node {
	if n == nil {
		return []*Node{}
	}
	out := make([]*Node, 0, n.NamedChildCount())
	for _, child := range namedChildren(n) {
		if child.Type() == "block" {
			out = append(out, c.statements(child)...)
			continue
		}
		if stmt := c.statement(child); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

func (c *converter) statement(n *sitter.Node) *Node {
	switch n.Type() {
	case "function_definition":
		return c.function(n)
	case "class_definition":
		return c.class(n)
	case "decorated_definition":
		return c.decorated(n)
	case "expression_statement":
		return c.expressionStatement(n)
	case "import_statement":
		return c.importStatement(n)
	case "import_from_statement", "future_import_statement":
		return c.importFrom(n)
	case "return_statement":
		ret := c.base(Return, n)
		var value *Node
		if kids := namedChildren(n); len(kids) > 0 {
			value = c.expr(kids[0])
		}
		return ret.setNode("value", value)
	case "if_statement":
		return c.ifStatement(n)
	case "for_statement":
		kind := For
		if hasKeyword(n, "async") {
			kind = AsyncFor
		}
		node := c.base(kind, n)
		node.setNode("target", c.expr(n.ChildByFieldName("left")))
		node.setNode("iter", c.expr(n.ChildByFieldName("right")))
		node.setList("body", c.statements(n.ChildByFieldName("body")))
		node.setList("orelse", c.elseBody(n.ChildByFieldName("alternative")))
		return clampEnd(node, "body", "orelse")
	case "while_statement":
		node := c.base(While, n)
		node.setNode("test", c.expr(n.ChildByFieldName("condition")))
		node.setList("body", c.statements(n.ChildByFieldName("body")))
		node.setList("orelse", c.elseBody(n.ChildByFieldName("alternative")))
		return clampEnd(node, "body", "orelse")
	case "with_statement":
		return c.withStatement(n)
	case "try_statement":
		return c.tryStatement(n)
	case "pass_statement":
		return c.base(Pass, n)
	case "break_statement":
		return c.base(Break, n)
	case "continue_statement":
		return c.base(Continue, n)
	}
	return c.generic(n)
}

func hasKeyword(n *sitter.Node, keyword string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == keyword {
			return true
		}
	}
	return false
}

func (c *converter) function(n *sitter.Node) *Node {
	kind := FunctionDef
	if hasKeyword(n, "async") {
		kind = AsyncFunctionDef
	}
	node := c.base(kind, n)
	node.setValue("name", c.text(n.ChildByFieldName("name")))
	node.setNode("args", c.parameters(n.ChildByFieldName("parameters")))
	node.setList("body", c.statements(n.ChildByFieldName("body")))
	node.setList("decorator_list", nil)
	var returns *Node
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		returns = c.expr(rt)
	}
	node.setNode("returns", returns)
	return clampEnd(node, "body")
}

// clampEnd ends a compound node at its last statement. The grammar lets a
// block run on over trailing comments; Python's end position does not.
// fields are given in source order.
func clampEnd(node *Node, fields ...string) *Node {
	for i := len(fields) - 1; i >= 0; i-- {
		stmts := node.List(fields[i])
		if len(stmts) == 0 {
			continue
		}
		last := stmts[len(stmts)-1]
		if last.EndLine < node.EndLine || (last.EndLine == node.EndLine && last.EndCol < node.EndCol) {
			node.EndLine = last.EndLine
			node.EndCol = last.EndCol
			node.EndByte = last.EndByte
		}
		break
	}
	return node
}

func (c *converter) class(n *sitter.Node) *Node {
	node := c.base(ClassDef, n)
	node.setValue("name", c.text(n.ChildByFieldName("name")))
	var bases, keywords []*Node
	for _, arg := range namedChildren(n.ChildByFieldName("superclasses")) {
		if arg.Type() == "keyword_argument" {
			keywords = append(keywords, c.keyword(arg))
			continue
		}
		bases = append(bases, c.expr(arg))
	}
	node.setList("bases", bases)
	node.setList("keywords", keywords)
	node.setList("body", c.statements(n.ChildByFieldName("body")))
	node.setList("decorator_list", nil)
	return clampEnd(node, "body")
}

func (c *converter) decorated(n *sitter.Node) *Node {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return c.generic(n)
	}
	node := c.statement(def)
	var decorators []*Node
	for _, child := range namedChildren(n) {
		if child.Type() != "decorator" {
			continue
		}
		if kids := namedChildren(child); len(kids) > 0 {
			decorators = append(decorators, c.expr(kids[0]))
		}
	}
	node.replaceList("decorator_list", decorators)
	return node
}

// parameters keeps the plain positional parameters in args; the rest are
// recorded by name only.
func (c *converter) parameters(n *sitter.Node) *Node {
	if n == nil {
		return &Node{Kind: Arguments, Fields: []Field{{Name: "args", List: []*Node{}, isList: true}}}
	}
	node := c.base(Arguments, n)
	var args, posonly, kwonly, defaults, kwDefaults []*Node
	var vararg, kwarg *Node
	keywordOnly := false
	for i := 0; i < int(n.ChildCount()); i++ {
		p := n.Child(i)
		if p == nil || p.Type() == "comment" {
			continue
		}
		switch p.Type() {
		case "identifier":
			if keywordOnly {
				kwonly = append(kwonly, c.arg(p, p))
			} else {
				args = append(args, c.arg(p, p))
			}
		case "typed_parameter":
			ident := firstOfType(p, "identifier")
			if ident == nil {
				if splat := firstNamed(p); splat != nil {
					c.splat(splat, p, &vararg, &kwarg, &keywordOnly)
				}
				continue
			}
			a := c.arg(p, ident)
			a.setNode("annotation", c.expr(p.ChildByFieldName("type")))
			if keywordOnly {
				kwonly = append(kwonly, a)
			} else {
				args = append(args, a)
			}
		case "default_parameter", "typed_default_parameter":
			a := c.arg(p, p.ChildByFieldName("name"))
			if typ := p.ChildByFieldName("type"); typ != nil {
				a.setNode("annotation", c.expr(typ))
			}
			value := c.expr(p.ChildByFieldName("value"))
			if keywordOnly {
				kwonly = append(kwonly, a)
				kwDefaults = append(kwDefaults, value)
			} else {
				args = append(args, a)
				defaults = append(defaults, value)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			c.splat(p, p, &vararg, &kwarg, &keywordOnly)
		case "keyword_separator", "*":
			keywordOnly = true
		case "positional_separator", "/":
			posonly = append(posonly, args...)
			args = nil
		}
	}
	node.setList("posonlyargs", posonly)
	node.setList("args", args)
	node.setNode("vararg", vararg)
	node.setList("kwonlyargs", kwonly)
	node.setList("kw_defaults", kwDefaults)
	node.setNode("kwarg", kwarg)
	return node.setList("defaults", defaults)
}

func (c *converter) splat(p, pos *sitter.Node, vararg, kwarg **Node, keywordOnly *bool) {
	ident := firstOfType(p, "identifier")
	if ident == nil {
		return
	}
	a := c.arg(pos, ident)
	if p.Type() == "dictionary_splat_pattern" {
		*kwarg = a
		return
	}
	*vararg = a
	*keywordOnly = true
}

func (c *converter) arg(pos, ident *sitter.Node) *Node {
	a := c.base(Arg, pos)
	return a.setValue("arg", c.text(ident))
}

func firstOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, child := range namedChildren(n) {
		if child.Type() == typ {
			return child
		}
	}
	return nil
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if kids := namedChildren(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

func (c *converter) expressionStatement(n *sitter.Node) *Node {
	kids := namedChildren(n)
	if len(kids) == 1 {
		switch kids[0].Type() {
		case "assignment":
			return c.assignment(n, kids[0])
		case "augmented_assignment":
			node := c.base(AugAssign, n)
			node.setNode("target", c.expr(kids[0].ChildByFieldName("left")))
			node.setValue("op", c.text(kids[0].ChildByFieldName("operator")))
			return node.setNode("value", c.expr(kids[0].ChildByFieldName("right")))
		}
	}
	node := c.base(Expr, n)
	if len(kids) == 1 {
		return node.setNode("value", c.expr(kids[0]))
	}
	tuple := c.base(Tuple, n)
	elts := make([]*Node, 0, len(kids))
	for _, k := range kids {
		elts = append(elts, c.expr(k))
	}
	tuple.setList("elts", elts)
	return node.setNode("value", tuple)
}

// assignment flattens chained targets (a = b = value) into one Assign.
func (c *converter) assignment(stmt, n *sitter.Node) *Node {
	if typ := n.ChildByFieldName("type"); typ != nil {
		node := c.base(AnnAssign, stmt)
		node.setNode("target", c.expr(n.ChildByFieldName("left")))
		node.setNode("annotation", c.expr(typ))
		var value *Node
		if right := n.ChildByFieldName("right"); right != nil {
			value = c.expr(right)
		}
		return node.setNode("value", value)
	}

	targets := []*Node{c.expr(n.ChildByFieldName("left"))}
	right := n.ChildByFieldName("right")
	for right != nil && right.Type() == "assignment" && right.ChildByFieldName("type") == nil {
		targets = append(targets, c.expr(right.ChildByFieldName("left")))
		right = right.ChildByFieldName("right")
	}
	node := c.base(Assign, stmt)
	node.setList("targets", targets)
	var value *Node
	if right != nil {
		value = c.expr(right)
	}
	return node.setNode("value", value)
}

func (c *converter) importStatement(n *sitter.Node) *Node {
	node := c.base(Import, n)
	var names []*Node
	for _, child := range namedChildren(n) {
		if alias := c.alias(child); alias != nil {
			names = append(names, alias)
		}
	}
	return node.setList("names", names)
}

func (c *converter) importFrom(n *sitter.Node) *Node {
	node := c.base(ImportFrom, n)
	module := ""
	level := 0
	var names []*Node
	sawImport := n.Type() == "future_import_statement"
	if sawImport {
		module = "__future__"
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			for _, part := range namedChildren(child) {
				switch part.Type() {
				case "import_prefix":
					level = strings.Count(c.text(part), ".")
				case "dotted_name":
					module = c.text(part)
				}
			}
		case "wildcard_import":
			a := c.base(Alias, child)
			names = append(names, a.setValue("name", "*").setValue("asname", nil))
		case "dotted_name", "aliased_import":
			if !sawImport {
				module = c.text(child)
				continue
			}
			if alias := c.alias(child); alias != nil {
				names = append(names, alias)
			}
		}
	}
	node.setValue("module", module)
	node.setList("names", names)
	return node.setValue("level", int64(level))
}

func (c *converter) alias(n *sitter.Node) *Node {
	switch n.Type() {
	case "dotted_name":
		a := c.base(Alias, n)
		return a.setValue("name", c.text(n)).setValue("asname", nil)
	case "aliased_import":
		a := c.base(Alias, n)
		a.setValue("name", c.text(n.ChildByFieldName("name")))
		return a.setValue("asname", c.text(n.ChildByFieldName("alias")))
	}
	return nil
}

func (c *converter) ifStatement(n *sitter.Node) *Node {
	node := c.base(If, n)
	node.setNode("test", c.expr(n.ChildByFieldName("condition")))
	node.setList("body", c.statements(n.ChildByFieldName("consequence")))

	var alts []*sitter.Node
	for _, child := range namedChildren(n) {
		if child.Type() == "elif_clause" || child.Type() == "else_clause" {
			alts = append(alts, child)
		}
	}
	node.setList("orelse", c.alternatives(alts))
	return clampEnd(node, "body", "orelse")
}

func (c *converter) alternatives(alts []*sitter.Node) []*Node {
	if len(alts) == 0 {
		return nil
	}
	alt := alts[0]
	if alt.Type() == "else_clause" {
		return c.statements(alt.ChildByFieldName("body"))
	}
	node := c.base(If, alt)
	node.setNode("test", c.expr(alt.ChildByFieldName("condition")))
	node.setList("body", c.statements(alt.ChildByFieldName("consequence")))
	node.setList("orelse", c.alternatives(alts[1:]))
	return []*Node{clampEnd(node, "body", "orelse")}
}

func (c *converter) elseBody(n *sitter.Node) []*Node {
	if n == nil {
		return nil
	}
	return c.statements(n.ChildByFieldName("body"))
}

func (c *converter) withStatement(n *sitter.Node) *Node {
	node := c.base(With, n)
	var items []*Node
	for _, child := range namedChildren(n) {
		if child.Type() != "with_clause" {
			continue
		}
		for _, item := range namedChildren(child) {
			if v := firstNamed(item); v != nil && item.Type() == "with_item" {
				items = append(items, c.expr(v))
				continue
			}
			items = append(items, c.expr(item))
		}
	}
	node.setList("items", items)
	node.setList("body", c.statements(n.ChildByFieldName("body")))
	return clampEnd(node, "body")
}

func (c *converter) tryStatement(n *sitter.Node) *Node {
	node := c.base(Try, n)
	var handlers, orelse, final []*Node
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "except_clause", "except_group_clause":
			h := c.base(ExceptHandler, child)
			var typ *Node
			var body []*Node
			for _, part := range namedChildren(child) {
				if part.Type() == "block" {
					body = c.statements(part)
				} else if typ == nil {
					typ = c.expr(part)
				}
			}
			h.setNode("type", typ)
			h.setList("body", body)
			handlers = append(handlers, clampEnd(h, "body"))
		case "else_clause":
			orelse = c.statements(child.ChildByFieldName("body"))
		case "finally_clause":
			final = c.statements(firstOfType(child, "block"))
		}
	}
	node.setList("body", c.statements(n.ChildByFieldName("body")))
	node.setList("handlers", handlers)
	node.setList("orelse", orelse)
	node.setList("finalbody", final)
	return clampEnd(node, "body", "handlers", "orelse", "finalbody")
}

func (c *converter) expr(n *sitter.Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return c.base(Name, n).setValue("id", c.text(n))
	case "attribute":
		node := c.base(Attribute, n)
		node.setNode("value", c.expr(n.ChildByFieldName("object")))
		return node.setValue("attr", c.text(n.ChildByFieldName("attribute")))
	case "call":
		return c.call(n)
	case "parenthesized_expression":
		if inner := firstNamed(n); inner != nil {
			return c.expr(inner)
		}
	case "string":
		if hasInterpolation(n) {
			return c.base(JoinedStr, n).setList("values", c.formattedParts(n))
		}
		return c.base(Constant, n).setValue("value", StringValue(c.text(n)))
	case "concatenated_string":
		parts := namedChildren(n)
		for _, part := range parts {
			if !hasInterpolation(part) {
				continue
			}
			var values []*Node
			for _, p := range parts {
				values = append(values, c.formattedParts(p)...)
			}
			return c.base(JoinedStr, n).setList("values", values)
		}
		var sb strings.Builder
		for _, part := range parts {
			sb.WriteString(StringValue(c.text(part)))
		}
		return c.base(Constant, n).setValue("value", sb.String())
	case "integer":
		node := c.base(Constant, n)
		if v, err := strconv.ParseInt(strings.ReplaceAll(c.text(n), "_", ""), 0, 64); err == nil {
			return node.setValue("value", v)
		}
		return node.setValue("value", c.text(n))
	case "float":
		node := c.base(Constant, n)
		if v, err := strconv.ParseFloat(strings.ReplaceAll(c.text(n), "_", ""), 64); err == nil {
			return node.setValue("value", v)
		}
		return node.setValue("value", c.text(n))
	case "true", "false":
		return c.base(Constant, n).setValue("value", n.Type() == "true")
	case "none":
		return c.base(Constant, n).setValue("value", nil)
	case "lambda":
		node := c.base(Lambda, n)
		node.setNode("args", c.parameters(n.ChildByFieldName("parameters")))
		return node.setNode("body", c.expr(n.ChildByFieldName("body")))
	case "subscript":
		node := c.base(Subscript, n)
		node.setNode("value", c.expr(n.ChildByFieldName("value")))
		return node.setNode("slice", c.expr(n.ChildByFieldName("subscript")))
	case "keyword_argument":
		return c.keyword(n)
	case "assignment":
		return c.assignment(n, n)
	}
	return c.generic(n)
}

func hasInterpolation(n *sitter.Node) bool {
	return n.Type() == "string" && firstOfType(n, "interpolation") != nil
}

// formattedParts splits a string literal into the values of a JoinedStr:
// Constant text segments and a FormattedValue per interpolation.
func (c *converter) formattedParts(n *sitter.Node) []*Node {
	var values []*Node
	for _, part := range namedChildren(n) {
		switch part.Type() {
		case "string_content":
			values = append(values, c.base(Constant, part).setValue("value", c.text(part)))
		case "interpolation":
			expr := part.ChildByFieldName("expression")
			if expr == nil {
				expr = firstNamed(part)
			}
			fv := c.base(FormattedValue, part)
			values = append(values, fv.setNode("value", c.expr(expr)))
		}
	}
	return values
}

func (c *converter) call(n *sitter.Node) *Node {
	node := c.base(Call, n)
	node.setNode("func", c.expr(n.ChildByFieldName("function")))
	var args, keywords []*Node
	arguments := n.ChildByFieldName("arguments")
	if arguments != nil && arguments.Type() == "argument_list" {
		for _, a := range namedChildren(arguments) {
			switch a.Type() {
			case "keyword_argument":
				keywords = append(keywords, c.keyword(a))
			case "dictionary_splat":
				kw := c.base(Keyword, a)
				kw.setValue("arg", nil)
				keywords = append(keywords, kw.setNode("value", c.expr(firstNamed(a))))
			default:
				args = append(args, c.expr(a))
			}
		}
	} else if arguments != nil {
		args = append(args, c.expr(arguments))
	}
	node.setList("args", args)
	return node.setList("keywords", keywords)
}

func (c *converter) keyword(n *sitter.Node) *Node {
	kw := c.base(Keyword, n)
	kw.setValue("arg", c.text(n.ChildByFieldName("name")))
	return kw.setNode("value", c.expr(n.ChildByFieldName("value")))
}

// generic keeps the named children of nodes without a dedicated shape.
func (c *converter) generic(n *sitter.Node) *Node {
	kind, ok := rawKinds[n.Type()]
	if !ok {
		kind = Other
	}
	node := c.base(kind, n)
	var children []*Node
	for _, child := range namedChildren(n) {
		if child.Type() == "block" {
			children = append(children, c.statements(child)...)
			continue
		}
		children = append(children, c.expr(child))
	}
	name := "children"
	if kind == List || kind == Tuple || kind == Set {
		name = "elts"
	}
	return node.setList(name, children)
}

// StringValue strips prefixes and quotes from a string literal's source.
func StringValue(raw string) string {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(raw) >= 2*len(q) && strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	return raw
}
