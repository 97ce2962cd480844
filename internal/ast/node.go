package ast

import (
	"regexp"
	"strings"
)

// Field is one named slot of a Node: a single child, a list of children, or
// a scalar literal (string, int64, float64, bool or nil).
type Field struct {
	Name   string
	Node   *Node
	List   []*Node
	Value  any
	isList bool
	isNode bool
}

// IsList reports whether the field holds a sequence of children.
func (f Field) IsList() bool { return f.isList }

// IsNode reports whether the field holds a single child.
func (f Field) IsNode() bool { return f.isNode }

type Node struct {
	Kind    Kind
	RawType string
	Line    int
	Col     int
	EndLine int
	EndCol  int

	StartByte uint32
	EndByte   uint32

	Fields []Field
}

func (n *Node) field(name string) *Field {
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return &n.Fields[i]
		}
	}
	return nil
}

// Child returns the single child stored under name, or nil.
func (n *Node) Child(name string) *Node {
	if f := n.field(name); f != nil && f.isNode {
		return f.Node
	}
	return nil
}

// List returns the children stored under name.
func (n *Node) List(name string) []*Node {
	if f := n.field(name); f != nil && f.isList {
		return f.List
	}
	return nil
}

// Str returns the string scalar stored under name, or "".
func (n *Node) Str(name string) string {
	if f := n.field(name); f != nil {
		if s, ok := f.Value.(string); ok {
			return s
		}
	}
	return ""
}

// Value returns the scalar stored under name.
func (n *Node) Value(name string) any {
	if f := n.field(name); f != nil {
		return f.Value
	}
	return nil
}

// Name returns the declared name of a ClassDef or function definition.
func (n *Node) Name() string {
	return n.Str("name")
}

// Body returns the statements of a compound node.
func (n *Node) Body() []*Node {
	return n.List("body")
}

// Children returns every child node in field order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, f := range n.Fields {
		switch {
		case f.isNode && f.Node != nil:
			out = append(out, f.Node)
		case f.isList:
			for _, c := range f.List {
				if c != nil {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func (n *Node) setNode(name string, child *Node) *Node {
	n.Fields = append(n.Fields, Field{Name: name, Node: child, isNode: true})
	return n
}

func (n *Node) setList(name string, children []*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	n.Fields = append(n.Fields, Field{Name: name, List: children, isList: true})
	return n
}

func (n *Node) setValue(name string, v any) *Node {
	n.Fields = append(n.Fields, Field{Name: name, Value: v})
	return n
}

// replaceList overwrites an existing list field, appending it when absent.
func (n *Node) replaceList(name string, children []*Node) {
	if f := n.field(name); f != nil {
		f.List = children
		f.isList = true
		f.isNode = false
		return
	}
	n.setList(name, children)
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Tree is a parsed module together with the source it was parsed from.
type Tree struct {
	Root   *Node
	Source []byte
	lines  []string
}

// Text returns the verbatim source slice covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil || int(n.EndByte) > len(t.Source) || n.StartByte > n.EndByte {
		return ""
	}
	return string(t.Source[n.StartByte:n.EndByte])
}

// Lines returns the source split on newlines.
func (t *Tree) Lines() []string {
	if t.lines == nil {
		t.lines = SplitLines(string(t.Source))
	}
	return t.lines
}

// SplitLines splits source on line breaks without keeping the terminators.
func SplitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return strings.Split(src, "\n")
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace folds every whitespace run into a single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
