package ast

import "strings"

// Docstring returns the cleaned docstring of a Module, ClassDef or function
// definition, or "" when the first body statement is not a string literal.
func Docstring(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case Module, ClassDef, FunctionDef, AsyncFunctionDef:
	default:
		return ""
	}
	body := n.Body()
	if len(body) == 0 || body[0].Kind != Expr {
		return ""
	}
	value := body[0].Child("value")
	if value == nil || value.Kind != Constant {
		return ""
	}
	s, ok := value.Value("value").(string)
	if !ok {
		return ""
	}
	return CleanDoc(s)
}

// CleanDoc removes the common leading indentation of every line after the
// first and trims blank lines at both ends.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")
	margin := -1
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " ")
		if stripped == "" {
			continue
		}
		indent := len(line) - len(stripped)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
