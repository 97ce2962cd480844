package diagram

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"prism/internal/extractor"
	"prism/internal/retrieval"
)

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_]`)

// ClassDiagram renders classes and their bases as a Mermaid class diagram.
// Bases that are not defined in classes still get an inheritance arrow.
func ClassDiagram(classes []extractor.ClassRecord) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, c := range classes {
		id := sanitizeID(c.Name)
		if len(c.Attributes) == 0 && len(c.Methods) == 0 {
			fmt.Fprintf(&sb, "    class %s\n", id)
			continue
		}
		fmt.Fprintf(&sb, "    class %s {\n", id)
		for _, attr := range c.Attributes {
			fmt.Fprintf(&sb, "        +%s\n", attr)
		}
		for _, m := range c.Methods {
			fmt.Fprintf(&sb, "        +%s(%s)\n", m.Name, strings.Join(m.Params, ", "))
		}
		sb.WriteString("    }\n")
	}
	for _, c := range classes {
		for _, base := range c.Bases {
			fmt.Fprintf(&sb, "    %s <|-- %s\n", sanitizeID(base), sanitizeID(c.Name))
		}
	}
	return sb.String()
}

// CallFlowchart renders the call graph. Each distinct caller/callee pair is
// drawn once; callees that are not known functions are drawn as rounded
// external nodes.
func CallFlowchart(cg extractor.CallGraphResult) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	known := make(map[string]bool, len(cg.Functions))
	for _, fn := range cg.Functions {
		known[fn.Identifier] = true
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", sanitizeID(fn.Identifier), fn.Identifier)
	}

	external := map[string]bool{}
	type pair struct{ from, to string }
	seen := map[pair]bool{}
	var edges []string
	for _, call := range cg.Calls {
		p := pair{call.Caller, call.Callee}
		if seen[p] {
			continue
		}
		seen[p] = true
		for _, id := range []string{call.Caller, call.Callee} {
			if !known[id] {
				external[id] = true
			}
		}
		edges = append(edges, fmt.Sprintf("    %s --> %s\n", sanitizeID(call.Caller), sanitizeID(call.Callee)))
	}

	names := make([]string, 0, len(external))
	for id := range external {
		names = append(names, id)
	}
	sort.Strings(names)
	for _, id := range names {
		fmt.Fprintf(&sb, "    %s(\"%s\")\n", sanitizeID(id), id)
	}
	for _, e := range edges {
		sb.WriteString(e)
	}
	return sb.String()
}

// PathFlowchart renders the edges connecting retrieved functions. Matched
// nodes are highlighted; intermediate nodes are drawn plain.
func PathFlowchart(res retrieval.PathResult) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	matched := map[string]bool{}
	for _, m := range res.MatchedNodes {
		if matched[m.Identifier] {
			continue
		}
		matched[m.Identifier] = true
		fmt.Fprintf(&sb, "    %s[\"%s\"]:::matched\n", sanitizeID(m.Identifier), m.Identifier)
	}
	for _, id := range res.UniqueIntermediateNodes {
		if matched[id] {
			continue
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", sanitizeID(id), id)
	}
	for _, e := range res.UniqueEdges {
		fmt.Fprintf(&sb, "    %s -->|line %d| %s\n", sanitizeID(e.From), e.CallLine, sanitizeID(e.To))
	}
	sb.WriteString("    classDef matched stroke-width:3px\n")
	return sb.String()
}

func sanitizeID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "node"
	}
	v = unsafeID.ReplaceAllString(v, "_")
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}
