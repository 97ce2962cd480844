package extractor

// Coordinate locates a syntax node. Every record of every view carries the
// Coordinate of the node it was built from.
type Coordinate struct {
	NodeID   string   `json:"node_id"`
	Line     int      `json:"line"`
	Col      int      `json:"col"`
	EndLine  int      `json:"end_line"`
	EndCol   int      `json:"end_col"`
	NodeType string   `json:"node_type"`
	NodePath []string `json:"node_path"`
}

// ClassRecord describes a class definition.
type ClassRecord struct {
	Name       string         `json:"name"`
	Bases      []string       `json:"bases"`
	Methods    []MethodRecord `json:"methods"`
	Attributes []string       `json:"attributes"`
	Docstring  string         `json:"docstring"`
	Lineno     int            `json:"lineno"`
	ASTRef     Coordinate     `json:"ast_ref"`
	File       string         `json:"file,omitempty"`
}

// MethodRecord describes a function defined directly in a class body.
type MethodRecord struct {
	Name      string     `json:"name"`
	Params    []string   `json:"params"`
	Calls     []string   `json:"calls"`
	Docstring string     `json:"docstring"`
	Lineno    int        `json:"lineno"`
	ASTRef    Coordinate `json:"ast_ref"`
}

// FunctionRecord describes a function. Class is empty for standalone
// functions; in the call graph Identifier is "Class.name" for methods.
type FunctionRecord struct {
	Identifier string     `json:"identifier"`
	Name       string     `json:"name"`
	Class      string     `json:"class,omitempty"`
	Params     []string   `json:"params"`
	Calls      []string   `json:"calls"`
	Docstring  string     `json:"docstring"`
	Lineno     int        `json:"lineno"`
	ASTRef     Coordinate `json:"ast_ref"`
	File       string     `json:"file,omitempty"`
}

// CallEdge is a single call site. Edges are never deduplicated.
type CallEdge struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
	Lineno int    `json:"lineno"`
	File   string `json:"file,omitempty"`
}

// CallGraphResult is the output of the call-graph extractor.
type CallGraphResult struct {
	Functions []FunctionRecord `json:"functions"`
	Calls     []CallEdge       `json:"calls"`
}

// GlobalCaller names the caller of module-level calls.
const GlobalCaller = "__global__"
