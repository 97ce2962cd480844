package ast

// Kind tags a syntax node. The set is closed: grammar nodes without a
// dedicated kind are converted to Other and keep their raw grammar type.
type Kind uint8

const (
	Other Kind = iota
	Module
	ClassDef
	FunctionDef
	AsyncFunctionDef
	Call
	Assign
	AnnAssign
	AugAssign
	Import
	ImportFrom
	Alias
	Name
	Attribute
	Expr
	Constant
	Return
	If
	For
	AsyncFor
	While
	With
	Try
	ExceptHandler
	Raise
	Pass
	Break
	Continue
	Arguments
	Arg
	Keyword
	Lambda
	Subscript
	Starred
	List
	Tuple
	Set
	Dict
	BinOp
	BoolOp
	Compare
	UnaryOp
	IfExp
	Await
	Yield
	Comprehension
	JoinedStr
	FormattedValue
)

var kindNames = [...]string{
	Other:            "Other",
	Module:           "Module",
	ClassDef:         "ClassDef",
	FunctionDef:      "FunctionDef",
	AsyncFunctionDef: "AsyncFunctionDef",
	Call:             "Call",
	Assign:           "Assign",
	AnnAssign:        "AnnAssign",
	AugAssign:        "AugAssign",
	Import:           "Import",
	ImportFrom:       "ImportFrom",
	Alias:            "alias",
	Name:             "Name",
	Attribute:        "Attribute",
	Expr:             "Expr",
	Constant:         "Constant",
	Return:           "Return",
	If:               "If",
	For:              "For",
	AsyncFor:         "AsyncFor",
	While:            "While",
	With:             "With",
	Try:              "Try",
	ExceptHandler:    "ExceptHandler",
	Raise:            "Raise",
	Pass:             "Pass",
	Break:            "Break",
	Continue:         "Continue",
	Arguments:        "arguments",
	Arg:              "arg",
	Keyword:          "keyword",
	Lambda:           "Lambda",
	Subscript:        "Subscript",
	Starred:          "Starred",
	List:             "List",
	Tuple:            "Tuple",
	Set:              "Set",
	Dict:             "Dict",
	BinOp:            "BinOp",
	BoolOp:           "BoolOp",
	Compare:          "Compare",
	UnaryOp:          "UnaryOp",
	IfExp:            "IfExp",
	Await:            "Await",
	Yield:            "Yield",
	Comprehension:    "Comprehension",
	JoinedStr:        "JoinedStr",
	FormattedValue:   "FormattedValue",
}

// String returns the Python ast class name for the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Other"
}

// IsFunction reports whether k is a function definition (sync or async).
func (k Kind) IsFunction() bool {
	return k == FunctionDef || k == AsyncFunctionDef
}

// IsStructural reports whether k opens a new scope in a node path.
func (k Kind) IsStructural() bool {
	return k == ClassDef || k == FunctionDef || k == AsyncFunctionDef
}

// rawKinds maps grammar types whose children are kept generically.
var rawKinds = map[string]Kind{
	"list":                     List,
	"list_pattern":             List,
	"tuple":                    Tuple,
	"tuple_pattern":            Tuple,
	"pattern_list":             Tuple,
	"expression_list":          Tuple,
	"set":                      Set,
	"dictionary":               Dict,
	"binary_operator":          BinOp,
	"boolean_operator":         BoolOp,
	"comparison_operator":      Compare,
	"unary_operator":           UnaryOp,
	"not_operator":             UnaryOp,
	"conditional_expression":   IfExp,
	"await":                    Await,
	"yield":                    Yield,
	"list_splat":               Starred,
	"list_splat_pattern":       Starred,
	"list_comprehension":       Comprehension,
	"set_comprehension":        Comprehension,
	"dictionary_comprehension": Comprehension,
	"generator_expression":     Comprehension,
	"raise_statement":          Raise,
}
