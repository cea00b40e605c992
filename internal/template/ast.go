// Package template parses XML documents annotated with xsc processing
// instructions into a directive tree. Directives express iteration over
// data sources (<?xsc for name?>), conditional inclusion (<?xsc if expr?>),
// code execution (<?xsc python ...?>), module imports (<?xsc import name?>)
// and comments (<?xsc # ...?>). Text and attribute values may embed
// ${expr} substitutions; everything else passes through verbatim.
package template

// Position tracks source location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// Node is the interface for all directive tree nodes.
type Node interface {
	Pos() Position
	node() // marker method to restrict implementation
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	pos Position
}

func (n *nodeBase) Pos() Position { return n.pos }
func (n *nodeBase) node()         {}

// LiteralNode represents raw markup passed through unchanged, including
// XML comments, CDATA sections and non-xsc processing instructions.
type LiteralNode struct {
	nodeBase
	Text string
}

// SubstNode represents a ${expr} substitution. The Expr field contains
// the Starlark expression source without the delimiters. Its evaluated
// result is emitted escaped.
type SubstNode struct {
	nodeBase
	Expr string
}

// ForNode represents a <?xsc for name?> ... <?xsc end for?> loop over the
// rows of the named data source.
type ForNode struct {
	nodeBase
	Source string
	Body   []Node
}

// IfNode represents a <?xsc if expr?> ... <?xsc end if?> conditional.
type IfNode struct {
	nodeBase
	Cond string
	Body []Node
}

// CodeNode represents a <?xsc python ...?> block executed for its side
// effects on the scope. It produces no output.
type CodeNode struct {
	nodeBase
	Code string
}

// ImportNode represents a <?xsc import name?> directive binding a module
// into the scope. It produces no output.
type ImportNode struct {
	nodeBase
	Module string
}

// Template is a parsed directive tree.
type Template struct {
	// File is the template path, used in error messages.
	File string
	// Nodes is the ordered top-level node sequence.
	Nodes []Node
}
