package script

import "fmt"

// EvalError represents a failed ${expr} or condition evaluation.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: cannot evaluate %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: cannot evaluate %q: %s", e.File, e.Expr, e.Message)
}

// ExecError represents a failed <?xsc python ...?> block execution.
type ExecError struct {
	File    string
	Line    int
	Message string
}

func (e *ExecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: python block failed: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: python block failed: %s", e.File, e.Message)
}

// ImportError represents an unresolvable <?xsc import name?> directive.
type ImportError struct {
	Module  string
	Message string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("cannot import module %q: %s", e.Module, e.Message)
}
