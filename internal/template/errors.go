package template

import "fmt"

// SyntaxError represents a malformed or mismatched directive structure.
// It is detected at parse time, before any data source is touched.
type SyntaxError struct {
	pos Position
	msg string
}

// NewSyntaxError creates a new syntax error at the given position.
func NewSyntaxError(pos Position, msg string) *SyntaxError {
	return &SyntaxError{pos: pos, msg: msg}
}

// NewSyntaxErrorf creates a new syntax error with formatting.
func NewSyntaxErrorf(pos Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// Position returns the location of the offending directive or marker.
func (e *SyntaxError) Position() Position { return e.pos }

func (e *SyntaxError) Error() string {
	if e.pos.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.pos.File, e.pos.Line, e.pos.Column, e.msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}
