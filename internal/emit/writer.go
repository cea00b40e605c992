// Package emit provides the streaming XML output writer used by the
// execution engine. Literals pass through byte-exact; substitution
// results are escaped. Output is emitted incrementally and never
// rewritten, so an emitted fragment is final.
package emit

import (
	"bufio"
	"io"
	"strings"
)

// escaper covers the characters that must not appear raw in text content
// or double-quoted attribute values.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
)

// Writer emits output markup incrementally.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a buffered writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Literal emits raw markup unchanged, preserving the exact byte
// sequence, pass-through comments included.
func (e *Writer) Literal(s string) error {
	_, err := e.w.WriteString(s)
	return err
}

// Text emits evaluated substitution text with markup escaping applied.
func (e *Writer) Text(s string) error {
	_, err := escaper.WriteString(e.w, s)
	return err
}

// Flush writes any buffered output to the underlying writer.
func (e *Writer) Flush() error {
	return e.w.Flush()
}
