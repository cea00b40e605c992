// Package script provides the Starlark evaluation scope for template
// execution. A Scope is the single owner of all template-visible state:
// imported modules, bindings created by python blocks, and the row
// bindings of active for loops. One Scope exists per template execution,
// so concurrent executions never share state.
package script

import (
	"log/slog"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// fileOptions enable the script-like dialect templates need: top-level
// control flow, while loops, sets, recursion, and reassignment of globals
// across sibling python blocks.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Scope is a mutable Starlark evaluation environment shared across one
// template execution. It is not safe for concurrent use; the engine
// traversal is strictly single-threaded.
type Scope struct {
	globals    starlark.StringDict
	modulesDir string
	logger     *slog.Logger
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger used for evaluation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scope) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithModulesDir sets the directory searched for user .star modules by
// import directives.
func WithModulesDir(dir string) Option {
	return func(s *Scope) { s.modulesDir = dir }
}

// NewScope creates an empty scope seeded only with the Starlark universe.
func NewScope(opts ...Option) *Scope {
	s := &Scope{
		globals: make(starlark.StringDict),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newThread creates a Starlark thread for one evaluation. Template
// execution does not print; print output goes to the debug log instead.
func (s *Scope) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			s.logger.Debug("python print", "msg", msg)
		},
	}
}

// Eval evaluates a single Starlark expression against the current scope.
// file and line locate the expression in the template for error reporting.
func (s *Scope) Eval(expr, file string, line int) (starlark.Value, error) {
	thread := s.newThread(file)
	result, err := starlark.EvalOptions(fileOptions, thread, file, expr, s.globals)
	if err != nil {
		return nil, &EvalError{
			File:    file,
			Line:    line,
			Expr:    expr,
			Message: err.Error(),
		}
	}
	return result, nil
}

// EvalString evaluates an expression and converts the result to its
// textual form: strings stay unquoted, None becomes empty, everything
// else uses the Starlark representation.
func (s *Scope) EvalString(expr, file string, line int) (string, error) {
	result, err := s.Eval(expr, file, line)
	if err != nil {
		return "", err
	}
	switch v := result.(type) {
	case starlark.String:
		return string(v), nil
	case starlark.NoneType:
		return "", nil
	default:
		return result.String(), nil
	}
}

// Exec runs a python block for its side effects. The block is executed
// as a REPL-style chunk over the scope globals, so it can read and
// reassign bindings created by earlier blocks, and its own bindings stay
// visible to every later expression and sibling block.
func (s *Scope) Exec(code, file string, line int) error {
	f, err := fileOptions.Parse(file, Dedent(code), 0)
	if err != nil {
		return &ExecError{File: file, Line: line, Message: err.Error()}
	}
	if err := starlark.ExecREPLChunk(f, s.newThread(file), s.globals); err != nil {
		return &ExecError{File: file, Line: line, Message: err.Error()}
	}
	return nil
}

// Truth reports the Starlark truthiness of a condition result. False,
// None, zero numbers and empty strings or collections are falsy;
// everything else is truthy.
func Truth(v starlark.Value) bool {
	return bool(v.Truth())
}

// Bind sets a name in the scope.
func (s *Scope) Bind(name string, value starlark.Value) {
	s.globals[name] = value
}

// Lookup returns the value bound to name, if any.
func (s *Scope) Lookup(name string) (starlark.Value, bool) {
	v, ok := s.globals[name]
	return v, ok
}

// PushRow binds a data source name to its current row, shadowing any
// outer binding of the same name. The returned restore function
// reinstates the prior binding, or its absence, and must be called when
// the loop body activation ends. This keeps sibling and nested loops over
// the same source name correct.
func (s *Scope) PushRow(name string, row starlark.Value) func() {
	prev, had := s.globals[name]
	s.globals[name] = row
	return func() {
		if had {
			s.globals[name] = prev
		} else {
			delete(s.globals, name)
		}
	}
}

// RowValue builds the Starlark value for one data source row. Fields are
// accessed as attributes, e.g. customers.surname. All values are text;
// numeric interpretation is up to the expression.
func RowValue(fields, values []string) starlark.Value {
	dict := make(starlark.StringDict, len(fields))
	for i, name := range fields {
		var v string
		if i < len(values) {
			v = values[i]
		}
		dict[name] = starlark.String(v)
	}
	return starlarkstruct.FromStringDict(starlark.String("row"), dict)
}
