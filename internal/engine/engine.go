// Package engine interprets a parsed directive tree against bound data
// sources, emitting output markup as it goes. Traversal is depth-first,
// single-threaded and strictly synchronous; any directive failure aborts
// the whole execution, so the caller never publishes partial output.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/xsc/internal/emit"
	"github.com/leapstack-labs/xsc/internal/script"
	"github.com/leapstack-labs/xsc/internal/source"
	"github.com/leapstack-labs/xsc/internal/template"
)

// Options configures an Engine.
type Options struct {
	// Logger receives per-directive tracing at debug level. Nil discards.
	Logger *slog.Logger

	// ModulesDir is searched for user .star modules by import directives.
	ModulesDir string
}

// Engine executes one template against a set of named data sources.
type Engine struct {
	scope     *script.Scope
	providers map[string]source.Provider
	out       *emit.Writer
	logger    *slog.Logger

	file string // template path of the current execution
}

// New creates an engine writing to out. The providers map is keyed by
// data source name as referenced by for directives.
func New(providers map[string]source.Provider, out *emit.Writer, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		scope:     script.NewScope(script.WithLogger(logger), script.WithModulesDir(opts.ModulesDir)),
		providers: providers,
		out:       out,
		logger:    logger,
	}
}

// Scope exposes the engine's evaluation scope, letting embedders seed
// bindings before execution.
func (e *Engine) Scope() *script.Scope { return e.scope }

// Execute interprets the directive tree and flushes the output writer.
// On error nothing is flushed beyond what was already streamed; the
// caller decides whether the partial destination is discarded.
func (e *Engine) Execute(tpl *template.Template) error {
	e.file = tpl.File
	if err := e.execBody(tpl.Nodes); err != nil {
		return err
	}
	return e.out.Flush()
}

func (e *Engine) execBody(nodes []template.Node) error {
	for _, node := range nodes {
		if err := e.execNode(node); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) execNode(node template.Node) error {
	switch n := node.(type) {
	case *template.LiteralNode:
		return e.out.Literal(n.Text)

	case *template.SubstNode:
		text, err := e.scope.EvalString(n.Expr, e.file, n.Pos().Line)
		if err != nil {
			return err
		}
		return e.out.Text(text)

	case *template.ForNode:
		return e.execFor(n)

	case *template.IfNode:
		cond, err := e.scope.Eval(n.Cond, e.file, n.Pos().Line)
		if err != nil {
			return err
		}
		if !script.Truth(cond) {
			return nil
		}
		return e.execBody(n.Body)

	case *template.CodeNode:
		e.logger.Debug("execute python block", "line", n.Pos().Line)
		return e.scope.Exec(n.Code, e.file, n.Pos().Line)

	case *template.ImportNode:
		e.logger.Debug("import module", "module", n.Module, "line", n.Pos().Line)
		return e.scope.Import(n.Module)

	default:
		return fmt.Errorf("%s:%d: unexpected node type %T", e.file, node.Pos().Line, node)
	}
}

// execFor iterates one activation of a for directive. Every activation
// opens the source afresh, so sibling loops over the same name each read
// from the start. The reader is closed when the last row was consumed or
// when an error unwinds through the loop.
func (e *Engine) execFor(n *template.ForNode) error {
	provider, ok := e.providers[n.Source]
	if !ok {
		return &source.DataError{
			Source:  n.Source,
			Message: fmt.Sprintf("no data source bound under this name; bound: %v", e.sourceNames()),
		}
	}

	e.logger.Debug("iterate data source", "source", n.Source, "line", n.Pos().Line)

	reader, err := provider.Open()
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	rowCount := 0
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		rowCount++

		restore := e.scope.PushRow(n.Source, script.RowValue(row.Fields, row.Values))
		err = e.execBody(n.Body)
		restore()
		if err != nil {
			return err
		}
	}

	e.logger.Debug("data source exhausted", "source", n.Source, "rows", rowCount)
	return nil
}

func (e *Engine) sourceNames() []string {
	names := make([]string, 0, len(e.providers))
	for name := range e.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
