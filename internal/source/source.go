// Package source provides the data source providers consumed by the
// execution engine: CSV files, fixed-width text files and SQLite tables,
// optionally validated against a YAML schema descriptor. Providers are
// restartable factories; every Open reads the underlying data from the
// start, so sibling loops over the same source each get a fresh pass.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Row is one record of a data source. Values are parallel to Fields and
// are always text; numeric or date interpretation happens in expressions.
type Row struct {
	Fields []string
	Values []string
}

// Reader produces the rows of one source activation, in source order,
// single pass. Next returns io.EOF when the source is exhausted.
type Reader interface {
	Next() (*Row, error)
	Close() error
}

// Provider is a restartable factory for the rows of a named source.
type Provider interface {
	// Name is the binding name the template refers to.
	Name() string
	// Fields returns the field names without reading data rows.
	Fields() ([]string, error)
	// Open starts a fresh single pass over the rows.
	Open() (Reader, error)
}

// DataError represents a source that cannot be opened, read or validated.
type DataError struct {
	Source  string
	Locator string
	Row     int // 1-based data row number, 0 if not row-specific
	Message string
}

func (e *DataError) Error() string {
	where := e.Source
	if e.Locator != "" {
		where = fmt.Sprintf("%s (%s)", e.Source, e.Locator)
	}
	if e.Row > 0 {
		return fmt.Sprintf("data source %s: row %d: %s", where, e.Row, e.Message)
	}
	return fmt.Sprintf("data source %s: %s", where, e.Message)
}

// Options carries cross-source settings from configuration.
type Options struct {
	// DefaultEncoding is used for text sources whose schema does not
	// declare one. Empty means UTF-8.
	DefaultEncoding string
}

// New builds a provider for a binding, dispatching on the locator
// extension. The optional schema descriptor is loaded eagerly so that a
// broken descriptor fails before any data is read.
func New(b Binding, opts Options) (Provider, error) {
	var schema *Schema
	if b.SchemaPath != "" {
		loaded, err := LoadSchema(b.SchemaPath)
		if err != nil {
			return nil, &DataError{Source: b.Name, Locator: b.SchemaPath, Message: err.Error()}
		}
		schema = loaded
	}

	ext := strings.ToLower(filepath.Ext(b.DataPath))
	switch ext {
	case ".csv":
		return newCSVProvider(b, schema, opts)
	case ".prn", ".txt", ".dat":
		return newFixedWidthProvider(b, schema, opts)
	case ".db", ".sqlite", ".sqlite3":
		return newSQLiteProvider(b, schema)
	default:
		return nil, &DataError{
			Source:  b.Name,
			Locator: b.DataPath,
			Message: fmt.Sprintf("unsupported data format %q; supported: .csv, .prn, .txt, .dat, .db, .sqlite, .sqlite3", ext),
		}
	}
}

// FromRows builds an in-memory provider. It backs tests and embedders
// that already hold their rows.
func FromRows(name string, fields []string, values [][]string) Provider {
	return &memoryProvider{name: name, fields: fields, values: values}
}

type memoryProvider struct {
	name   string
	fields []string
	values [][]string
}

func (p *memoryProvider) Name() string              { return p.name }
func (p *memoryProvider) Fields() ([]string, error) { return p.fields, nil }

func (p *memoryProvider) Open() (Reader, error) {
	return &memoryReader{provider: p}, nil
}

type memoryReader struct {
	provider *memoryProvider
	next     int
}

func (r *memoryReader) Next() (*Row, error) {
	if r.next >= len(r.provider.values) {
		return nil, io.EOF
	}
	row := &Row{Fields: r.provider.fields, Values: r.provider.values[r.next]}
	r.next++
	return row, nil
}

func (r *memoryReader) Close() error { return nil }
