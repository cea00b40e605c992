package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// csvProvider reads delimited text files with a heading row or a schema
// descriptor naming the fields.
type csvProvider struct {
	name     string
	path     string
	schema   *Schema
	encoding string
	comma    rune
}

func newCSVProvider(b Binding, schema *Schema, opts Options) (Provider, error) {
	comma := ','
	if schema != nil && schema.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(schema.Delimiter)
		if size != len(schema.Delimiter) {
			return nil, &DataError{
				Source:  b.Name,
				Locator: b.SchemaPath,
				Message: fmt.Sprintf("delimiter must be a single character but is: %q", schema.Delimiter),
			}
		}
		comma = r
	}
	if schema == nil || len(schema.Fields) == 0 {
		// Without declared fields the heading row is mandatory; it is
		// the only place field names can come from.
		if schema != nil && !schema.hasHeader() {
			return nil, &DataError{
				Source:  b.Name,
				Locator: b.SchemaPath,
				Message: "schema must declare fields when the data file has no heading row",
			}
		}
	}
	return &csvProvider{
		name:     b.Name,
		path:     b.DataPath,
		schema:   schema,
		encoding: resolveEncoding(schema, opts),
		comma:    comma,
	}, nil
}

func (p *csvProvider) Name() string { return p.name }

func (p *csvProvider) Fields() ([]string, error) {
	if names := p.schema.fieldNames(); names != nil {
		return names, nil
	}
	r, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.(*csvReader).fields, nil
}

func (p *csvProvider) Open() (Reader, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	decoded, err := decodeReader(f, p.encoding)
	if err != nil {
		_ = f.Close()
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	cr := csv.NewReader(decoded)
	cr.Comma = p.comma
	cr.FieldsPerRecord = -1 // field counts are checked by the validator

	reader := &csvReader{
		provider: p,
		file:     f,
		csv:      cr,
		check:    newValidator(p.name, p.path, p.schema),
	}

	if names := p.schema.fieldNames(); names != nil {
		reader.fields = names
		if p.schema.hasHeader() {
			if _, err := cr.Read(); err != nil && err != io.EOF {
				_ = f.Close()
				return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
			}
		}
	} else {
		header, err := cr.Read()
		if err == io.EOF {
			_ = f.Close()
			return nil, &DataError{Source: p.name, Locator: p.path, Message: "data file is empty, heading row expected"}
		}
		if err != nil {
			_ = f.Close()
			return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
		}
		for i, name := range header {
			if !isIdentifier(name) {
				_ = f.Close()
				return nil, &DataError{
					Source:  p.name,
					Locator: p.path,
					Message: fmt.Sprintf("heading %d is %q but must be an identifier; provide a schema descriptor", i+1, name),
				}
			}
		}
		reader.fields = header
	}

	return reader, nil
}

type csvReader struct {
	provider *csvProvider
	file     *os.File
	csv      *csv.Reader
	fields   []string
	check    *validator
	rowNum   int
}

func (r *csvReader) Next() (*Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &DataError{Source: r.provider.name, Locator: r.provider.path, Row: r.rowNum + 1, Message: err.Error()}
	}
	r.rowNum++

	if err := r.check.check(r.rowNum, record); err != nil {
		return nil, err
	}
	if r.check == nil && len(record) != len(r.fields) {
		return nil, &DataError{
			Source:  r.provider.name,
			Locator: r.provider.path,
			Row:     r.rowNum,
			Message: fmt.Sprintf("expected %d fields but found %d", len(r.fields), len(record)),
		}
	}
	return &Row{Fields: r.fields, Values: record}, nil
}

func (r *csvReader) Close() error { return r.file.Close() }
