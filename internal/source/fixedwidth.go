package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// fixedWidthProvider reads PRN-style files whose columns are cut at
// fixed character offsets declared by the schema descriptor.
type fixedWidthProvider struct {
	name     string
	path     string
	schema   *Schema
	encoding string
	fields   []string
	widths   []int
}

func newFixedWidthProvider(b Binding, schema *Schema, opts Options) (Provider, error) {
	if schema == nil || len(schema.Fields) == 0 {
		return nil, &DataError{
			Source:  b.Name,
			Locator: b.DataPath,
			Message: "fixed-width sources need a schema descriptor declaring fields and widths",
		}
	}
	widths := make([]int, len(schema.Fields))
	for i, f := range schema.Fields {
		if f.Width <= 0 {
			return nil, &DataError{
				Source:  b.Name,
				Locator: b.SchemaPath,
				Message: fmt.Sprintf("field %q needs a positive width for fixed-width data", f.Name),
			}
		}
		widths[i] = f.Width
	}
	return &fixedWidthProvider{
		name:     b.Name,
		path:     b.DataPath,
		schema:   schema,
		encoding: resolveEncoding(schema, opts),
		fields:   schema.fieldNames(),
		widths:   widths,
	}, nil
}

func (p *fixedWidthProvider) Name() string              { return p.name }
func (p *fixedWidthProvider) Fields() ([]string, error) { return p.fields, nil }

func (p *fixedWidthProvider) Open() (Reader, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	decoded, err := decodeReader(f, p.encoding)
	if err != nil {
		_ = f.Close()
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	reader := &fixedWidthReader{
		provider: p,
		file:     f,
		scanner:  bufio.NewScanner(decoded),
		check:    newValidator(p.name, p.path, p.schema),
	}
	if p.schema.hasHeader() {
		reader.scanner.Scan() // heading row carries no data
	}
	return reader, nil
}

type fixedWidthReader struct {
	provider *fixedWidthProvider
	file     *os.File
	scanner  *bufio.Scanner
	check    *validator
	rowNum   int
}

func (r *fixedWidthReader) Next() (*Row, error) {
	for {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, &DataError{Source: r.provider.name, Locator: r.provider.path, Row: r.rowNum + 1, Message: err.Error()}
			}
			return nil, io.EOF
		}
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.rowNum++

		values := cutWidths(line, r.provider.widths)
		if err := r.check.check(r.rowNum, values); err != nil {
			return nil, err
		}
		return &Row{Fields: r.provider.fields, Values: values}, nil
	}
}

func (r *fixedWidthReader) Close() error { return r.file.Close() }

// cutWidths slices a line into columns of the given character widths and
// trims the padding. Short lines yield empty trailing values.
func cutWidths(line string, widths []int) []string {
	runes := []rune(line)
	values := make([]string, len(widths))
	offset := 0
	for i, width := range widths {
		end := offset + width
		if offset >= len(runes) {
			values[i] = ""
			continue
		}
		if end > len(runes) {
			end = len(runes)
		}
		values[i] = strings.TrimSpace(string(runes[offset:end]))
		offset += width
	}
	return values
}
