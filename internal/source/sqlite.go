package source

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// sqliteProvider reads all rows of one table from a SQLite database
// file. The table defaults to the binding name; a schema descriptor can
// select another one via its table key.
type sqliteProvider struct {
	name  string
	path  string
	table string
}

func newSQLiteProvider(b Binding, schema *Schema) (Provider, error) {
	table := b.Name
	if schema != nil && schema.Table != "" {
		table = schema.Table
	}
	return &sqliteProvider{name: b.Name, path: b.DataPath, table: table}, nil
}

func (p *sqliteProvider) Name() string { return p.name }

func (p *sqliteProvider) Fields() ([]string, error) {
	r, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.(*sqliteReader).fields, nil
}

func (p *sqliteProvider) Open() (Reader, error) {
	db, err := sql.Open("sqlite", p.path)
	if err != nil {
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	query := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(p.table))
	rows, err := db.Query(query)
	if err != nil {
		_ = db.Close()
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = db.Close()
		return nil, &DataError{Source: p.name, Locator: p.path, Message: err.Error()}
	}

	return &sqliteReader{provider: p, db: db, rows: rows, fields: cols}, nil
}

type sqliteReader struct {
	provider *sqliteProvider
	db       *sql.DB
	rows     *sql.Rows
	fields   []string
	rowNum   int
}

func (r *sqliteReader) Next() (*Row, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, &DataError{Source: r.provider.name, Locator: r.provider.path, Row: r.rowNum + 1, Message: err.Error()}
		}
		return nil, io.EOF
	}
	r.rowNum++

	values := make([]any, len(r.fields))
	pointers := make([]any, len(r.fields))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := r.rows.Scan(pointers...); err != nil {
		return nil, &DataError{Source: r.provider.name, Locator: r.provider.path, Row: r.rowNum, Message: err.Error()}
	}

	texts := make([]string, len(values))
	for i, v := range values {
		texts[i] = valueText(v)
	}
	return &Row{Fields: r.fields, Values: texts}, nil
}

func (r *sqliteReader) Close() error {
	errRows := r.rows.Close()
	errDB := r.db.Close()
	if errRows != nil {
		return errRows
	}
	return errDB
}

// valueText renders a driver value as text, matching the all-values-are-
// text row contract of file-based sources.
func valueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// quoteIdent quotes a SQL identifier for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
