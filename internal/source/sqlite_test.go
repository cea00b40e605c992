package source

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE customers (surname TEXT, amount INTEGER, rate REAL, note TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO customers VALUES ('Smith', 1200, 3.5, NULL), ('Jones', 300, 2.0, 'vip')`)
	require.NoError(t, err)
	return path
}

func TestSQLite_ReadTable(t *testing.T) {
	path := sqliteFixture(t)

	p, err := New(Binding{Name: "customers", DataPath: path}, Options{})
	require.NoError(t, err)

	fields, err := p.Fields()
	require.NoError(t, err)
	assert.Equal(t, []string{"surname", "amount", "rate", "note"}, fields)

	rows := readAll(t, p)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Smith", "1200", "3.5", ""}, rows[0].Values)
	assert.Equal(t, []string{"Jones", "300", "2", "vip"}, rows[1].Values)
}

func TestSQLite_Restartable(t *testing.T) {
	path := sqliteFixture(t)

	p, err := New(Binding{Name: "customers", DataPath: path}, Options{})
	require.NoError(t, err)

	first := readAll(t, p)
	second := readAll(t, p)
	assert.Equal(t, len(first), len(second))
}

func TestSQLite_SchemaSelectsTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.sqlite")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE accounts (id INTEGER); INSERT INTO accounts VALUES (7)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	schemaPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte("table: accounts\n"), 0o600))

	p, err := New(Binding{Name: "acct", DataPath: path, SchemaPath: schemaPath}, Options{})
	require.NoError(t, err)

	rows := readAll(t, p)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"7"}, rows[0].Values)
}

func TestSQLite_UnknownTable(t *testing.T) {
	path := sqliteFixture(t)

	p, err := New(Binding{Name: "no_such_table", DataPath: path}, Options{})
	require.NoError(t, err)

	_, err = p.Open()
	require.Error(t, err)

	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "no_such_table", dataErr.Source)
}

func TestValueText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"bytes", []byte("raw"), "raw"},
		{"string", "text", "text"},
		{"int64", int64(-12), "-12"},
		{"float64", 2.5, "2.5"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valueText(tt.in))
		})
	}
}
