package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestScope_Eval(t *testing.T) {
	s := NewScope()

	result, err := s.Eval("1 + 2", "t.xsc", 1)
	require.NoError(t, err)
	assert.Equal(t, "3", result.String())
}

func TestScope_EvalError(t *testing.T) {
	s := NewScope()

	_, err := s.Eval("undefined_name", "t.xsc", 7)
	require.Error(t, err)

	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "t.xsc", evalErr.File)
	assert.Equal(t, 7, evalErr.Line)
	assert.Equal(t, "undefined_name", evalErr.Expr)
}

func TestScope_EvalString(t *testing.T) {
	s := NewScope()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"string unquoted", `"hello"`, "hello"},
		{"none empty", "None", ""},
		{"int", "40 + 2", "42"},
		{"float", "1.5", "1.5"},
		{"bool", "True", "True"},
		{"list", "[1, 2]", "[1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.EvalString(tt.expr, "t.xsc", 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_ExecBindingsPersist(t *testing.T) {
	s := NewScope()

	require.NoError(t, s.Exec("total = 0", "t.xsc", 1))
	require.NoError(t, s.Exec("total += 5", "t.xsc", 2))

	got, err := s.EvalString("total", "t.xsc", 3)
	require.NoError(t, err)
	assert.Equal(t, "5", got)
}

func TestScope_ExecFunctionDefinition(t *testing.T) {
	s := NewScope()

	code := `
def shout(text):
    return text.upper() + "!"
`
	require.NoError(t, s.Exec(code, "t.xsc", 1))

	got, err := s.EvalString(`shout("hi")`, "t.xsc", 2)
	require.NoError(t, err)
	assert.Equal(t, "HI!", got)
}

func TestScope_ExecIndentedBlock(t *testing.T) {
	s := NewScope()

	// Code indented to match surrounding markup must still execute.
	code := "\n    x = 1\n    y = x + 1\n"
	require.NoError(t, s.Exec(code, "t.xsc", 1))

	got, err := s.EvalString("y", "t.xsc", 2)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestScope_ExecWhileLoop(t *testing.T) {
	s := NewScope()

	code := `
n = 0
while n < 3:
    n += 1
`
	require.NoError(t, s.Exec(code, "t.xsc", 1))

	got, err := s.EvalString("n", "t.xsc", 2)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestScope_ExecError(t *testing.T) {
	s := NewScope()

	err := s.Exec("x = ][", "t.xsc", 4)
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 4, execErr.Line)
}

func TestScope_PushRowRestore(t *testing.T) {
	s := NewScope()
	s.Bind("c", starlark.String("outer"))

	restore := s.PushRow("c", starlark.String("inner"))
	v, ok := s.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, starlark.String("inner"), v)

	restore()
	v, ok = s.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, starlark.String("outer"), v)
}

func TestScope_PushRowRestoreAbsence(t *testing.T) {
	s := NewScope()

	restore := s.PushRow("c", starlark.String("row"))
	restore()

	_, ok := s.Lookup("c")
	assert.False(t, ok, "binding must vanish after the loop ends")
}

func TestRowValue_AttributeAccess(t *testing.T) {
	s := NewScope()
	row := RowValue([]string{"surname", "amount"}, []string{"Smith", "1200"})
	s.Bind("customer", row)

	got, err := s.EvalString("customer.surname", "t.xsc", 1)
	require.NoError(t, err)
	assert.Equal(t, "Smith", got)

	got, err = s.EvalString("int(customer.amount) + 1", "t.xsc", 2)
	require.NoError(t, err)
	assert.Equal(t, "1201", got)
}

func TestRowValue_MissingValuesEmpty(t *testing.T) {
	row := RowValue([]string{"a", "b"}, []string{"only"})
	s := NewScope()
	s.Bind("r", row)

	got, err := s.EvalString("r.b", "t.xsc", 1)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRowValue_UnknownAttribute(t *testing.T) {
	s := NewScope()
	s.Bind("r", RowValue([]string{"a"}, []string{"1"}))

	_, err := s.Eval("r.nope", "t.xsc", 1)
	require.Error(t, err)
}

func TestTruth(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"true", "True", true},
		{"false", "False", false},
		{"none", "None", false},
		{"zero", "0", false},
		{"number", "7", true},
		{"empty string", `""`, false},
		{"string", `"x"`, true},
		{"empty list", "[]", false},
		{"list", "[0]", true},
	}

	s := NewScope()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Eval(tt.expr, "t.xsc", 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Truth(v))
		})
	}
}

func TestScope_ImportBuiltin(t *testing.T) {
	s := NewScope()

	require.NoError(t, s.Import("math"))

	got, err := s.EvalString("int(math.sqrt(16))", "t.xsc", 1)
	require.NoError(t, err)
	assert.Equal(t, "4", got)
}

func TestScope_ImportModuleFile(t *testing.T) {
	dir := t.TempDir()
	module := `
_private = "hidden"

def double(n):
    return n * 2

factor = 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.star"), []byte(module), 0o600))

	s := NewScope(WithModulesDir(dir))
	require.NoError(t, s.Import("util"))

	got, err := s.EvalString("util.double(21)", "t.xsc", 1)
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = s.EvalString("util.factor", "t.xsc", 2)
	require.NoError(t, err)
	assert.Equal(t, "3", got)

	_, err = s.Eval("util._private", "t.xsc", 3)
	require.Error(t, err, "underscore names must stay private")
}

func TestScope_ImportUnknown(t *testing.T) {
	s := NewScope(WithModulesDir(t.TempDir()))

	err := s.Import("nope")
	require.Error(t, err)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "nope", importErr.Module)
}

func TestScope_ImportBrokenModuleFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.star"), []byte("def ]["), 0o600))

	s := NewScope(WithModulesDir(dir))
	err := s.Import("bad")
	require.Error(t, err)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
}
