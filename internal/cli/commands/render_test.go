package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/xsc/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		template string
		override string
		want     string
		wantErr  bool
	}{
		{"xsc suffix", "customers.xsc", "", "customers.xml", false},
		{"other suffix", "doc.tmpl", "", "doc.xml", false},
		{"nested path", filepath.Join("a", "b", "doc.xsc"), "", filepath.Join("a", "b", "doc.xml"), false},
		{"no suffix", "doc", "", "doc.xml", false},
		{"explicit override", "doc.xsc", "out.xml", "out.xml", false},
		{"xml template needs override", "doc.xml", "", "", true},
		{"xml template with override", "doc.xml", "out.xml", "out.xml", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deriveOutputPath(tt.template, tt.override)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildProviders(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "c.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte("a,b\n1,2\n"), 0o600))

	cfg := &config.Config{}
	providers, err := buildProviders([]string{"customers:" + dataPath}, cfg)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "customers", providers["customers"].Name())
}

func TestBuildProviders_DuplicateName(t *testing.T) {
	cfg := &config.Config{}
	_, err := buildProviders([]string{"c:a.csv", "c:b.csv"}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate data source name")
}

func TestBuildProviders_BadDefinition(t *testing.T) {
	cfg := &config.Config{}
	_, err := buildProviders([]string{"no-colon"}, cfg)
	require.Error(t, err)
}

func TestRunRender_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "doc.xsc")
	dataPath := filepath.Join(dir, "rows.csv")
	require.NoError(t, os.WriteFile(templatePath,
		[]byte("<doc><?xsc for rows?><v>${rows.x}</v><?xsc end for?></doc>"), 0o600))
	require.NoError(t, os.WriteFile(dataPath, []byte("x\n1\n2\n"), 0o600))

	cmd := NewRenderCommand()
	cmd.SetArgs([]string{templatePath, "rows:" + dataPath})
	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(filepath.Join(dir, "doc.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<doc><v>1</v><v>2</v></doc>", string(out))
}

func TestRunRender_FailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "doc.xsc")
	require.NoError(t, os.WriteFile(templatePath, []byte("<doc>${undefined_name}</doc>"), 0o600))

	cmd := NewRenderCommand()
	cmd.SetArgs([]string{templatePath})
	require.Error(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(dir, "doc.xml"))
	assert.True(t, os.IsNotExist(err), "failed render must not leave a destination file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be cleaned up")
}
