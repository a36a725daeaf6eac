package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rowSource = `package metrics

type Sample struct {
	Host  string
	Value float64
}
`

func TestTabgen_WritesLoaderFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(input, []byte(rowSource), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{input})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	code, err := os.ReadFile(filepath.Join(dir, "sample_frame.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "package metrics")
	assert.Contains(t, string(code), "func ReadSampleCSV(path string)")
	assert.Contains(t, string(code), "from sample.go")
}

func TestTabgen_Stdout(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(input, []byte(rowSource), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--stdout", "--exact", "--package", "other", "--type", "Sample", input})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "package other")
	assert.Contains(t, out.String(), "dataframe.WithExactTypes()")
}

func TestTabgen_Errors(t *testing.T) {
	t.Setenv("GOFILE", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.go")})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
