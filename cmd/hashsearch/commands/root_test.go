package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePopulation(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "population.txt")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Search(t *testing.T) {
	path := writePopulation(t, "0 1 7 7\n")

	for _, backend := range []string{"bruteforce", "gpu", "indexed"} {
		t.Run(backend, func(t *testing.T) {
			out, _, err := run(t, "", "-i", path, "-t", "1", "-b", backend, "7", "0")
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(out), "\n")
			assert.Equal(t, "0: 2 matches", lines[0])
			assert.Equal(t, "  0\t0", lines[1])
			assert.Equal(t, "  1\t1", lines[2])
			assert.True(t, strings.HasPrefix(lines[3], "7: "))
		})
	}
}

func TestRoot_Stdin(t *testing.T) {
	out, _, err := run(t, "5\n6\n", "-i", "-", "5")
	require.NoError(t, err)
	assert.Equal(t, "5: 1 matches\n  5\t0\n", out)
}

func TestRoot_ConfigFile(t *testing.T) {
	path := writePopulation(t, "0 1 2 3\n")
	cfgPath := filepath.Join(t.TempDir(), "hashsearch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
backend: gpu
threshold: 2
result_capacity: 1
overflow: truncate
log:
  level: warn
`), 0o600))

	out, errOut, err := run(t, "", "--config", cfgPath, "-i", path, "0")
	require.NoError(t, err)
	assert.Equal(t, "0: 1 matches (truncated)\n  0\t0\n", out)
	assert.Contains(t, errOut, "truncated results")

	out, _, err = run(t, "", "--config", cfgPath, "-i", path, "-t", "0", "0")
	require.NoError(t, err)
	assert.Equal(t, "0: 1 matches\n  0\t0\n", out, "flags override the config file")
}

func TestRoot_Errors(t *testing.T) {
	path := writePopulation(t, "0 1 x\n")

	tests := []struct {
		name string
		args []string
	}{
		{"no queries", []string{"-i", path}},
		{"no input", []string{"1"}},
		{"bad query", []string{"-i", path, "abc"}},
		{"bad backend", []string{"-i", path, "-b", "faiss", "1"}},
		{"malformed population", []string{"-i", path, "1"}},
		{"negative threshold", []string{"-i", path, "-t", "-1", "1"}},
		{"missing config", []string{"--config", "/nonexistent.yaml", "-i", path, "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}
