package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runFile = `
seed: 3
steps: 200
model:
  tree: {newick: "((A:1,B:1):1,(C:1.5,D:1.5):0.5);"}
  parameters:
    - {name: kappa, values: [1], lower: 0, prior: {kind: lognormal, sigma: 1}}
operators:
  - type: fixedHeightSubtreePruneRegraft
  - type: uniformHeight
  - type: scale
    params: {parameter: kappa}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeRun(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	out, logs, err := execute(t, "run", writeRun(t, runFile), "--log-level", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "## Chain demo-0")
	assert.Contains(t, out, "| scale(kappa) | scaleFactor = ")
	assert.Contains(t, logs, "run finished")
}

func TestValidate(t *testing.T) {
	out, _, err := execute(t, "validate", writeRun(t, runFile))
	require.NoError(t, err)
	assert.Contains(t, out, "chain demo-0: 3 operators")

	_, _, err = execute(t, "validate", writeRun(t, "steps: 0\n"))
	assert.ErrorContains(t, err, "validation failed")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sprig version ")
}

func TestTree(t *testing.T) {
	path := writeRun(t, runFile)

	out, _, err := execute(t, "tree", path, "--format", "newick")
	require.NoError(t, err)
	assert.Equal(t, "((A:1,B:1):1,(C:1.5,D:1.5):0.5);\n", out)

	out, _, err = execute(t, "tree", path, "--format", "mermaid", "--clade", "C,D")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class n5 clade;")

	_, _, err = execute(t, "tree", path, "--format", "mermaid", "--clade", "Z")
	assert.ErrorContains(t, err, `unknown tip "Z"`)
}
