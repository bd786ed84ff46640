package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsYAML = `
log_level: error
machines:
  posts:
    steps: [draft, published]
    transitions:
      publish:
        from: draft
        to: published
        validators:
          0: { title: required }
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_RecordLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "stepwise.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(settingsYAML), 0644))
	common := []string{"--config", cfgPath, "--store", "file", "--dir", filepath.Join(dir, "records")}

	out, err := run(t, "validate", "--config", cfgPath, "--store", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "posts")

	_, err = run(t, append([]string{"record", "create", "p-1", "state=draft"}, common...)...)
	require.NoError(t, err)

	out, err = run(t, append([]string{"apply", "posts", "p-1", "publish"}, common...)...)
	assert.Error(t, err)
	assert.Contains(t, out, "The title field is required.")

	_, err = run(t, append([]string{"record", "rm", "p-1"}, common...)...)
	require.NoError(t, err)
	_, err = run(t, append([]string{"record", "create", "p-1", "state=draft", "title=Hello"}, common...)...)
	require.NoError(t, err)

	out, err = run(t, append([]string{"apply", "posts", "p-1", "publish"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "publish: now published")

	out, err = run(t, append([]string{"history", "p-1"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "draft -> published")

	out, err = run(t, append([]string{"graph", "posts"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stepwise version dev\n", out)
}
