package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestValidateCmd_FileNotFound(t *testing.T) {
	err := runValidate(validateCmd, []string{"nonexistent.yaml"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read manifest file")
}

func TestValidateCmd_ValidManifest(t *testing.T) {
	path := writeManifest(t, `repositories:
  - octo/hello
milestones:
  - title: v1.0
    state: open
    due_date: "2030-06-30"
labels:
  - name: bug
    color: d73a4a
    description: Something is broken
secrets:
  - name: DEPLOY_TOKEN
    value: hunter2
`)

	err := runValidate(validateCmd, []string{path})
	assert.NoError(t, err)
}

func TestValidateCmd_InvalidManifest(t *testing.T) {
	path := writeManifest(t, `labels:
  - name: bug
`)

	err := runValidate(validateCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest validation failed with 1 errors")
}

func TestValidateCmd_BadYAML(t *testing.T) {
	path := writeManifest(t, "labels:\n  - name: [broken\n")

	err := runValidate(validateCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateCmd_UnparseableDueDateIsWarning(t *testing.T) {
	// A due date that does not parse is reported but does not fail validation,
	// apply skips creating that milestone instead
	path := writeManifest(t, `milestones:
  - title: v2.0
    due_date: someday
`)

	err := runValidate(validateCmd, []string{path})
	assert.NoError(t, err)
}

func TestValidateCommandRegistration(t *testing.T) {
	if validateCmd.Use != "validate <manifest.yaml>" {
		t.Errorf("Expected Use = validate <manifest.yaml>, got %s", validateCmd.Use)
	}

	registered := false
	for _, cmd := range rootCmd.Commands() {
		if cmd == validateCmd {
			registered = true
			break
		}
	}
	if !registered {
		t.Error("validate command not registered with root command")
	}
}
