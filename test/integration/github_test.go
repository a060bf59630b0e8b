//go:build integration
// +build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func getBinaryPath(t *testing.T) string {
	// Use pre-built binary from CI or build locally
	binaryPath := os.Getenv("GHSYNC_BINARY")
	if binaryPath == "" {
		// Build the binary locally for local testing
		buildCmd := exec.Command("go", "build", "-o", "ghsync-test", "./cmd/ghsync")
		buildCmd.Dir = getProjectRoot()
		var buildOut bytes.Buffer
		buildCmd.Stdout = &buildOut
		buildCmd.Stderr = &buildOut
		err := buildCmd.Run()
		if err != nil {
			t.Fatalf("Failed to build binary: %v\nOutput: %s", err, buildOut.String())
		}
		binaryPath = filepath.Join(getProjectRoot(), "ghsync-test")

		// Schedule cleanup
		t.Cleanup(func() {
			if err := os.Remove(binaryPath); err != nil {
				t.Logf("Failed to remove test binary: %v", err)
			}
		})
	} else {
		// Convert relative path to absolute path from project root
		if !filepath.IsAbs(binaryPath) {
			projectRoot := getProjectRoot()
			binaryPath = filepath.Join(projectRoot, binaryPath)
		}
	}

	return binaryPath
}

// isolatedEnv returns an environment with HOME pointed at an empty directory
// and no GitHub token, so config and gitconfig fallbacks stay inert
func isolatedEnv(t *testing.T) []string {
	env := []string{
		"HOME=" + t.TempDir(),
		"PATH=" + os.Getenv("PATH"),
		"GITHUB_TOKEN=",
	}
	return env
}

// TestCommandStructure tests the command structure and help output
func TestCommandStructure(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name: "apply help",
			args: []string{"apply", "--help"},
			contains: []string{
				"Apply a manifest to GitHub",
				"--dry-run",
				"--sync",
				"--sync-labels",
				"--sync-milestones",
				"--org",
				"--summary",
				"--pick",
				"Secret values",
			},
		},
		{
			name: "validate help",
			args: []string{"validate", "--help"},
			contains: []string{
				"Validate a manifest for syntax and logical errors",
				"Milestone titles",
				"Label names and colors",
				"Secret names",
			},
		},
		{
			name: "init help",
			args: []string{"init", "--help"},
			contains: []string{
				"Create a default configuration file",
				"--force",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			output, err := cmd.CombinedOutput()

			if err != nil {
				t.Fatalf("Help command failed: %v\nOutput: %s", err, output)
			}

			outputStr := string(output)
			for _, expected := range tt.contains {
				if !strings.Contains(outputStr, expected) {
					t.Errorf("Expected output to contain %q, but it didn't.\nFull output: %s", expected, outputStr)
				}
			}
		})
	}
}

// TestValidateCommand tests manifest validation through the binary
func TestValidateCommand(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		manifest    string
		expectError bool
		contains    []string
	}{
		{
			name: "complete valid manifest",
			manifest: `repositories:
  - octo/hello
  - octo/world
milestones:
  - title: v1.0
    description: First stable release
    due_date: "2030-06-30"
    state: open
labels:
  - name: bug
    color: "#d73a4a"
    description: Something is broken
secrets:
  - name: DEPLOY_TOKEN
    value: hunter2
`,
			expectError: false,
			contains: []string{
				"YAML syntax and declared resources are valid",
				"Manifest is valid",
				"Milestones: 1",
				"Labels: 1",
				"Secrets: 1",
			},
		},
		{
			name: "missing label color",
			manifest: `labels:
  - name: bug
`,
			expectError: true,
			contains: []string{
				"Manifest validation failed",
				"color is required",
			},
		},
		{
			name: "reserved secret name",
			manifest: `secrets:
  - name: GITHUB_DEPLOY
    value: x
`,
			expectError: true,
			contains: []string{
				"Manifest validation failed",
				"GITHUB_",
			},
		},
		{
			name: "unparseable due date is a warning",
			manifest: `milestones:
  - title: v2.0
    due_date: sometime next year
`,
			expectError: false,
			contains: []string{
				"creation will be skipped",
				"Manifest is valid with 1 warning",
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifestPath := filepath.Join(tempDir, "manifest-"+strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			if err := os.WriteFile(manifestPath, []byte(tt.manifest), 0644); err != nil {
				t.Fatalf("Failed to write manifest %d: %v", i, err)
			}

			cmd := exec.Command(binaryPath, "validate", manifestPath)
			output, err := cmd.CombinedOutput()
			outputStr := string(output)

			if tt.expectError && err == nil {
				t.Fatalf("Expected validate to fail, output: %s", outputStr)
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Validate failed: %v\nOutput: %s", err, outputStr)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(outputStr, expected) {
					t.Errorf("Expected output to contain %q.\nFull output: %s", expected, outputStr)
				}
			}
		})
	}
}

// TestApplyWithoutToken tests that apply fails with clear instructions when
// no token can be found anywhere
func TestApplyWithoutToken(t *testing.T) {
	binaryPath := getBinaryPath(t)

	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	manifest := `repositories:
  - octo/hello
labels:
  - name: bug
    color: d73a4a
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	cmd := exec.Command(binaryPath, "apply", manifestPath)
	cmd.Env = isolatedEnv(t)

	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err == nil {
		t.Fatalf("Expected apply to fail without a token, output: %s", outputStr)
	}

	expectedContents := []string{
		"no GitHub token found",
		"GITHUB_TOKEN",
	}
	for _, expected := range expectedContents {
		if !strings.Contains(outputStr, expected) {
			t.Errorf("Expected output to contain %q.\nFull output: %s", expected, outputStr)
		}
	}
}

// TestApplyNothingDeclared tests the early exit when the manifest declares
// nothing to reconcile
func TestApplyNothingDeclared(t *testing.T) {
	binaryPath := getBinaryPath(t)

	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(manifestPath, []byte("repositories:\n  - octo/hello\n"), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	cmd := exec.Command(binaryPath, "apply", manifestPath)
	cmd.Env = isolatedEnv(t)

	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		t.Fatalf("Apply failed: %v\nOutput: %s", err, outputStr)
	}

	if !strings.Contains(outputStr, "Nothing to do") {
		t.Errorf("Expected nothing-to-do message, got: %s", outputStr)
	}
}

// TestApplyMissingManifest tests the error path for a manifest that does not exist
func TestApplyMissingManifest(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "apply", filepath.Join(t.TempDir(), "missing.yaml"))
	cmd.Env = isolatedEnv(t)

	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Expected apply to fail for a missing manifest, output: %s", output)
	}

	if !strings.Contains(string(output), "failed to load manifest") {
		t.Errorf("Expected manifest load error, got: %s", output)
	}
}
