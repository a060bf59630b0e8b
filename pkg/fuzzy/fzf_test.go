package fuzzy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fzf "github.com/junegunn/fzf/src"
)

// MockFzfRunner implements FzfRunner for testing
type MockFzfRunner struct {
	RunFunc       func(opts *fzf.Options) (int, error)
	CallCount     int
	LastOpts      *fzf.Options
	OutputToWrite string // What to write to stdout to simulate fzf output
}

// Run executes the mock function
func (m *MockFzfRunner) Run(opts *fzf.Options) (int, error) {
	m.CallCount++
	m.LastOpts = opts

	// Write the mock output to stdout if specified
	if m.OutputToWrite != "" {
		fmt.Print(m.OutputToWrite)
	}

	if m.RunFunc != nil {
		return m.RunFunc(opts)
	}
	// Default behavior: return success
	return fzf.ExitOk, nil
}

func TestNewFzf(t *testing.T) {
	finder := NewFzf("Test prompt")
	if finder == nil {
		t.Fatal("NewFzf returned nil")
	}

	if finder.prompt != "Test prompt" {
		t.Errorf("Expected prompt 'Test prompt', got '%s'", finder.prompt)
	}

	if len(finder.options) != 0 {
		t.Errorf("Expected empty options, got %d options", len(finder.options))
	}
}

func TestFzfSetOptions(t *testing.T) {
	finder := NewFzf("Test")

	// Test with nil options
	err := finder.SetOptions(nil)
	if err == nil {
		t.Error("Expected error when setting nil options")
	}

	// Test with valid options
	options := []Option{
		{Value: "octo/hello", Description: "Demo repository"},
		{Value: "octo/world", Description: "Another repository"},
	}

	err = finder.SetOptions(options)
	if err != nil {
		t.Errorf("Unexpected error setting options: %v", err)
	}

	if len(finder.options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(finder.options))
	}

	if finder.options[0].Value != "octo/hello" {
		t.Errorf("Expected first option value 'octo/hello', got '%s'", finder.options[0].Value)
	}
}

func TestFzfSetPrompt(t *testing.T) {
	finder := NewFzf("Initial prompt")
	finder.SetPrompt("New prompt")

	if finder.prompt != "New prompt" {
		t.Errorf("Expected prompt 'New prompt', got '%s'", finder.prompt)
	}
}

func TestFzfSelectWithNoOptions(t *testing.T) {
	finder := NewFzf("Test")

	_, err := finder.Select()
	if err == nil {
		t.Error("Expected error when selecting with no options")
	}

	expectedError := "no options available"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestFzfSelect(t *testing.T) {
	// Create a mock runner that simulates successful selection
	mockRunner := &MockFzfRunner{
		OutputToWrite: "octo/hello  │  Demo repository\n",
		RunFunc: func(_ *fzf.Options) (int, error) {
			return fzf.ExitOk, nil
		},
	}

	finder := NewFzfWithRunner("Repository:", mockRunner)

	options := []Option{
		{Value: "octo/hello", Description: "Demo repository"},
		{Value: "octo/world", Description: "Another repository"},
	}
	err := finder.SetOptions(options)
	if err != nil {
		t.Errorf("SetOptions failed: %v", err)
	}

	selected, err := finder.Select()
	if err != nil {
		t.Errorf("Select failed: %v", err)
	}

	if selected != "octo/hello" {
		t.Errorf("Expected 'octo/hello', got '%s'", selected)
	}

	// Verify the mock was called
	if mockRunner.CallCount != 1 {
		t.Errorf("Expected 1 call to Run, got %d", mockRunner.CallCount)
	}
}

func TestFzfSelectWithoutDescription(t *testing.T) {
	// Candidate lines without a description carry no separator
	mockRunner := &MockFzfRunner{
		OutputToWrite: "octo/world\n",
		RunFunc: func(_ *fzf.Options) (int, error) {
			return fzf.ExitOk, nil
		},
	}

	finder := NewFzfWithRunner("Repository:", mockRunner)

	err := finder.SetOptions([]Option{
		{Value: "octo/hello"},
		{Value: "octo/world"},
	})
	if err != nil {
		t.Errorf("SetOptions failed: %v", err)
	}

	selected, err := finder.Select()
	if err != nil {
		t.Errorf("Select failed: %v", err)
	}

	if selected != "octo/world" {
		t.Errorf("Expected 'octo/world', got '%s'", selected)
	}
}

func TestFzfSelectEmptyResult(t *testing.T) {
	// fzf exits cleanly but prints nothing
	mockRunner := &MockFzfRunner{
		RunFunc: func(_ *fzf.Options) (int, error) {
			return fzf.ExitOk, nil
		},
	}

	finder := NewFzfWithRunner("Test", mockRunner)

	err := finder.SetOptions([]Option{{Value: "octo/hello"}})
	if err != nil {
		t.Errorf("SetOptions failed: %v", err)
	}

	_, err = finder.Select()
	if err == nil {
		t.Error("Expected error for empty selection")
	}

	if !strings.Contains(err.Error(), "no selection made") {
		t.Errorf("Expected 'no selection made' error, got '%s'", err.Error())
	}
}

func TestFzfSelectWithFallback(t *testing.T) {
	// Create a mock runner that simulates fzf failure
	mockRunner := &MockFzfRunner{
		RunFunc: func(_ *fzf.Options) (int, error) {
			return 1, fmt.Errorf("fzf failed")
		},
	}

	finder := NewFzfWithRunner("Test", mockRunner)

	options := []Option{
		{Value: "octo/hello", Description: "Demo repository"},
		{Value: "octo/world", Description: "Another repository"},
	}
	err := finder.SetOptions(options)
	if err != nil {
		t.Errorf("SetOptions failed: %v", err)
	}

	// The fallback picker reads its selection from stdin
	stdinPath := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(stdinPath, []byte("2\n"), 0644); err != nil {
		t.Fatalf("Failed to write stdin file: %v", err)
	}
	stdinFile, err := os.Open(stdinPath)
	if err != nil {
		t.Fatalf("Failed to open stdin file: %v", err)
	}
	defer stdinFile.Close()

	originalStdin := os.Stdin
	os.Stdin = stdinFile
	defer func() { os.Stdin = originalStdin }()

	selected, err := finder.Select()
	if err != nil {
		t.Fatalf("Fallback select failed: %v", err)
	}

	if selected != "octo/world" {
		t.Errorf("Expected fallback selection 'octo/world', got '%s'", selected)
	}

	// Verify the mock was called
	if mockRunner.CallCount != 1 {
		t.Errorf("Expected 1 call to Run, got %d", mockRunner.CallCount)
	}
}

func TestFzfSelectCancelled(t *testing.T) {
	// Create a mock runner that simulates user cancellation
	mockRunner := &MockFzfRunner{
		RunFunc: func(_ *fzf.Options) (int, error) {
			return fzf.ExitInterrupt, nil
		},
	}

	finder := NewFzfWithRunner("Test", mockRunner)

	options := []Option{
		{Value: "octo/hello", Description: "Demo repository"},
	}
	err := finder.SetOptions(options)
	if err != nil {
		t.Errorf("SetOptions failed: %v", err)
	}

	// Test cancellation
	_, err = finder.Select()
	if err == nil {
		t.Error("Expected error when fzf is cancelled")
	}

	expectedError := "selection cancelled"
	if !strings.Contains(err.Error(), expectedError) {
		t.Errorf("Expected error containing '%s', got '%s'", expectedError, err.Error())
	}
}

func TestPickerInterface(t *testing.T) {
	// Both finders satisfy the Picker interface
	var _ Picker = (*Finder)(nil)
	var _ Picker = (*FzfFinder)(nil)
}
