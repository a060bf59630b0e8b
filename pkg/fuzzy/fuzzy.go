package fuzzy

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Option represents a selectable entry
type Option struct {
	Value       string
	Description string
}

// Picker selects a single value from a list of options
type Picker interface {
	SetOptions(options []Option) error
	SetPrompt(prompt string)
	Select() (string, error)
}

// Finder is a plain numbered picker with substring filtering, used when a
// richer terminal UI is unavailable
type Finder struct {
	prompt  string
	options []Option
}

// New creates a new numbered picker with the given prompt
func New(prompt string) *Finder {
	return &Finder{
		prompt:  prompt,
		options: make([]Option, 0),
	}
}

// SetOptions sets the available options for selection
func (f *Finder) SetOptions(options []Option) error {
	if options == nil {
		return fmt.Errorf("options cannot be nil")
	}

	f.options = make([]Option, len(options))
	copy(f.options, options)
	return nil
}

// SetPrompt updates the prompt message
func (f *Finder) SetPrompt(prompt string) {
	f.prompt = prompt
}

// GetOptions returns all available options
func (f *Finder) GetOptions() []Option {
	return f.options
}

// Select displays the options and reads a selection from stdin. Input that
// is not a number narrows the list by substring match instead; an empty
// line resets the narrowing.
func (f *Finder) Select() (string, error) {
	if len(f.options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	reader := bufio.NewReader(os.Stdin)
	current := f.options

	for {
		fmt.Println(f.prompt)
		for i, option := range current {
			fmt.Printf("%d. %s", i+1, option.Value)
			if option.Description != "" {
				fmt.Printf("  %s", option.Description)
			}
			fmt.Println()
		}
		fmt.Printf("\nSelect (1-%d) or type to filter: ", len(current))

		input, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			current = f.options
			fmt.Println()
			continue
		}

		if selection, err := strconv.Atoi(input); err == nil {
			if selection < 1 || selection > len(current) {
				fmt.Printf("selection %d is out of range (1-%d)\n\n", selection, len(current))
				continue
			}
			return current[selection-1].Value, nil
		}

		filtered := filterOptions(current, input)
		switch len(filtered) {
		case 0:
			fmt.Printf("no options match %q\n\n", input)
			current = f.options
		case 1:
			return filtered[0].Value, nil
		default:
			current = filtered
			fmt.Println()
		}
	}
}

// filterOptions keeps the options whose value or description contains the
// filter, ignoring case
func filterOptions(options []Option, filter string) []Option {
	filter = strings.ToLower(filter)

	var filtered []Option
	for _, option := range options {
		if strings.Contains(strings.ToLower(option.Value), filter) ||
			strings.Contains(strings.ToLower(option.Description), filter) {
			filtered = append(filtered, option)
		}
	}
	return filtered
}

// Ensure Finder implements the interface
var _ Picker = (*Finder)(nil)
