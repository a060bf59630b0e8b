package github

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest represents the declared state for one synchronization run: the
// target repositories and the milestones, labels, and secrets they should
// converge to. All top-level sections are optional.
type Manifest struct {
	Repositories []string        `yaml:"repositories,omitempty"`
	Milestones   []MilestoneSpec `yaml:"milestones,omitempty"`
	Labels       []LabelSpec     `yaml:"labels,omitempty"`
	Secrets      []SecretSpec    `yaml:"secrets,omitempty"`
}

// MilestoneSpec declares the desired state of one milestone
type MilestoneSpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	DueDate     string `yaml:"due_date,omitempty"`
	State       string `yaml:"state,omitempty"` // open, closed
}

// LabelSpec declares the desired state of one label
type LabelSpec struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color"` // 6 hex digits, leading # accepted
	Description string `yaml:"description,omitempty"`
}

// SecretSpec declares one Actions secret and its plaintext value
type SecretSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

var (
	validLabelColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
	validSecretName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate validates the manifest. Declared keys are not checked for
// duplicates: a duplicate entry is reconciled twice, which is redundant but
// harmless.
func (m *Manifest) Validate() error {
	var validationErrors ValidationErrors

	for i, milestone := range m.Milestones {
		if milestone.Title == "" {
			validationErrors.Add("milestones", "", fmt.Sprintf("milestone %d: title is required", i+1))
		}
		if milestone.State != "" && milestone.State != "open" && milestone.State != "closed" {
			validationErrors.Add("milestones", milestone.State,
				fmt.Sprintf("milestone %d: state must be open or closed", i+1))
		}
	}

	for i, label := range m.Labels {
		if label.Name == "" {
			validationErrors.Add("labels", "", fmt.Sprintf("label %d: name is required", i+1))
		}
		if label.Color == "" {
			validationErrors.Add("labels", label.Name, fmt.Sprintf("label %d: color is required", i+1))
		} else if !validLabelColor.MatchString(strings.TrimPrefix(label.Color, "#")) {
			validationErrors.Add("labels", label.Color,
				fmt.Sprintf("label %d: color must be 6 hexadecimal digits", i+1))
		}
	}

	for i, secret := range m.Secrets {
		switch {
		case secret.Name == "":
			validationErrors.Add("secrets", "", fmt.Sprintf("secret %d: name is required", i+1))
		case !validSecretName.MatchString(secret.Name):
			validationErrors.Add("secrets", secret.Name,
				fmt.Sprintf("secret %d: name must contain only alphanumeric characters and underscores, and cannot start with a digit", i+1))
		case strings.HasPrefix(strings.ToUpper(secret.Name), "GITHUB_"):
			validationErrors.Add("secrets", secret.Name,
				fmt.Sprintf("secret %d: names starting with GITHUB_ are reserved", i+1))
		}
		if secret.Value == "" {
			validationErrors.Add("secrets", secret.Name, fmt.Sprintf("secret %d: value is required", i+1))
		}
	}

	if validationErrors.HasErrors() {
		return &GitHubError{
			Type:    ErrorTypeValidation,
			Message: validationErrors.Error(),
			Cause:   validationErrors,
		}
	}

	return nil
}

// HasResources reports whether the manifest declares anything to reconcile
func (m *Manifest) HasResources() bool {
	return len(m.Milestones) > 0 || len(m.Labels) > 0 || len(m.Secrets) > 0
}

// ParsedDueDate returns the declared due date normalized to the end of that
// day in UTC, or an error when the value matches none of the accepted formats
func (m MilestoneSpec) ParsedDueDate() (*time.Time, error) {
	return normalizeDueDate(m.DueDate)
}

// MilestoneTitles returns the declared milestone titles, in manifest order
func (m *Manifest) MilestoneTitles() []string {
	titles := make([]string, 0, len(m.Milestones))
	for _, milestone := range m.Milestones {
		titles = append(titles, milestone.Title)
	}
	return titles
}

// LabelNames returns the declared label names, in manifest order
func (m *Manifest) LabelNames() []string {
	names := make([]string, 0, len(m.Labels))
	for _, label := range m.Labels {
		names = append(names, label.Name)
	}
	return names
}

// LoadManifest parses and validates a manifest from YAML
func LoadManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	return &manifest, nil
}

// LoadManifestFromFile parses and validates a manifest from a file
func LoadManifestFromFile(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return LoadManifest(data)
}
