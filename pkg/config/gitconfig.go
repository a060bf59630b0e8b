package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// GitConfig holds the github-related keys some tools keep in ~/.gitconfig:
//
//	[github]
//	    user = octocat
//	    token = ghp_...
//
// Both keys are optional; a missing file yields an empty GitConfig.
type GitConfig struct {
	User  string
	Token string
}

// LoadGitConfig reads the github section from the user's global gitconfig.
func LoadGitConfig() (*GitConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadGitConfigFromPath(filepath.Join(homeDir, ".gitconfig"))
}

// LoadGitConfigFromPath reads the github section from a gitconfig file at path.
func LoadGitConfigFromPath(path string) (*GitConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &GitConfig{}, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gitconfig: %w", err)
	}

	section := file.Section("github")
	return &GitConfig{
		User:  section.Key("user").String(),
		Token: section.Key("token").String(),
	}, nil
}
