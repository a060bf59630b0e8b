package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGitConfigFromPath(t *testing.T) {
	gitconfigPath := filepath.Join(t.TempDir(), ".gitconfig")
	content := `[user]
	name = Octo Cat
	email = octo@example.com
[github]
	user = octocat
	token = ghp_test_token
`
	if err := os.WriteFile(gitconfigPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test gitconfig: %v", err)
	}

	gitCfg, err := LoadGitConfigFromPath(gitconfigPath)
	if err != nil {
		t.Fatalf("Failed to load gitconfig: %v", err)
	}

	if gitCfg.User != "octocat" {
		t.Errorf("Expected user octocat, got %s", gitCfg.User)
	}

	if gitCfg.Token != "ghp_test_token" {
		t.Errorf("Expected token ghp_test_token, got %s", gitCfg.Token)
	}
}

func TestLoadGitConfigFromPathMissingFile(t *testing.T) {
	gitCfg, err := LoadGitConfigFromPath(filepath.Join(t.TempDir(), ".gitconfig"))
	if err != nil {
		t.Fatalf("Expected no error for missing gitconfig, got: %v", err)
	}

	if gitCfg.User != "" || gitCfg.Token != "" {
		t.Errorf("Expected empty gitconfig, got %+v", gitCfg)
	}
}

func TestLoadGitConfigFromPathWithoutGitHubSection(t *testing.T) {
	gitconfigPath := filepath.Join(t.TempDir(), ".gitconfig")
	content := `[user]
	name = Octo Cat
`
	if err := os.WriteFile(gitconfigPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test gitconfig: %v", err)
	}

	gitCfg, err := LoadGitConfigFromPath(gitconfigPath)
	if err != nil {
		t.Fatalf("Failed to load gitconfig: %v", err)
	}

	if gitCfg.User != "" || gitCfg.Token != "" {
		t.Errorf("Expected empty github section, got %+v", gitCfg)
	}
}

func TestLoadGitConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	content := "[github]\n\tuser = octocat\n"
	if err := os.WriteFile(filepath.Join(home, ".gitconfig"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test gitconfig: %v", err)
	}

	gitCfg, err := LoadGitConfig()
	if err != nil {
		t.Fatalf("Failed to load gitconfig: %v", err)
	}

	if gitCfg.User != "octocat" {
		t.Errorf("Expected user octocat, got %s", gitCfg.User)
	}
}
