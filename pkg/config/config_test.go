package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/edelwud/jin/internal/merge"
)

func writeTestConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func createTempDir(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Author.Name != "Jin" {
		t.Errorf("expected default author name Jin, got %q", cfg.Author.Name)
	}
	if cfg.Author.Email != "jin@local" {
		t.Errorf("expected default author email jin@local, got %q", cfg.Author.Email)
	}
	if cfg.Commit.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("expected MaxFileSize %d, got %d", DefaultMaxFileSize, cfg.Commit.MaxFileSize)
	}
	if cfg.Merge.ArrayStrategy != "replace" {
		t.Errorf("expected ArrayStrategy replace, got %q", cfg.Merge.ArrayStrategy)
	}
	if cfg.Repo.Path != "" {
		t.Errorf("expected empty Repo.Path, got %q", cfg.Repo.Path)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := createTempDir(t)

	configContent := `
repo:
  path: /srv/jin-store

author:
  name: Alice
  email: alice@example.com

commit:
  max_file_size: 2048

merge:
  array_strategy: merge_by_key
  key_fields: ["id"]
`
	configPath := filepath.Join(tmpDir, ".jin.yaml")
	writeTestConfig(t, configPath, configContent)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Repo.Path != "/srv/jin-store" {
		t.Errorf("expected repo path, got %q", cfg.Repo.Path)
	}
	if cfg.Author.Name != "Alice" {
		t.Errorf("expected author name Alice, got %q", cfg.Author.Name)
	}
	if cfg.Commit.MaxFileSize != 2048 {
		t.Errorf("expected MaxFileSize 2048, got %d", cfg.Commit.MaxFileSize)
	}
	if cfg.Merge.ArrayStrategy != "merge_by_key" {
		t.Errorf("expected array_strategy merge_by_key, got %q", cfg.Merge.ArrayStrategy)
	}
	if len(cfg.Merge.KeyFields) != 1 || cfg.Merge.KeyFields[0] != "id" {
		t.Errorf("expected key_fields [id], got %v", cfg.Merge.KeyFields)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/.jin.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := createTempDir(t)

	invalidContent := `
author:
  name: [invalid yaml
`
	configPath := filepath.Join(tmpDir, ".jin.yaml")
	writeTestConfig(t, configPath, invalidContent)

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("loads config when file exists", func(t *testing.T) {
		tmpDir := createTempDir(t)

		configContent := `
author:
  name: Bob
  email: bob@example.com
`
		configPath := filepath.Join(tmpDir, ".jin.yaml")
		writeTestConfig(t, configPath, configContent)

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Author.Name != "Bob" {
			t.Errorf("expected loaded author name, got %q", cfg.Author.Name)
		}
	})

	t.Run("returns default when no config file", func(t *testing.T) {
		tmpDir := createTempDir(t)

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Author.Name != "Jin" {
			t.Errorf("expected default author name, got %q", cfg.Author.Name)
		}
	})

	t.Run("tries multiple config file names", func(t *testing.T) {
		tmpDir := createTempDir(t)

		configContent := `
author:
  name: Carol
  email: carol@example.com
`
		configPath := filepath.Join(tmpDir, ".jin.yml")
		writeTestConfig(t, configPath, configContent)

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Author.Name != "Carol" {
			t.Errorf("expected author name from .jin.yml, got %q", cfg.Author.Name)
		}
	})

	t.Run("JIN_REPO_PATH overrides config file", func(t *testing.T) {
		tmpDir := createTempDir(t)
		t.Setenv(envRepoPath, "/override/path")

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Repo.Path != "/override/path" {
			t.Errorf("expected env override, got %q", cfg.Repo.Path)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid default config",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "zero max file size",
			cfg: &Config{
				Author: AuthorConfig{Name: "Jin", Email: "jin@local"},
				Commit: CommitConfig{MaxFileSize: 0},
				Merge:  MergeConfig{ArrayStrategy: "replace"},
			},
			wantErr: true,
			errMsg:  "commit.max_file_size must be at least 1",
		},
		{
			name: "invalid array strategy",
			cfg: &Config{
				Author: AuthorConfig{Name: "Jin", Email: "jin@local"},
				Commit: CommitConfig{MaxFileSize: 1024},
				Merge:  MergeConfig{ArrayStrategy: "bogus"},
			},
			wantErr: true,
			errMsg:  "merge.array_strategy must be one of replace, merge_by_key, concatenate",
		},
		{
			name: "missing author name",
			cfg: &Config{
				Author: AuthorConfig{Name: "", Email: "jin@local"},
				Commit: CommitConfig{MaxFileSize: 1024},
				Merge:  MergeConfig{ArrayStrategy: "replace"},
			},
			wantErr: true,
			errMsg:  "author.name is required",
		},
		{
			name: "missing author email",
			cfg: &Config{
				Author: AuthorConfig{Name: "Jin", Email: ""},
				Commit: CommitConfig{MaxFileSize: 1024},
				Merge:  MergeConfig{ArrayStrategy: "replace"},
			},
			wantErr: true,
			errMsg:  "author.email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
					return
				}
				if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ArrayStrategy(t *testing.T) {
	tests := []struct {
		name string
		want merge.ArrayStrategy
	}{
		{"replace", merge.Replace},
		{"merge_by_key", merge.MergeByKey},
		{"concatenate", merge.Concatenate},
		{"", merge.Replace},
		{"unknown", merge.Replace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Merge: MergeConfig{ArrayStrategy: tt.name}}
			if got := cfg.ArrayStrategy(); got != tt.want {
				t.Errorf("ArrayStrategy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_MergeConfigValue(t *testing.T) {
	cfg := &Config{Merge: MergeConfig{ArrayStrategy: "concatenate", KeyFields: []string{"slug"}}}
	mc := cfg.MergeConfigValue()
	if mc.ArrayStrategy != merge.Concatenate {
		t.Errorf("expected Concatenate, got %v", mc.ArrayStrategy)
	}
	if len(mc.KeyFields) != 1 || mc.KeyFields[0] != "slug" {
		t.Errorf("expected key fields [slug], got %v", mc.KeyFields)
	}
	if mc.MaxDepth != merge.DefaultConfig().MaxDepth {
		t.Errorf("expected default MaxDepth, got %d", mc.MaxDepth)
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := createTempDir(t)

	cfg := DefaultConfig()
	cfg.Author.Name = "Dana"

	savePath := filepath.Join(tmpDir, "saved.yaml")
	if err := cfg.Save(savePath); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	content, err := os.ReadFile(savePath)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}

	if string(content[:30]) != "# yaml-language-server: $schem" {
		t.Errorf("expected schema header, got %q", string(content[:30]))
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Author.Name != "Dana" {
		t.Errorf("expected author name to be preserved, got %q", loaded.Author.Name)
	}
}
