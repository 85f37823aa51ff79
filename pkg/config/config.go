// Package config provides process-wide configuration for jin.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/edelwud/jin/internal/merge"
)

// Config represents jin's process-wide configuration: the object store
// location, default author identity for generated commits, the staged-file
// size limit, and the default array-merge strategy (spec.md §9, "the object
// store location is process-wide configuration read from env/config at
// process start").
type Config struct {
	// Repo configures where the object store lives.
	Repo RepoConfig `yaml:"repo" json:"repo" jsonschema:"description=Object store location"`

	// Author is the default identity attached to commits jin creates.
	Author AuthorConfig `yaml:"author" json:"author" jsonschema:"description=Default commit author identity"`

	// Commit holds commit-pipeline tunables.
	Commit CommitConfig `yaml:"commit" json:"commit" jsonschema:"description=Commit pipeline settings"`

	// Merge holds structural-merge defaults.
	Merge MergeConfig `yaml:"merge" json:"merge" jsonschema:"description=Structural merge defaults"`
}

// RepoConfig locates the object store backing the layer lattice.
type RepoConfig struct {
	// Path overrides the object store location. Empty means the current
	// workspace's .jin/repo directory.
	Path string `yaml:"path,omitempty" json:"path,omitempty" jsonschema:"description=Path to the object store\\, overriding the workspace default"`
}

// AuthorConfig is the default commit identity.
type AuthorConfig struct {
	Name  string `yaml:"name" json:"name" jsonschema:"description=Default commit author name,default=Jin"`
	Email string `yaml:"email" json:"email" jsonschema:"description=Default commit author email,default=jin@local"`
}

// CommitConfig tunes the Pre-Commit Validator and pipeline.
type CommitConfig struct {
	// MaxFileSize is the staged-file size limit in bytes (spec.md §4.F
	// rule 5 default is 10 MiB).
	MaxFileSize int64 `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty" jsonschema:"description=Maximum staged file size in bytes,minimum=1,default=10485760"`
}

// MergeConfig holds the default structural-merge array strategy (spec.md
// §5.C).
type MergeConfig struct {
	// ArrayStrategy is one of "replace", "merge_by_key", "concatenate".
	ArrayStrategy string `yaml:"array_strategy" json:"array_strategy" jsonschema:"description=Default array-merge strategy,enum=replace,enum=merge_by_key,enum=concatenate,default=replace"`
	// KeyFields are the candidate key fields tried, in order, when
	// ArrayStrategy is merge_by_key.
	KeyFields []string `yaml:"key_fields,omitempty" json:"key_fields,omitempty" jsonschema:"description=Candidate key fields for merge_by_key array merging"`
}

// DefaultMaxFileSize mirrors validator.MaxFileSize; duplicated here so
// config does not need to import validator for a single constant.
const DefaultMaxFileSize = 10 << 20

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Author: AuthorConfig{Name: "Jin", Email: "jin@local"},
		Commit: CommitConfig{MaxFileSize: DefaultMaxFileSize},
		Merge: MergeConfig{
			ArrayStrategy: "replace",
			KeyFields:     []string{"id", "name"},
		},
	}
}

// ArrayStrategy resolves the configured strategy name to a
// merge.ArrayStrategy, falling back to merge.Replace for an unrecognized
// or empty value.
func (c *Config) ArrayStrategy() merge.ArrayStrategy {
	switch c.Merge.ArrayStrategy {
	case "merge_by_key":
		return merge.MergeByKey
	case "concatenate":
		return merge.Concatenate
	default:
		return merge.Replace
	}
}

// MergeConfigValue builds a merge.Config from the configured array
// strategy and key fields, leaving MaxDepth at merge.DefaultConfig's
// default.
func (c *Config) MergeConfigValue() merge.Config {
	cfg := merge.DefaultConfig()
	cfg.ArrayStrategy = c.ArrayStrategy()
	if len(c.Merge.KeyFields) > 0 {
		cfg.KeyFields = c.Merge.KeyFields
	}
	return cfg
}

// Load reads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// envRepoPath is the environment override for RepoConfig.Path (spec.md
// §9: the object store location is read from env/config at process start).
const envRepoPath = "JIN_REPO_PATH"

// LoadOrDefault loads config from file or returns default if not found,
// then applies environment overrides on top.
func LoadOrDefault(dir string) (*Config, error) {
	configPaths := []string{
		filepath.Join(dir, ".jin.yaml"),
		filepath.Join(dir, ".jin.yml"),
		filepath.Join(dir, "jin.yaml"),
		filepath.Join(dir, "jin.yml"),
	}

	cfg := DefaultConfig()
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			break
		}
	}

	if v := os.Getenv(envRepoPath); v != "" {
		cfg.Repo.Path = v
	}
	return cfg, nil
}

// SchemaURL is the URL to the JSON Schema for jin configuration.
const SchemaURL = "https://raw.githubusercontent.com/edelwud/jin/main/.jin.schema.json"

// Save writes configuration to a file with a yaml-language-server schema
// reference header.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := fmt.Sprintf("# yaml-language-server: $schema=%s\n", SchemaURL)
	content := append([]byte(header), data...)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Commit.MaxFileSize < 1 {
		return fmt.Errorf("commit.max_file_size must be at least 1")
	}
	switch c.Merge.ArrayStrategy {
	case "", "replace", "merge_by_key", "concatenate":
	default:
		return fmt.Errorf("merge.array_strategy must be one of replace, merge_by_key, concatenate")
	}
	if c.Author.Name == "" {
		return fmt.Errorf("author.name is required")
	}
	if c.Author.Email == "" {
		return fmt.Errorf("author.email is required")
	}
	return nil
}
