// Package cmd implements jin's command-line interface: one cobra command per
// spec.md §6.3 operation (plus the SPEC_FULL.md §4 supplements), each a thin
// wrapper translating flags into an internal/core call and printing the
// result.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/core"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/pkg/config"
	"github.com/edelwud/jin/pkg/log"
)

var (
	cfgFile  string
	workDir  string
	repoPath string
	logLevel string
	verbose  bool

	versionInfo struct {
		Version string
		Commit  string
		Date    string
	}

	cfg     *config.Config
	jinCore *core.Core
)

// ExitCode extracts the process exit code spec.md §6.5 assigns to err.
func ExitCode(err error) int {
	return jinerr.ExitCode(err)
}

var rootCmd = &cobra.Command{
	Use:   "jin",
	Short: "Layered configuration version control for AI and editor configs",
	Long: `jin tracks AI assistant and editor configuration files across a
nine-layer precedence lattice (global, mode, scope, project, and their
combinations), merging them structurally instead of overwriting whole files.

Features:
  - Content-addressed object store shared across layers
  - Structural deep merge for JSON/YAML/TOML/INI, RFC 7396 semantics
  - Atomic multi-layer commits with automatic rollback
  - Paused-apply conflict resolution for merges that can't resolve cleanly`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		log.Init()

		if verbose {
			logLevel = "debug"
		}
		if logLevel != "" {
			if err := log.SetLevelFromString(logLevel); err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
		}

		switch cmd.Name() {
		case "version", "schema", "completion", "man", "init":
			return nil
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadOrDefault(workDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		repo := repoPath
		if repo == "" {
			repo = cfg.Repo.Path
		}
		if repo == "" {
			repo = defaultRepoPath(workDir)
		}
		jinCore, err = core.Open(workDir, repo, cfg)
		return err
	},
}

// defaultRepoPath is the bare object store location when neither --repo nor
// config nor JIN_REPO_PATH override it (spec.md §3.1: the store backs the
// workspace it lives under).
func defaultRepoPath(workspaceRoot string) string {
	return workspaceRoot + "/.jin/repo"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information printed by `jin version`.
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .jin.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "d", cwd, "workspace root")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", "", "object store path (overrides config and JIN_REPO_PATH)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output (shorthand for --log-level=debug)")
}
