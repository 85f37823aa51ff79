package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/core"
	"github.com/edelwud/jin/pkg/config"
	"github.com/edelwud/jin/pkg/log"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a jin workspace",
	Long: `Create the .jin/ workspace state (Project Context, Workspace
Metadata), the managed .gitignore block if the workspace is a git checkout,
and a default .jin.yaml configuration file.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite existing config file")
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath := filepath.Join(workDir, ".jin.yaml")
	if _, err := os.Stat(configPath); err == nil && !forceInit {
		log.WithField("file", configPath).Debug("config already exists, leaving it in place")
	} else {
		log.Debug("creating default configuration")
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		log.WithField("file", configPath).Info("configuration created")
	}

	repo := repoPath
	if repo == "" {
		repo = defaultRepoPath(workDir)
	}
	c, err := core.Open(workDir, repo, nil)
	if err != nil {
		return err
	}
	if err := c.Init(); err != nil {
		return err
	}

	log.WithField("repo", repo).Info("jin workspace initialized")
	return nil
}
