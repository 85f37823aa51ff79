package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importFlags routingFlags

var importCmd = &cobra.Command{
	Use:   "import <src-dir>",
	Short: "Copy every file under a directory into the workspace and stage it",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importFlags.register(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	staged, err := jinCore.Import(args[0], importFlags.toCore())
	if err != nil {
		return err
	}
	fmt.Printf("imported and staged %d file(s)\n", len(staged))
	return nil
}
