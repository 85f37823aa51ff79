package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/commit"
	"github.com/edelwud/jin/pkg/log"
)

var (
	commitMessage string
	commitEmpty   bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the staging index across every touched layer",
	Long: `Validate every staged entry, then build and commit a tree for each
touched layer as a single atomic transaction (spec.md §4.H). If any layer's
commit fails, every layer commit this transaction created is rolled back.`,
	RunE: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().BoolVar(&commitEmpty, "allow-empty", false, "allow a commit with nothing staged")
}

func runCommit(_ *cobra.Command, _ []string) error {
	res, err := jinCore.Commit(commit.Options{
		Message:    commitMessage,
		AllowEmpty: commitEmpty,
	})
	if err != nil {
		if vf, ok := err.(*commit.ValidationFailed); ok {
			for _, e := range vf.Errors {
				log.WithField("path", e.Path).Error(e.Error())
			}
		}
		return err
	}

	fmt.Printf("committed %d file(s) across %d layer(s), transaction %s\n",
		len(res.Files), len(res.LayerCommits), res.TransactionID)
	return nil
}
