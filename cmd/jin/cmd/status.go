package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staged entries per layer and paused-apply state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	res, err := jinCore.Status()
	if err != nil {
		return err
	}

	mode, scope := res.Context.Mode, res.Context.Scope
	if mode == "" {
		mode = "(none)"
	}
	if scope == "" {
		scope = "(none)"
	}
	fmt.Printf("mode: %s  scope: %s  project: %s\n", mode, scope, res.Context.Project)

	for _, ls := range res.Layers {
		fmt.Printf("  %-40s staged=%d modified=%d removed=%d new=%d\n",
			ls.Layer.String(), ls.Staged, ls.Modified, ls.Removed, ls.New)
	}
	fmt.Printf("total staged: %d\n", res.TotalStaged)

	if res.PausedApply {
		fmt.Printf("apply paused: %d conflict(s) pending resolution\n", len(res.PausedConflicts))
	}
	if res.WorkspaceStale {
		fmt.Println("workspace may be stale: active layer set changed since the last apply")
	}
	return nil
}
