package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	applyForce  bool
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Compose active layers and write the result into the workspace",
	Long: `Merge every layer applicable to the current mode/scope context,
highest precedence last, and write the composed files into the workspace
(spec.md §4.I). A conflict that cannot merge structurally pauses the
operation; resolve it with jin resolve.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVar(&applyForce, "force", false, "overwrite workspace files edited outside jin")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "preview the composed result without writing")
}

func runApply(_ *cobra.Command, _ []string) error {
	res, err := jinCore.Apply(applyForce, applyDryRun)
	if err != nil {
		return err
	}

	if applyDryRun {
		for path := range res.Files {
			fmt.Printf("would write %s\n", path)
		}
	} else {
		fmt.Printf("applied %d file(s)\n", len(res.Applied))
	}

	if res.Paused {
		fmt.Println("apply paused: textual conflicts need resolution")
		for _, c := range res.Conflicts {
			fmt.Printf("  conflict: %s\n", c)
		}
		fmt.Println("resolve conflicts with: jin resolve <path>, then re-run jin apply")
	} else if len(res.Conflicts) > 0 {
		for _, c := range res.Conflicts {
			fmt.Printf("  textual conflict (higher layer won): %s\n", c)
		}
	}
	return nil
}
