package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/core"
	"github.com/edelwud/jin/internal/value"
)

var diffCmd = &cobra.Command{
	Use:   "diff <path>",
	Short: "Show structural differences for a staged entry",
	Long: `Compare a staged entry's current workspace content against the
same path's content already committed in the entry's target layer,
reporting added/removed/changed keys instead of a line-oriented text diff
(SPEC_FULL.md §4).`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(_ *cobra.Command, args []string) error {
	ops, err := jinCore.DiffStaged(args[0])
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		fmt.Println("no structural differences")
		return nil
	}
	for _, op := range ops {
		switch op.Kind {
		case core.Added:
			fmt.Printf("+ %s = %s\n", op.Path, render(op.New))
		case core.Removed:
			fmt.Printf("- %s = %s\n", op.Path, render(op.Old))
		default:
			fmt.Printf("~ %s: %s -> %s\n", op.Path, render(op.Old), render(op.New))
		}
	}
	return nil
}

func render(v value.Value) string {
	data, err := value.Emit(value.JSON, v)
	if err != nil {
		return "<unprintable>"
	}
	return string(data)
}
