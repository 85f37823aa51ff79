package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	repairDryRun    bool
	repairCheckOnly bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Diagnose and fix recoverable workspace/store inconsistencies",
	Long: `Clear orphaned transaction reservation refs, prune staging entries
whose workspace file is gone, rebuild the Layer-File Map if missing, and
restore the managed .gitignore block (spec.md §4.D, §6.3). --check reports
findings without writing.`,
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "report findings without writing")
	repairCmd.Flags().BoolVar(&repairCheckOnly, "check", false, "alias for --dry-run")
}

func runRepair(_ *cobra.Command, _ []string) error {
	res, err := jinCore.Repair(repairDryRun, repairCheckOnly)
	if err != nil {
		return err
	}

	fmt.Printf("orphan reservations cleared: %d\n", len(res.OrphanReservations))
	for _, r := range res.OrphanReservations {
		fmt.Printf("  %s\n", r)
	}
	fmt.Printf("missing staged files pruned: %d\n", len(res.MissingFiles))
	for _, f := range res.MissingFiles {
		fmt.Printf("  %s\n", f)
	}
	if res.LayerMapRebuilt {
		fmt.Println("layer-file map rebuilt")
	}
	if res.IgnoreBlockFixed {
		fmt.Println("managed .gitignore block restored")
	}
	return nil
}
