package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/pkg/log"
)

var (
	rmFlags  routingFlags
	rmForce  bool
	rmDryRun bool
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Remove files from a layer's tracked tree",
	Long: `Mark one or more paths for removal from the layer's tracked tree on
the next commit, routed by the routing flags and the active Project Context
the same way jin add routes staging (SPEC_FULL.md §4). Like git rm --cached,
the workspace file is left in place unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rmFlags.register(rmCmd)
	rmCmd.Flags().BoolVar(&rmForce, "force", false, "also delete the workspace file")
	rmCmd.Flags().BoolVar(&rmDryRun, "dry-run", false, "print what would be removed without staging it")
}

func runRm(_ *cobra.Command, args []string) error {
	if rmDryRun {
		for _, p := range args {
			action := "from the tracked tree only"
			if rmForce {
				action = "from the tracked tree and the workspace"
			}
			fmt.Printf("would remove: %s (%s)\n", p, action)
		}
		return nil
	}

	removed, err := jinCore.StageRemoval(args, rmFlags.toCore(), rmForce)
	if err != nil {
		return err
	}
	for _, p := range removed {
		log.WithField("path", p).Info("marked for removal")
	}
	fmt.Printf("removed %d file(s)\n", len(removed))
	return nil
}
