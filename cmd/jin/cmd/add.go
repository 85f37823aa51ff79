package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/pkg/log"
)

var addFlags routingFlags

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Stage files into a layer",
	Long: `Stage one or more workspace files, routing them to a layer chosen
by the routing flags and the active Project Context (spec.md §4.E, §6.4).
With no routing flags, files route to the current project's layer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addFlags.register(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	if err := jinCore.Stage(args, addFlags.toCore()); err != nil {
		return err
	}
	for _, p := range args {
		log.WithField("path", p).Info("staged")
	}
	fmt.Printf("staged %d file(s)\n", len(args))
	return nil
}
