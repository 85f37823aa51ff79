package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List every layer with at least one commit",
	RunE:  runLayers,
}

func init() {
	rootCmd.AddCommand(layersCmd)
}

func runLayers(_ *cobra.Command, _ []string) error {
	layers, err := jinCore.ListLayers()
	if err != nil {
		return err
	}
	for _, l := range layers {
		fmt.Printf("%-40s precedence=%d files=%d  %s\n", l.Layer.String(), l.Precedence, l.FileCount, l.LastCommit)
	}
	return nil
}
