package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/core"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
)

var (
	resetMode  string
	resetLayer string
)

var resetCmd = &cobra.Command{
	Use:   "reset [path]...",
	Short: "Unstage files",
	Long: `Remove staged entries, selected by path, by --layer, or (with
neither) every staged entry. --mode controls what happens to the workspace
file and the entry itself: mixed (default) drops the entry only, soft keeps
it as a pending edit, hard also deletes the workspace file
(SPEC_FULL.md §4).`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetMode, "mode", "mixed", "mixed, soft, or hard")
	resetCmd.Flags().StringVar(&resetLayer, "layer", "", "unstage every entry routed to this layer")
}

func runReset(_ *cobra.Command, args []string) error {
	var mode core.UnstageMode
	switch resetMode {
	case "mixed":
		mode = core.Mixed
	case "soft":
		mode = core.Soft
	case "hard":
		mode = core.Hard
	default:
		return jinerr.New(jinerr.KindRouting, "--mode must be mixed, soft, or hard")
	}

	var layerFilter *layer.Layer
	if resetLayer != "" {
		l, ok := layer.ParseString(resetLayer)
		if !ok {
			return jinerr.New(jinerr.KindRouting, "unrecognized --layer %q", resetLayer)
		}
		layerFilter = &l
	}

	affected, err := jinCore.Unstage(args, layerFilter, mode)
	if err != nil {
		return err
	}
	fmt.Printf("unstaged %d file(s)\n", len(affected))
	return nil
}
