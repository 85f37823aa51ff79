package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
)

var exportCmd = &cobra.Command{
	Use:   "export <layer> <dest-dir>",
	Short: "Write every file tracked by a layer into a directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	l, ok := layer.ParseString(args[0])
	if !ok {
		return jinerr.New(jinerr.KindRouting, "unrecognized layer %q", args[0])
	}
	written, err := jinCore.Export(l, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("exported %d file(s) to %s\n", len(written), args[1])
	return nil
}
