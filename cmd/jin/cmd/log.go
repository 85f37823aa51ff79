package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logLayerFilter string
	logLimit       int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the audit log of past commits",
	Long: `Print recorded commit entries newest-first, reading the
per-day JSON Lines shards under the object store's .audit/ directory
(SPEC_FULL.md §4).`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringVar(&logLayerFilter, "layer", "", "filter to entries for this layer")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "maximum entries to print (0 for unlimited)")
}

func runLog(_ *cobra.Command, _ []string) error {
	entries, err := jinCore.Log(logLayerFilter, logLimit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-30s  %-8s  %d file(s)  %s\n",
			e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Layer, e.MergeCommit[:min(8, len(e.MergeCommit))], len(e.Files), e.User)
	}
	return nil
}
