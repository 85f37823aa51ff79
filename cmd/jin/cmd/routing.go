package cmd

import (
	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/core"
)

// routingFlags holds the --global/--local/--mode/--scope/--project flag
// values shared by add, rm and import (spec.md §6.4).
type routingFlags struct {
	global  bool
	local   bool
	mode    bool
	scope   string
	project bool
}

func (f *routingFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.global, "global", false, "route to the global base layer")
	cmd.Flags().BoolVar(&f.local, "local", false, "route to the user-local layer")
	cmd.Flags().BoolVar(&f.mode, "mode", false, "route to the active mode's layer")
	cmd.Flags().StringVar(&f.scope, "scope", "", "route to the named scope's layer")
	cmd.Flags().BoolVar(&f.project, "project", false, "route to the project layer within --mode")
}

func (f *routingFlags) toCore() core.RoutingFlags {
	return core.RoutingFlags{
		Global:  f.global,
		Local:   f.local,
		Mode:    f.mode,
		Scope:   f.scope,
		Project: f.project,
	}
}
