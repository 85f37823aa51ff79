package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Manage scopes (ScopeBase layers)",
}

var scopeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := jinCore.CreateScope(args[0]); err != nil {
			return err
		}
		fmt.Printf("scope %q created\n", args[0])
		return nil
	},
}

var scopeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := jinCore.DeleteScope(args[0]); err != nil {
			return err
		}
		fmt.Printf("scope %q deleted\n", args[0])
		return nil
	},
}

var scopeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known scope",
	RunE: func(_ *cobra.Command, _ []string) error {
		scopes, err := jinCore.ListScopes()
		if err != nil {
			return err
		}
		for _, s := range scopes {
			fmt.Println(s)
		}
		return nil
	},
}

var scopeUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch the active scope (empty name clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := jinCore.UseScope(name); err != nil {
			return err
		}
		if name == "" {
			fmt.Println("active scope cleared")
		} else {
			fmt.Printf("active scope set to %q\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scopeCmd)
	scopeCmd.AddCommand(scopeCreateCmd, scopeDeleteCmd, scopeListCmd, scopeUseCmd)
}
