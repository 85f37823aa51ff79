package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Manage modes (ModeBase layers)",
}

var modeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := jinCore.CreateMode(args[0]); err != nil {
			return err
		}
		fmt.Printf("mode %q created\n", args[0])
		return nil
	},
}

var modeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a mode and everything nested under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := jinCore.DeleteMode(args[0]); err != nil {
			return err
		}
		fmt.Printf("mode %q deleted\n", args[0])
		return nil
	},
}

var modeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known mode",
	RunE: func(_ *cobra.Command, _ []string) error {
		modes, err := jinCore.ListModes()
		if err != nil {
			return err
		}
		for _, m := range modes {
			fmt.Println(m)
		}
		return nil
	},
}

var modeUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch the active mode (empty name clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := jinCore.UseMode(name); err != nil {
			return err
		}
		if name == "" {
			fmt.Println("active mode cleared")
		} else {
			fmt.Printf("active mode set to %q\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
	modeCmd.AddCommand(modeCreateCmd, modeDeleteCmd, modeListCmd, modeUseCmd)
}
