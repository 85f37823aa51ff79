package cmd

import (
	"fmt"
	"os"

	"charm.land/huh/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/edelwud/jin/internal/atomicfile"
	"github.com/edelwud/jin/internal/pausedapply"
)

var (
	resolveAll         bool
	resolveDryRun      bool
	resolveForce       bool
	resolveInteractive bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]...",
	Short: "Resume a paused apply by committing conflict-marker resolutions",
	Long: `Read the edited .jinmerge files for the given paths (or every
conflicted path with --all), apply the operator's chosen resolution to the
workspace, and finalize the paused apply once no conflicts remain (spec.md
§4.J).

With --interactive, jin walks each conflicted path and prompts for which
layer's contribution to keep instead of requiring a hand edit of the
.jinmerge artefact first.`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveAll, "all", false, "resolve every conflicted path")
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "validate resolutions without writing")
	resolveCmd.Flags().BoolVar(&resolveForce, "force", false, "resolve a stale paused apply anyway")
	resolveCmd.Flags().BoolVarP(&resolveInteractive, "interactive", "i", false, "prompt for which layer's contribution to keep")
}

var previewStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

func runResolve(_ *cobra.Command, args []string) error {
	if resolveInteractive && !resolveDryRun {
		if err := resolveInteractively(args); err != nil {
			return err
		}
	}

	res, err := jinCore.Resolve(args, resolveAll, resolveDryRun, resolveForce)
	if err != nil {
		return err
	}

	for _, p := range res.Resolved {
		fmt.Printf("resolved %s\n", p)
	}
	for _, p := range res.NotInConflict {
		fmt.Printf("%s is not in conflict\n", p)
	}
	if res.Remaining == 0 {
		fmt.Println("all conflicts resolved, apply finalized")
	} else {
		fmt.Printf("%d conflict(s) remaining\n", res.Remaining)
	}
	return nil
}

// resolveInteractively prompts for a contribution to keep on each targeted
// conflict and writes the choice into its .jinmerge artefact, so the
// subsequent jinCore.Resolve call picks it up the same way it would a
// hand-edited file.
func resolveInteractively(args []string) error {
	targets, err := resolveTargets(args)
	if err != nil {
		return err
	}

	for _, path := range targets {
		markerPath := jinCore.MarkerPath(path)
		data, err := os.ReadFile(markerPath)
		if err != nil {
			return fmt.Errorf("read marker for %s: %w", path, err)
		}
		contribs, err := pausedapply.ParseMarker(data)
		if err != nil {
			return fmt.Errorf("parse marker for %s: %w", path, err)
		}

		choice, err := pickContribution(path, contribs)
		if err != nil {
			return err
		}

		if err := atomicfile.Write(markerPath, []byte(choice.Text), 0o644); err != nil {
			return fmt.Errorf("write resolution for %s: %w", path, err)
		}
	}
	return nil
}

// resolveTargets mirrors jin resolve's own path selection: the explicit
// argument list, or every conflicted path when --all or no args were given.
func resolveTargets(args []string) ([]string, error) {
	if !resolveAll && len(args) > 0 {
		return args, nil
	}
	conflicts, err := jinCore.PausedConflicts()
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// pickContribution prompts with a select defaulting to the highest
// precedence contribution, matching apply's higher-layer-wins fallback for
// plain-text files (spec.md §1, §4.J).
func pickContribution(path string, contribs []pausedapply.Contribution) (pausedapply.Contribution, error) {
	options := make([]huh.Option[int], len(contribs))
	for i, c := range contribs {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%d bytes)", c.Layer, len(c.Text)), i)
	}
	choice := len(contribs) - 1

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("resolve conflict in %s", path)).
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return pausedapply.Contribution{}, fmt.Errorf("prompt for %s: %w", path, err)
	}

	fmt.Println(previewStyle.Render(contribs[choice].Text))
	return contribs[choice], nil
}
