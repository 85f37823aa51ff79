package pausedapply

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edelwud/jin/internal/atomicfile"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/workspace"
)

// markerMarkers are the three conflict-marker substrings a resolved file
// must no longer contain (spec.md §4.J step 3, §6.2).
var markerMarkers = []string{"<<<<<<<", "=======", ">>>>>>>"}

// ResolveResult summarises one `jin resolve` invocation.
type ResolveResult struct {
	Resolved      []string
	NotInConflict []string
	Remaining     int
}

// Resolve advances the Paused-Apply Protocol for a set of target paths
// (spec.md §4.J "On resume"). paths is the explicit target list; when empty
// (or all is true) every still-conflicting path is targeted.
func Resolve(workspaceRoot string, paths []string, all, dryRun, force bool) (*ResolveResult, error) {
	state, err := Load(workspaceRoot)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoPausedOperation
	}
	if state.IsStale() && !force {
		return nil, ErrStaleState
	}

	targets, notInConflict := targetSet(state, paths, all)
	if len(targets) == 0 && len(notInConflict) > 0 {
		return nil, ErrNotInConflict
	}

	result := &ResolveResult{NotInConflict: notInConflict}
	remainingConflicts := map[string]bool{}
	for _, p := range state.ConflictFiles {
		remainingConflicts[p] = true
	}

	for _, p := range targets {
		body, err := readResolution(workspaceRoot, p)
		if err != nil {
			return nil, err
		}
		if dryRun {
			delete(remainingConflicts, p)
			result.Resolved = append(result.Resolved, p)
			continue
		}
		abspath := filepath.Join(workspaceRoot, p)
		if err := atomicfile.Write(abspath, body, 0o644); err != nil {
			return nil, fmt.Errorf("write resolved %s: %w", p, err)
		}
		if err := os.Remove(filepath.Join(workspaceRoot, MergePath(p))); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove marker for %s: %w", p, err)
		}
		delete(remainingConflicts, p)
		result.Resolved = append(result.Resolved, p)
	}

	if dryRun {
		result.Remaining = len(remainingConflicts)
		return result, nil
	}

	if len(remainingConflicts) == 0 {
		if err := finalizeApply(workspaceRoot, state); err != nil {
			return nil, err
		}
		if err := Delete(workspaceRoot); err != nil {
			return nil, err
		}
		result.Remaining = 0
		return result, nil
	}

	newState := &State{
		Timestamp:     state.Timestamp,
		LayerConfig:   state.LayerConfig,
		AppliedFiles:  state.AppliedFiles,
		ConflictFiles: sortedKeys(remainingConflicts),
		ConflictCount: len(remainingConflicts),
	}
	if err := newState.Save(workspaceRoot); err != nil {
		return nil, err
	}
	result.Remaining = len(remainingConflicts)
	return result, nil
}

// targetSet determines which paths Resolve should act on: every conflict
// when all is set or no explicit paths were given, otherwise the explicit
// list split into those actually in conflict and those that are not.
func targetSet(state *State, paths []string, all bool) (targets, notInConflict []string) {
	if all || len(paths) == 0 {
		return append([]string(nil), state.ConflictFiles...), nil
	}

	inConflict := map[string]bool{}
	for _, p := range state.ConflictFiles {
		inConflict[p] = true
	}
	for _, p := range paths {
		if !inConflict[p] {
			notInConflict = append(notInConflict, p)
			continue
		}
		targets = append(targets, p)
	}
	return targets, notInConflict
}

// readResolution opens path's `.jinmerge` artefact and extracts the
// resolved body, refusing it if any conflict marker remains or the trimmed
// content is empty or equal to the header alone (spec.md §4.J step 3, §6.2).
func readResolution(workspaceRoot, relPath string) ([]byte, error) {
	markerPath := filepath.Join(workspaceRoot, MergePath(relPath))
	data, err := os.ReadFile(markerPath)
	if err != nil {
		return nil, fmt.Errorf("read marker for %s: %w", relPath, err)
	}
	content := string(data)
	for _, marker := range markerMarkers {
		if strings.Contains(content, marker) {
			return nil, jinerr.New(jinerr.KindValidation, "unresolved conflict markers remain in %s", relPath).WithPath(relPath)
		}
	}

	body := content
	if strings.HasPrefix(body, MarkerHeader) {
		body = strings.TrimPrefix(body, MarkerHeader)
		body = strings.TrimPrefix(body, "\n")
	}
	if strings.TrimSpace(body) == "" {
		return nil, jinerr.New(jinerr.KindValidation, "resolution for %s is empty", relPath).WithPath(relPath)
	}
	return []byte(body), nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// finalizeApply runs when the last conflict resolves: it updates Workspace
// Metadata with the final content hashes of every applied path (spec.md
// §4.J step 5). The managed-ignore block update is the command layer's
// concern (spec.md §1 Out of scope).
func finalizeApply(workspaceRoot string, state *State) error {
	meta, err := workspace.LoadMetadata(workspaceRoot)
	if err != nil {
		return err
	}
	all := append([]string(nil), state.AppliedFiles...)
	all = append(all, state.ConflictFiles...)
	for _, p := range all {
		data, err := os.ReadFile(filepath.Join(workspaceRoot, p))
		if err != nil {
			continue // already removed/renamed outside jin; nothing to hash
		}
		sum := hashHex(data)
		meta.FileHashes[p] = sum
	}
	meta.ActiveLayers = state.LayerConfig
	return meta.Save(workspaceRoot)
}
