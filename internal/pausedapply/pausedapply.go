// Package pausedapply implements the Paused-Apply Protocol (spec.md §3.7,
// §4.J, §6.2): on a textual conflict, apply writes every non-conflicting
// file, emits `.jinmerge` marker artefacts for the rest, and persists
// resumable state so a later `jin resolve` can finish the job across
// process invocations.
package pausedapply

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/edelwud/jin/internal/atomicfile"
	"github.com/edelwud/jin/internal/compose"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/value"
)

// StatePath returns <workspace>/.jin/.paused_apply.yaml.
func StatePath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".jin", ".paused_apply.yaml")
}

// MarkerHeader is the first line of every `.jinmerge` artefact (spec.md §6.2).
const MarkerHeader = "# Jin merge conflict. Resolve and run 'jin resolve <file>'"

// StaleAfter is how long a paused-apply state may sit before `resolve`
// refuses it without --force (spec.md §4.J).
const StaleAfter = 24 * time.Hour

// State is the persisted record of an apply paused on textual conflicts
// (spec.md §3.7).
type State struct {
	Timestamp     time.Time `yaml:"timestamp"`
	LayerConfig   []string  `yaml:"layer_config"`
	ConflictFiles []string  `yaml:"conflict_files"`
	AppliedFiles  []string  `yaml:"applied_files"`
	ConflictCount int       `yaml:"conflict_count"`
}

// Load reads the Paused-Apply State, if any.
func Load(workspaceRoot string) (*State, error) {
	data, err := os.ReadFile(StatePath(workspaceRoot))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read paused-apply state: %w", err)
	}
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse paused-apply state: %w", err)
	}
	return &s, nil
}

// Save persists the state atomically.
func (s *State) Save(workspaceRoot string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal paused-apply state: %w", err)
	}
	return atomicfile.Write(StatePath(workspaceRoot), data, 0o644)
}

// Delete removes the state file; absent is not an error.
func Delete(workspaceRoot string) error {
	err := os.Remove(StatePath(workspaceRoot))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsStale reports whether s is older than StaleAfter.
func (s *State) IsStale() bool {
	return time.Since(s.Timestamp) > StaleAfter
}

// MergePath returns the `.jinmerge` marker artefact path for a conflicting
// workspace-relative path.
func MergePath(relPath string) string { return relPath + ".jinmerge" }

// WriteMarker renders the conflict marker artefact content for path's
// contributions: a header line followed by one block per adjacent pair of
// conflicting layers in precedence order (spec.md §6.2).
func WriteMarker(contribs []compose.Contribution) []byte {
	var b strings.Builder
	b.WriteString(MarkerHeader)
	b.WriteString("\n")
	for i := 1; i < len(contribs); i++ {
		lower, higher := contribs[i-1], contribs[i]
		fmt.Fprintf(&b, "<<<<<<< %s\n", lower.Layer.String())
		b.Write(lower.Bytes)
		if len(lower.Bytes) == 0 || lower.Bytes[len(lower.Bytes)-1] != '\n' {
			b.WriteString("\n")
		}
		b.WriteString("=======\n")
		b.Write(higher.Bytes)
		if len(higher.Bytes) == 0 || higher.Bytes[len(higher.Bytes)-1] != '\n' {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, ">>>>>>> %s\n", higher.Layer.String())
	}
	return []byte(b.String())
}

// Apply writes every non-conflicting composed file atomically to the
// workspace, emits `.jinmerge` markers for conflicting paths (never writing
// the original file for those), and persists Paused-Apply State when there
// is at least one conflict (spec.md §4.J steps 1-3).
//
// It returns the sorted list of paths actually written to the workspace
// (excluding markers) and whether a paused state was created.
func Apply(workspaceRoot string, result *compose.Result, layerConfig []string) (applied []string, paused bool, err error) {
	conflictSet := map[string]bool{}
	for _, p := range result.Conflicts {
		conflictSet[p] = true
	}

	var paths []string
	for p := range result.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		abspath := filepath.Join(workspaceRoot, p)
		if conflictSet[p] {
			marker := WriteMarker(result.Contributions[p])
			if werr := atomicfile.Write(filepath.Join(workspaceRoot, MergePath(p)), marker, 0o644); werr != nil {
				return nil, false, fmt.Errorf("write marker for %s: %w", p, werr)
			}
			continue
		}
		mf := result.Files[p]
		data, eerr := value.Emit(mf.Format, mf.Value)
		if eerr != nil {
			return nil, false, fmt.Errorf("emit %s: %w", p, eerr)
		}
		if werr := atomicfile.Write(abspath, data, 0o644); werr != nil {
			return nil, false, fmt.Errorf("write %s: %w", p, werr)
		}
		applied = append(applied, p)
	}

	if len(result.Conflicts) > 0 {
		state := &State{
			Timestamp:     time.Now(),
			LayerConfig:   layerConfig,
			ConflictFiles: append([]string(nil), result.Conflicts...),
			AppliedFiles:  append([]string(nil), applied...),
			ConflictCount: len(result.Conflicts),
		}
		if serr := state.Save(workspaceRoot); serr != nil {
			return applied, true, fmt.Errorf("save paused-apply state: %w", serr)
		}
		return applied, true, nil
	}
	return applied, false, nil
}

// hashHex returns the SHA-256 hex digest of data, matching the format
// Workspace Metadata stores in FileHashes.
func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// sentinel errors surfaced by Resolve (spec.md §7).
var (
	ErrNoPausedOperation = jinerr.New(jinerr.KindState, "no paused apply operation")
	ErrStaleState        = jinerr.New(jinerr.KindState, "paused-apply state is stale; pass --force to resolve anyway")
	ErrNotInConflict     = jinerr.New(jinerr.KindState, "path is not in conflict")
)
