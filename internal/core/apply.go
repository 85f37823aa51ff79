package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edelwud/jin/internal/compose"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/pausedapply"
	"github.com/edelwud/jin/internal/value"
	"github.com/edelwud/jin/internal/workspace"
)

// ApplyResult summarises one apply invocation.
type ApplyResult struct {
	Files     map[string][]byte // dry_run preview, keyed by workspace-relative path
	Applied   []string
	Conflicts []string
	Paused    bool
}

// Apply invokes the Layer Composer over the active context's layers and
// either previews (dry_run) or writes the result to the workspace (spec.md
// §4.I, §6.3). A workspace file edited outside jin since the last apply
// blocks a non-forced apply, since overwriting it would silently discard the
// edit.
func (c *Core) Apply(force, dryRun bool) (*ApplyResult, error) {
	ctx, err := c.activeContext()
	if err != nil {
		return nil, err
	}
	activeLayers := layer.ApplicableLayers(ctx)

	result, err := compose.Compose(c.st, activeLayers, c.cfg.MergeConfigValue())
	if err != nil {
		return nil, fmt.Errorf("compose active layers: %w", err)
	}

	if dryRun {
		preview := map[string][]byte{}
		for path, mf := range result.Files {
			data, err := value.Emit(mf.Format, mf.Value)
			if err != nil {
				return nil, fmt.Errorf("emit %s: %w", path, err)
			}
			preview[path] = data
		}
		return &ApplyResult{Files: preview, Conflicts: append([]string(nil), result.Conflicts...)}, nil
	}

	if !force {
		if err := c.checkWorkspaceClean(result); err != nil {
			return nil, err
		}
	}

	layerNames := make([]string, len(activeLayers))
	for i, l := range activeLayers {
		layerNames[i] = l.String()
	}

	applied, paused, err := pausedapply.Apply(c.workspaceRoot, result, layerNames)
	if err != nil {
		return nil, err
	}

	if !paused {
		if err := c.recordAppliedMetadata(applied, layerNames); err != nil {
			return nil, err
		}
	}

	return &ApplyResult{
		Applied:   applied,
		Conflicts: append([]string(nil), result.Conflicts...),
		Paused:    paused,
	}, nil
}

// checkWorkspaceClean refuses an unforced apply that would overwrite a file
// the operator edited outside jin since the last apply.
func (c *Core) checkWorkspaceClean(result *compose.Result) error {
	meta, err := workspace.LoadMetadata(c.workspaceRoot)
	if err != nil {
		return err
	}
	for path := range result.Files {
		abspath := filepath.Join(c.workspaceRoot, path)
		data, err := os.ReadFile(abspath)
		if err != nil {
			continue // not yet on disk, nothing to protect
		}
		if meta.IsDirty(path, hashHex(data)) {
			if _, tracked := meta.FileHashes[path]; tracked {
				return jinerr.New(jinerr.KindConflict, "workspace file %s was edited outside jin since the last apply", path).
					WithPath(path).WithHint("stage the edit or re-run apply with --force to overwrite it")
			}
		}
	}
	return nil
}

func (c *Core) recordAppliedMetadata(applied, activeLayers []string) error {
	meta, err := workspace.LoadMetadata(c.workspaceRoot)
	if err != nil {
		return err
	}
	for _, path := range applied {
		data, err := os.ReadFile(filepath.Join(c.workspaceRoot, path))
		if err != nil {
			continue
		}
		meta.FileHashes[path] = hashHex(data)
	}
	meta.ActiveLayers = activeLayers
	return meta.Save(c.workspaceRoot)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Resolve advances the Paused-Apply Protocol (spec.md §4.J).
func (c *Core) Resolve(paths []string, all, dryRun, force bool) (*pausedapply.ResolveResult, error) {
	return pausedapply.Resolve(c.workspaceRoot, paths, all, dryRun, force)
}

// PausedConflicts returns the still-conflicting paths of the current
// Paused-Apply State, or nil if no apply is paused.
func (c *Core) PausedConflicts() ([]string, error) {
	state, err := pausedapply.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	return state.ConflictFiles, nil
}

// MarkerPath returns the workspace-absolute `.jinmerge` artefact path for a
// conflicted workspace-relative path.
func (c *Core) MarkerPath(relPath string) string {
	return filepath.Join(c.workspaceRoot, pausedapply.MergePath(relPath))
}
