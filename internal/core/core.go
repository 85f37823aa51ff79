// Package core is the orchestration facade spec.md §6.3 exposes to the
// surrounding command layer: init, stage, unstage, commit, apply, resolve,
// repair, plus the read-mostly operations SPEC_FULL.md §4 supplements on top
// of the same components. Only cmd/ imports cobra; core wires the components
// together and returns plain values and jinerr-tagged errors.
package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edelwud/jin/internal/ignoreblock"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/staging"
	"github.com/edelwud/jin/internal/store"
	"github.com/edelwud/jin/internal/workspace"
	"github.com/edelwud/jin/pkg/config"
)

// Core binds a workspace to the bare object store backing it, plus the
// process-wide configuration that parameterises commit and merge behaviour.
type Core struct {
	st            *store.Store
	workspaceRoot string
	project       string
	cfg           *config.Config
}

// Open binds workspaceRoot to the object store at repoPath, creating the
// store if absent (spec.md §4.D: repository creation is idempotent). cfg may
// be nil, in which case config.DefaultConfig() applies.
func Open(workspaceRoot, repoPath string, cfg *config.Config) (*Core, error) {
	st, err := store.Open(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Core{
		st:            st,
		workspaceRoot: workspaceRoot,
		project:       workspace.DeriveProject(workspaceRoot),
		cfg:           cfg,
	}, nil
}

// Config returns the configuration this Core was opened with.
func (c *Core) Config() *config.Config { return c.cfg }

// Store returns the bound object store, for callers (export/import, repair)
// that need it directly rather than through a Core method.
func (c *Core) Store() *store.Store { return c.st }

// WorkspaceRoot returns the bound workspace directory.
func (c *Core) WorkspaceRoot() string { return c.workspaceRoot }

// activeContext loads the Project Context and returns it as a layer.Context
// with Project filled in.
func (c *Core) activeContext() (layer.Context, error) {
	pc, err := workspace.LoadContext(c.workspaceRoot)
	if err != nil {
		return layer.Context{}, err
	}
	return layer.Context{Mode: pc.Mode, Scope: pc.Scope, Project: c.project}, nil
}

// Init idempotently creates the workspace's .jin/ tree, a default Project
// Context, and, when <workspace>/.git exists, the managed ignore block
// (spec.md §6.3).
func (c *Core) Init() error {
	if err := os.MkdirAll(filepath.Join(c.workspaceRoot, ".jin"), 0o755); err != nil {
		return fmt.Errorf("create .jin directory: %w", err)
	}
	if _, err := os.Stat(workspace.ContextPath(c.workspaceRoot)); os.IsNotExist(err) {
		if err := workspace.DefaultContext().Save(c.workspaceRoot); err != nil {
			return fmt.Errorf("write default context: %w", err)
		}
	}
	if _, err := os.Stat(workspace.MetadataPath(c.workspaceRoot)); os.IsNotExist(err) {
		if err := workspace.NewMetadata().Save(c.workspaceRoot); err != nil {
			return fmt.Errorf("write default workspace metadata: %w", err)
		}
	}
	if _, err := os.Stat(filepath.Join(c.workspaceRoot, ".git")); err == nil {
		if err := ignoreblock.Ensure(c.workspaceRoot, nil); err != nil {
			return fmt.Errorf("write managed ignore block: %w", err)
		}
	}
	return nil
}

// RoutingFlags are the command-layer routing inputs from spec.md §6.4.
type RoutingFlags struct {
	Global  bool
	Local   bool
	Mode    bool
	Scope   string
	Project bool
}

// resolveTargetLayer implements the routing table and constraints from
// spec.md §6.4.
func resolveTargetLayer(flags RoutingFlags, ctx layer.Context) (layer.Layer, error) {
	if flags.Global && (flags.Local || flags.Mode || flags.Scope != "" || flags.Project) {
		return layer.Layer{}, jinerr.New(jinerr.KindRouting, "--global excludes all other routing flags")
	}
	if flags.Local && (flags.Global || flags.Mode || flags.Scope != "" || flags.Project) {
		return layer.Layer{}, jinerr.New(jinerr.KindRouting, "--local excludes all other routing flags")
	}
	if flags.Project && !flags.Mode {
		return layer.Layer{}, jinerr.New(jinerr.KindRouting, "--project requires --mode")
	}
	if flags.Mode && ctx.Mode == "" {
		return layer.Layer{}, jinerr.New(jinerr.KindRouting, "--mode requires an active mode in the project context").WithHint("run jin mode use <name> first")
	}

	switch {
	case flags.Global:
		return layer.New(layer.GlobalBase), nil
	case flags.Local:
		return layer.New(layer.UserLocal), nil
	case flags.Mode && flags.Scope != "" && flags.Project:
		return layer.NewModeScopeProject(ctx.Mode, flags.Scope, ctx.Project), nil
	case flags.Mode && flags.Scope != "":
		return layer.NewModeScope(ctx.Mode, flags.Scope), nil
	case flags.Mode && flags.Project:
		return layer.NewModeProject(ctx.Mode, ctx.Project), nil
	case flags.Mode:
		return layer.NewMode(ctx.Mode), nil
	case flags.Scope != "":
		return layer.NewScope(flags.Scope), nil
	default:
		return layer.NewProject(ctx.Project), nil
	}
}

// Stage adds or updates staging entries for paths, routed per flags and the
// active Project Context (spec.md §4.E, §6.4).
func (c *Core) Stage(paths []string, flags RoutingFlags) error {
	ctx, err := c.activeContext()
	if err != nil {
		return err
	}
	target, err := resolveTargetLayer(flags, ctx)
	if err != nil {
		return err
	}

	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return err
	}

	for _, p := range paths {
		relPath, err := c.relWorkspacePath(p)
		if err != nil {
			return err
		}
		abspath := filepath.Join(c.workspaceRoot, relPath)
		info, err := os.Stat(abspath)
		if err != nil {
			return jinerr.New(jinerr.KindNotFound, "stage %s: %v", relPath, err).WithPath(relPath)
		}
		data, err := os.ReadFile(abspath)
		if err != nil {
			return fmt.Errorf("read %s: %w", relPath, err)
		}
		idx.Add(staging.NewEntry(relPath, target, data, info.ModTime()))
	}

	return idx.Save(c.workspaceRoot)
}

// relWorkspacePath normalises p (absolute or workspace-relative) to a
// workspace-relative, forward-slash path.
func (c *Core) relWorkspacePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(c.workspaceRoot, p)
		if err != nil {
			return "", jinerr.New(jinerr.KindRouting, "%s is not inside the workspace", p).WithPath(p)
		}
		p = rel
	}
	return filepath.ToSlash(filepath.Clean(p)), nil
}

// StageRemoval marks paths for removal from their target layer's tracked
// tree on the next commit, the structural analogue of `git rm --cached`
// (SPEC_FULL.md §4). Unlike Stage, the workspace file need not exist —
// removing an already-deleted file is the common case — and any staged
// add for the same path is replaced outright. force also deletes the
// workspace file, if still present.
func (c *Core) StageRemoval(paths []string, flags RoutingFlags, force bool) ([]string, error) {
	ctx, err := c.activeContext()
	if err != nil {
		return nil, err
	}
	target, err := resolveTargetLayer(flags, ctx)
	if err != nil {
		return nil, err
	}

	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, p := range paths {
		relPath, err := c.relWorkspacePath(p)
		if err != nil {
			return nil, err
		}
		idx.Add(staging.NewRemovalEntry(relPath, target))
		removed = append(removed, relPath)

		if force {
			abspath := filepath.Join(c.workspaceRoot, relPath)
			if err := os.Remove(abspath); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("delete workspace file %s: %w", relPath, err)
			}
		}
	}

	if err := idx.Save(c.workspaceRoot); err != nil {
		return nil, err
	}
	return removed, nil
}

// UnstageMode selects how unstage treats the index entry and workspace file
// (SPEC_FULL.md §4, carried verbatim from original_source/commands/reset.rs).
type UnstageMode int

const (
	// Mixed removes the staged entry but leaves the workspace file untouched
	// (spec.md §6.3's baseline "removes staged entries" behaviour).
	Mixed UnstageMode = iota
	// Soft keeps the entry, downgrading it from Staged to Modified so it
	// still shows as a pending local change. The entry stays in the index,
	// so the next commit still includes it.
	Soft
	// Hard removes the staged entry and deletes the workspace file.
	Hard
)

// Unstage removes staged entries selected by paths (if non-empty) or by
// layerFilter (if non-nil), otherwise every staged entry, per mode.
func (c *Core) Unstage(paths []string, layerFilter *layer.Layer, mode UnstageMode) ([]string, error) {
	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}

	var targets []string
	switch {
	case len(paths) > 0:
		for _, p := range paths {
			rel, err := c.relWorkspacePath(p)
			if err != nil {
				return nil, err
			}
			targets = append(targets, rel)
		}
	case layerFilter != nil:
		for _, e := range idx.EntriesByLayer(*layerFilter) {
			targets = append(targets, e.Path)
		}
	default:
		for _, e := range idx.IterAll() {
			targets = append(targets, e.Path)
		}
	}

	var affected []string
	for _, path := range targets {
		entry, ok := idx.Get(path)
		if !ok {
			continue
		}
		switch mode {
		case Soft:
			entry.Status = (entry.Status &^ staging.StatusStaged) | staging.StatusModified
			idx.Set(entry)
		default:
			idx.Remove(path)
			if mode == Hard {
				if err := os.Remove(filepath.Join(c.workspaceRoot, path)); err != nil && !os.IsNotExist(err) {
					return nil, fmt.Errorf("delete workspace file %s: %w", path, err)
				}
			}
		}
		affected = append(affected, path)
	}

	if err := idx.Save(c.workspaceRoot); err != nil {
		return nil, err
	}
	return affected, nil
}
