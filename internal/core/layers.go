package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/layermap"
	"github.com/edelwud/jin/internal/workspace"
)

const layersRoot = "refs/jin/layers"

// LayerInfo summarises one currently-referenced layer for the `layers`
// listing (SPEC_FULL.md §4).
type LayerInfo struct {
	Layer          layer.Layer
	RefPath        string
	Precedence     int
	LastCommit     string
	LastCommitTime time.Time
	FileCount      int
}

// ListLayers enumerates every layer that currently has a ref (spec.md
// §3.1(a): a layer's reference exists iff it has at least one commit).
func (c *Core) ListLayers() ([]LayerInfo, error) {
	refs, err := c.st.ListRefsByGlob(layersRoot + "/**")
	if err != nil {
		return nil, fmt.Errorf("list layer refs: %w", err)
	}
	lm, err := layermap.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}

	var out []LayerInfo
	for _, ref := range refs {
		l, ok := parseLayerRef(ref.Name)
		if !ok {
			continue
		}
		commit, err := c.st.FindCommit(ref.Target)
		if err != nil {
			return nil, fmt.Errorf("find commit for %s: %w", ref.Name, err)
		}
		out = append(out, LayerInfo{
			Layer:          l,
			RefPath:        ref.Name,
			Precedence:     l.Precedence(),
			LastCommit:     commit.Message,
			LastCommitTime: commit.Author.When,
			FileCount:      len(lm.Files(ref.Name)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Precedence < out[j].Precedence })
	return out, nil
}

// parseLayerRef reverses layer.Layer.RefPath for every versioned variant.
func parseLayerRef(refPath string) (layer.Layer, bool) {
	rest := strings.TrimPrefix(refPath, layersRoot+"/")
	if rest == refPath {
		return layer.Layer{}, false
	}
	segments := strings.Split(rest, "/")

	switch {
	case len(segments) == 1 && segments[0] == "global":
		return layer.New(layer.GlobalBase), true
	case len(segments) == 2 && segments[0] == "project":
		return layer.NewProject(segments[1]), true
	case len(segments) == 2 && segments[0] == "scope":
		return layer.NewScope(layer.UnescapeScope(segments[1])), true
	case len(segments) >= 2 && segments[0] == "mode":
		mode := segments[1]
		switch {
		case len(segments) == 2:
			return layer.NewMode(mode), true
		case len(segments) == 4 && segments[2] == "scope":
			return layer.NewModeScope(mode, layer.UnescapeScope(segments[3])), true
		case len(segments) == 6 && segments[2] == "scope" && segments[4] == "project":
			return layer.NewModeScopeProject(mode, layer.UnescapeScope(segments[3]), segments[5]), true
		case len(segments) == 4 && segments[2] == "project":
			return layer.NewModeProject(mode, segments[3]), true
		}
	}
	return layer.Layer{}, false
}

// emptyTreeCommit creates a zero-parent commit over an empty tree, used to
// give a freshly created mode/scope an existing ref before anything is
// staged to it (spec.md §3.1(a) requires a ref to have at least one commit).
func (c *Core) emptyTreeCommit(refPath, message string) error {
	treeOid, err := c.st.MakeTree(nil)
	if err != nil {
		return fmt.Errorf("build empty tree: %w", err)
	}
	sig := c.st.Signature("Jin", "jin@local")
	_, err = c.st.CreateCommit(refPath, message, sig, sig, treeOid, nil)
	return err
}

// CreateMode creates a new ModeBase layer, failing with AlreadyExists if its
// ref is already present (SPEC_FULL.md §4, `commands/mode.rs`).
func (c *Core) CreateMode(name string) error {
	l := layer.NewMode(name)
	ref, err := c.st.GetRef(l.RefPath())
	if err != nil {
		return err
	}
	if ref != nil {
		return jinerr.New(jinerr.KindAlreadyExists, "mode %q already exists", name).WithPath(l.RefPath())
	}
	return c.emptyTreeCommit(l.RefPath(), "Jin: create mode "+name)
}

// DeleteMode deletes a ModeBase layer and every ref nested under it
// (ModeScope, ModeScopeProject, ModeProject), refusing if the mode is
// currently active in the Project Context.
func (c *Core) DeleteMode(name string) error {
	ctx, err := c.activeContext()
	if err != nil {
		return err
	}
	if ctx.Mode == name {
		return jinerr.New(jinerr.KindRouting, "mode %q is active; switch modes before deleting it", name).WithPath(name)
	}
	return c.deleteLayerAndDescendants(fmt.Sprintf("%s/mode/%s", layersRoot, name))
}

func (c *Core) deleteLayerAndDescendants(prefix string) error {
	refs, err := c.st.ListRefsByGlob(prefix + "/**")
	if err != nil {
		return err
	}
	deleted := map[string]bool{}
	for _, ref := range refs {
		if err := c.st.DeleteRef(ref.Name); err != nil {
			return err
		}
		deleted[ref.Name] = true
	}
	if !deleted[prefix] {
		if err := c.st.DeleteRef(prefix); err != nil {
			return err
		}
	}
	return nil
}

// ListModes returns every distinct mode name referenced anywhere under
// refs/jin/layers/mode/, sorted.
func (c *Core) ListModes() ([]string, error) {
	refs, err := c.st.ListRefsByGlob(layersRoot + "/mode/**")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, ref := range refs {
		rest := strings.TrimPrefix(ref.Name, layersRoot+"/mode/")
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			seen[rest] = true
		}
	}
	return sortedSet(seen), nil
}

// CreateScope creates a new ScopeBase layer, mirroring CreateMode.
func (c *Core) CreateScope(name string) error {
	l := layer.NewScope(name)
	ref, err := c.st.GetRef(l.RefPath())
	if err != nil {
		return err
	}
	if ref != nil {
		return jinerr.New(jinerr.KindAlreadyExists, "scope %q already exists", name).WithPath(l.RefPath())
	}
	return c.emptyTreeCommit(l.RefPath(), "Jin: create scope "+name)
}

// DeleteScope deletes a ScopeBase layer, refusing if the scope is active in
// the Project Context.
func (c *Core) DeleteScope(name string) error {
	ctx, err := c.activeContext()
	if err != nil {
		return err
	}
	if ctx.Scope == name {
		return jinerr.New(jinerr.KindRouting, "scope %q is active; switch scopes before deleting it", name).WithPath(name)
	}
	l := layer.NewScope(name)
	return c.st.DeleteRef(l.RefPath())
}

// ListScopes returns every distinct untethered scope name under
// refs/jin/layers/scope/, sorted.
func (c *Core) ListScopes() ([]string, error) {
	refs, err := c.st.ListRefsByGlob(layersRoot + "/scope/**")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, ref := range refs {
		rest := strings.TrimPrefix(ref.Name, layersRoot+"/scope/")
		seen[layer.UnescapeScope(rest)] = true
	}
	return sortedSet(seen), nil
}

// UseMode switches the Project Context's active mode, routing subsequent
// Mode/ModeScope/ModeProject/ModeScopeProject stages to it (spec.md §3.5).
// An empty name clears the active mode.
func (c *Core) UseMode(name string) error {
	ctx, err := workspace.LoadContext(c.workspaceRoot)
	if err != nil {
		return err
	}
	ctx.Mode = name
	return ctx.Save(c.workspaceRoot)
}

// UseScope switches the Project Context's active scope. An empty name
// clears the active scope.
func (c *Core) UseScope(name string) error {
	ctx, err := workspace.LoadContext(c.workspaceRoot)
	if err != nil {
		return err
	}
	ctx.Scope = name
	return ctx.Save(c.workspaceRoot)
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
