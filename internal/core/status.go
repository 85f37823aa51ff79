package core

import (
	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/pausedapply"
	"github.com/edelwud/jin/internal/staging"
	"github.com/edelwud/jin/internal/workspace"
)

// LayerStatus summarises one layer's staged-entry counts by status bit.
type LayerStatus struct {
	Layer    layer.Layer
	Staged   int
	Modified int
	Removed  int
	New      int
}

// StatusResult is the read-only composition of Staging Index + Workspace
// Metadata + Paused-Apply State the `status` command prints (SPEC_FULL.md §4).
type StatusResult struct {
	Context         layer.Context
	Layers          []LayerStatus
	TotalStaged     int
	PausedApply     bool
	PausedConflicts []string
	WorkspaceStale  bool
}

// Status reports staging index state per layer, whether a paused-apply is
// pending, and whether the active layer set has drifted since the last
// apply (so the workspace may be stale).
func (c *Core) Status() (*StatusResult, error) {
	ctx, err := c.activeContext()
	if err != nil {
		return nil, err
	}

	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{Context: ctx, TotalStaged: idx.Len()}
	for _, l := range idx.Layers() {
		ls := LayerStatus{Layer: l}
		for _, e := range idx.EntriesByLayer(l) {
			switch {
			case e.Status.Has(staging.StatusRemoved):
				ls.Removed++
			case e.Status.Has(staging.StatusStaged):
				ls.Staged++
			case e.Status.Has(staging.StatusModified):
				ls.Modified++
			}
			if e.Status.Has(staging.StatusNew) {
				ls.New++
			}
		}
		result.Layers = append(result.Layers, ls)
	}

	paused, err := pausedapply.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}
	if paused != nil {
		result.PausedApply = true
		result.PausedConflicts = paused.ConflictFiles
	}

	meta, err := workspace.LoadMetadata(c.workspaceRoot)
	if err != nil {
		return nil, err
	}
	active := layer.ApplicableLayers(ctx)
	result.WorkspaceStale = !sameLayerSet(meta.ActiveLayers, active)

	return result, nil
}

func sameLayerSet(recorded []string, active []layer.Layer) bool {
	if len(recorded) != len(active) {
		return false
	}
	want := map[string]bool{}
	for _, l := range active {
		want[l.String()] = true
	}
	for _, r := range recorded {
		if !want[r] {
			return false
		}
	}
	return true
}
