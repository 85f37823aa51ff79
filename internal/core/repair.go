package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edelwud/jin/internal/ignoreblock"
	"github.com/edelwud/jin/internal/layermap"
	"github.com/edelwud/jin/internal/staging"
	"github.com/edelwud/jin/internal/txn"
)

// RepairResult reports what repair found (and, unless check-only, fixed) in
// each of the four categories SPEC_FULL.md §4 names.
type RepairResult struct {
	OrphanReservations []string
	MissingFiles       []string
	LayerMapRebuilt    bool
	IgnoreBlockFixed   bool
}

// Repair diagnoses and, unless checkOnly, fixes: orphan transaction
// reservations, staged entries whose workspace file vanished, a
// missing/corrupted .jinmap, and a missing/corrupted managed ignore block
// (spec.md §6.3, SPEC_FULL.md §4).
func (c *Core) Repair(dryRun, checkOnly bool) (*RepairResult, error) {
	skipWrite := dryRun || checkOnly
	result := &RepairResult{}

	orphans, err := txn.RepairOrphanReservations(c.st, skipWrite)
	if err != nil {
		return nil, fmt.Errorf("repair orphan reservations: %w", err)
	}
	result.OrphanReservations = orphans

	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, entry := range idx.IterAll() {
		if _, err := os.Stat(filepath.Join(c.workspaceRoot, entry.Path)); os.IsNotExist(err) {
			missing = append(missing, entry.Path)
		}
	}
	result.MissingFiles = missing
	if !skipWrite && len(missing) > 0 {
		for _, path := range missing {
			idx.Remove(path)
		}
		if err := idx.Save(c.workspaceRoot); err != nil {
			return nil, err
		}
	}

	needsRebuild := false
	if _, err := os.Stat(layermap.Path(c.workspaceRoot)); os.IsNotExist(err) {
		needsRebuild = true
	} else if _, err := layermap.Load(c.workspaceRoot); err != nil {
		needsRebuild = true
	}
	result.LayerMapRebuilt = needsRebuild
	if !skipWrite && needsRebuild {
		lm, err := layermap.Rebuild(c.st)
		if err != nil {
			return nil, fmt.Errorf("rebuild layer-file map: %w", err)
		}
		if err := lm.Save(c.workspaceRoot); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(filepath.Join(c.workspaceRoot, ".git")); err == nil {
		present, err := ignoreblock.IsPresent(c.workspaceRoot)
		if err != nil {
			return nil, err
		}
		result.IgnoreBlockFixed = !present
		if !skipWrite && !present {
			if err := ignoreblock.Ensure(c.workspaceRoot, nil); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
