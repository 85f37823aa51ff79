package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/staging"
	"github.com/edelwud/jin/internal/value"
)

// DiffKind tags one structural difference between a staged entry's layer
// content and its new workspace content.
type DiffKind int

const (
	Added DiffKind = iota
	Removed
	Changed
)

func (k DiffKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "changed"
	}
}

// DiffOp is one structural difference at a dotted key path within the value.
type DiffOp struct {
	Path string
	Kind DiffKind
	Old  value.Value
	New  value.Value
}

// DiffStaged compares a staged entry's current workspace content against the
// same path's content already committed in the entry's target layer,
// structurally rather than textually (SPEC_FULL.md §4, `commands/diff.rs`).
func (c *Core) DiffStaged(path string) ([]DiffOp, error) {
	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}
	relPath, err := c.relWorkspacePath(path)
	if err != nil {
		return nil, err
	}
	entry, ok := idx.Get(relPath)
	if !ok {
		return nil, jinerr.New(jinerr.KindNotFound, "%s is not staged", relPath).WithPath(relPath)
	}

	format := value.DetectFormat(relPath)

	newData, err := os.ReadFile(filepath.Join(c.workspaceRoot, relPath))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	newVal, err := value.Parse(format, newData)
	if err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", relPath, err)
	}

	oldData, found, err := c.findLayerBlob(entry.Layer.RefPath(), relPath)
	if err != nil {
		return nil, err
	}
	oldVal := value.Null()
	if found {
		oldVal, err = value.Parse(format, oldData)
		if err != nil {
			return nil, fmt.Errorf("parse committed %s: %w", relPath, err)
		}
	}

	var ops []DiffOp
	diffValues(relPath, oldVal, newVal, &ops)
	return ops, nil
}

// findLayerBlob resolves refPath to its current tree and reads the blob at
// treePath, if any.
func (c *Core) findLayerBlob(refPath, treePath string) ([]byte, bool, error) {
	ref, err := c.st.GetRef(refPath)
	if err != nil {
		return nil, false, err
	}
	if ref == nil {
		return nil, false, nil
	}
	commit, err := c.st.FindCommit(ref.Target)
	if err != nil {
		return nil, false, err
	}
	tree, err := c.st.FindTree(commit.TreeHash)
	if err != nil {
		return nil, false, err
	}
	file, err := tree.File(treePath)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, false, err
	}
	return []byte(contents), true, nil
}

// diffValues recursively compares old and new, reporting added/removed map
// keys and changed leaves at dotted key paths rooted at prefix. Non-map
// values that differ are reported as a single Changed op at prefix.
func diffValues(prefix string, oldVal, newVal value.Value, ops *[]DiffOp) {
	if oldVal.Kind() == value.KindMap && newVal.Kind() == value.KindMap {
		diffMaps(prefix, oldVal, newVal, ops)
		return
	}
	if !oldVal.Equal(newVal) {
		*ops = append(*ops, DiffOp{Path: prefix, Kind: Changed, Old: oldVal, New: newVal})
	}
}

func diffMaps(prefix string, oldVal, newVal value.Value, ops *[]DiffOp) {
	oldMap, newMap := oldVal.Map(), newVal.Map()
	seen := map[string]bool{}

	var keys []string
	for pair := oldMap.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	for pair := newMap.Oldest(); pair != nil; pair = pair.Next() {
		if !contains(keys, pair.Key) {
			keys = append(keys, pair.Key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		ov, oOK := oldMap.Get(key)
		nv, nOK := newMap.Get(key)
		switch {
		case oOK && !nOK:
			*ops = append(*ops, DiffOp{Path: path, Kind: Removed, Old: ov})
		case !oOK && nOK:
			*ops = append(*ops, DiffOp{Path: path, Kind: Added, New: nv})
		default:
			diffValues(path, ov, nv, ops)
		}
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
