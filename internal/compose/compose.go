// Package compose implements the Layer Composer (spec.md §4.I): reads every
// applicable layer's tree lowest-precedence first, parses each file by its
// format, and deep-merges structured files while flagging textual
// conflicts for the Paused-Apply Protocol.
package compose

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/merge"
	"github.com/edelwud/jin/internal/store"
	"github.com/edelwud/jin/internal/value"
)

// MergedFile is one composed output file (spec.md §4.I).
type MergedFile struct {
	Value  value.Value
	Format value.Format
}

// Contribution is one layer's raw bytes for a path, kept so the Paused-Apply
// Protocol can render conflict markers with both sides intact.
type Contribution struct {
	Layer layer.Layer
	Bytes []byte
}

// Result is Compose's output: the merged file set, any textual conflicts,
// and the raw per-layer contributions behind every path (needed to build
// `.jinmerge` markers for conflicting ones).
type Result struct {
	Files         map[string]MergedFile
	Conflicts     []string
	Contributions map[string][]Contribution
}

// Compose reads activeLayers (precedence ascending) from st and merges their
// contents into a single output set (spec.md §4.I).
func Compose(st *store.Store, activeLayers []layer.Layer, mergeCfg merge.Config) (*Result, error) {
	firstFormat := map[string]value.Format{}
	contributions := map[string][]Contribution{}
	var pathOrder []string

	for _, l := range activeLayers {
		ref, err := st.GetRef(l.RefPath())
		if err != nil {
			return nil, fmt.Errorf("resolve ref for %s: %w", l.RefPath(), err)
		}
		if ref == nil {
			continue
		}
		commit, err := st.FindCommit(ref.Target)
		if err != nil {
			return nil, fmt.Errorf("find commit for %s: %w", l.RefPath(), err)
		}

		err = st.WalkTree(commit.TreeHash, func(path string, entry object.TreeEntry) error {
			if entry.Mode != filemode.Regular && entry.Mode != filemode.Executable {
				return nil // skip non-blob entries (spec.md §4.I step 1)
			}
			data, err := st.FindBlob(entry.Hash)
			if err != nil {
				return fmt.Errorf("read blob %s at %s: %w", entry.Hash, path, err)
			}
			if _, ok := firstFormat[path]; !ok {
				firstFormat[path] = value.DetectFormat(path)
				pathOrder = append(pathOrder, path)
			}
			contributions[path] = append(contributions[path], Contribution{Layer: l, Bytes: data})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk tree for %s: %w", l.RefPath(), err)
		}
	}

	sort.Strings(pathOrder)

	result := &Result{
		Files:         map[string]MergedFile{},
		Contributions: contributions,
	}
	for _, path := range pathOrder {
		format := firstFormat[path]
		contribs := contributions[path]

		if !format.Structured() {
			merged, conflicted := mergeText(contribs)
			result.Files[path] = MergedFile{Value: merged, Format: format}
			if conflicted {
				result.Conflicts = append(result.Conflicts, path)
			}
			continue
		}

		var acc value.Value
		for i, c := range contribs {
			parsed, err := value.Parse(format, c.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parse %s (layer %s): %w", path, c.Layer.String(), err)
			}
			if i == 0 {
				acc = parsed
				continue
			}
			merged, err := merge.Merge(acc, parsed, mergeCfg)
			if err != nil {
				return nil, fmt.Errorf("merge %s: %w", path, err)
			}
			acc = merged
		}
		result.Files[path] = MergedFile{Value: acc, Format: format}
	}

	return result, nil
}

// mergeText applies the higher-layer-wins fallback for non-structured files
// and reports whether two layers contributed non-identical bytes (spec.md
// §4.I step 4, §8 scenario S5).
func mergeText(contribs []Contribution) (value.Value, bool) {
	if len(contribs) == 0 {
		return value.Str(""), false
	}
	conflicted := false
	for i := 1; i < len(contribs); i++ {
		if !bytes.Equal(contribs[i-1].Bytes, contribs[i].Bytes) {
			conflicted = true
		}
	}
	winner := contribs[len(contribs)-1].Bytes
	return value.Str(string(winner)), conflicted
}
