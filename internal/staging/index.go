package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edelwud/jin/internal/atomicfile"
	"github.com/edelwud/jin/internal/layer"
)

// IndexPath returns <workspace>/.jin/staging/index.json.
func IndexPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".jin", "staging", "index.json")
}

// Index is the ordered path->entry map plus its derived layer->paths bucket
// (spec.md §3.4). The derived bucket is never persisted; Load rebuilds it.
type Index struct {
	order   []string
	entries map[string]Entry
	byLayer map[string]map[string]bool
}

// New returns an empty staging index.
func New() *Index {
	return &Index{
		entries: map[string]Entry{},
		byLayer: map[string]map[string]bool{},
	}
}

func layerKey(l layer.Layer) string {
	return l.String()
}

// Add replaces any existing entry at entry.Path, removing it from its old
// layer bucket first, then inserts into the primary map and the new layer's
// bucket (spec.md §4.E).
func (idx *Index) Add(entry Entry) {
	if old, ok := idx.entries[entry.Path]; ok {
		idx.removeFromBucket(layerKey(old.Layer), entry.Path)
	} else {
		idx.order = append(idx.order, entry.Path)
	}
	idx.entries[entry.Path] = entry
	idx.addToBucket(layerKey(entry.Layer), entry.Path)
}

// Remove deletes the entry at path, if any, and returns it.
func (idx *Index) Remove(path string) (Entry, bool) {
	entry, ok := idx.entries[path]
	if !ok {
		return Entry{}, false
	}
	delete(idx.entries, path)
	idx.removeFromBucket(layerKey(entry.Layer), path)
	for i, p := range idx.order {
		if p == path {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return entry, true
}

// Get returns the entry at path, if staged.
func (idx *Index) Get(path string) (Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Set overwrites the entry at path in place (path must already be the
// entry's own path); used for in-place status transitions.
func (idx *Index) Set(entry Entry) {
	idx.Add(entry)
}

// EntriesByLayer returns every entry currently routed to l, in index order.
func (idx *Index) EntriesByLayer(l layer.Layer) []Entry {
	bucket := idx.byLayer[layerKey(l)]
	var out []Entry
	for _, p := range idx.order {
		if bucket[p] {
			out = append(out, idx.entries[p])
		}
	}
	return out
}

// IterAll returns every entry in index (insertion) order.
func (idx *Index) IterAll() []Entry {
	out := make([]Entry, 0, len(idx.order))
	for _, p := range idx.order {
		out = append(out, idx.entries[p])
	}
	return out
}

// Layers returns the distinct layers with at least one staged entry.
func (idx *Index) Layers() []layer.Layer {
	seen := map[string]layer.Layer{}
	for _, e := range idx.entries {
		seen[layerKey(e.Layer)] = e.Layer
	}
	out := make([]layer.Layer, 0, len(seen))
	for _, l := range seen {
		out = append(out, l)
	}
	return out
}

// Len returns the number of staged entries.
func (idx *Index) Len() int { return len(idx.entries) }

// IsEmpty reports whether the index has no staged entries.
func (idx *Index) IsEmpty() bool { return len(idx.entries) == 0 }

// Clear removes every entry.
func (idx *Index) Clear() {
	idx.order = nil
	idx.entries = map[string]Entry{}
	idx.byLayer = map[string]map[string]bool{}
}

func (idx *Index) addToBucket(key, path string) {
	b, ok := idx.byLayer[key]
	if !ok {
		b = map[string]bool{}
		idx.byLayer[key] = b
	}
	b[path] = true
}

func (idx *Index) removeFromBucket(key, path string) {
	b, ok := idx.byLayer[key]
	if !ok {
		return
	}
	delete(b, path)
	if len(b) == 0 {
		delete(idx.byLayer, key)
	}
}

// onDiskIndex is the JSON persistence shape: an ordered list, so reload
// reproduces insertion order without relying on Go's unordered map encoding.
type onDiskIndex struct {
	Entries []Entry `json:"entries"`
}

// Save writes the index as pretty JSON atomically (spec.md §4.E).
func (idx *Index) Save(workspaceRoot string) error {
	out := onDiskIndex{Entries: idx.IterAll()}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal staging index: %w", err)
	}
	return atomicfile.Write(IndexPath(workspaceRoot), data, 0o644)
}

// Load reads the on-disk index and rebuilds the derived layer bucket. A
// missing file yields an empty index, matching an uninitialised/fresh
// staging area.
func Load(workspaceRoot string) (*Index, error) {
	data, err := os.ReadFile(IndexPath(workspaceRoot))
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read staging index: %w", err)
	}
	var on onDiskIndex
	if err := json.Unmarshal(data, &on); err != nil {
		return nil, fmt.Errorf("parse staging index: %w", err)
	}
	idx := New()
	for _, e := range on.Entries {
		idx.Add(e)
	}
	return idx, nil
}
