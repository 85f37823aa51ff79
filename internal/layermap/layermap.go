// Package layermap implements the Layer-File Map (spec.md §3.9, §4.K/L): a
// derived index of which files belong to which layer, persisted at the
// workspace root and rebuildable at any time from the object store.
package layermap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v6/plumbing/object"
	"go.yaml.in/yaml/v4"

	"github.com/edelwud/jin/internal/atomicfile"
	"github.com/edelwud/jin/internal/store"
)

// Path returns <workspace>/.jinmap.
func Path(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".jinmap")
}

const layersGlob = "refs/jin/layers/**"

// Map is the ordered layer-ref-path -> sorted file list index (spec.md
// §3.9). It is a derived artefact: safe to discard and rebuild from the
// object store at any time.
type Map struct {
	GeneratedBy string              `yaml:"generated_by"`
	LastUpdated time.Time           `yaml:"last_updated"`
	Layers      map[string][]string `yaml:"layers"`
	order       []string
}

// New returns an empty map.
func New() *Map {
	return &Map{GeneratedBy: "jin", LastUpdated: time.Now(), Layers: map[string][]string{}}
}

// Load reads the on-disk map, returning an empty one if absent. A file that
// cannot be read or parsed is an error (the repair command treats that error
// as "needs rebuild").
func Load(workspaceRoot string) (*Map, error) {
	data, err := os.ReadFile(Path(workspaceRoot))
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read layer-file map: %w", err)
	}
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse layer-file map: %w", err)
	}
	if m.Layers == nil {
		m.Layers = map[string][]string{}
	}
	m.reindex()
	return &m, nil
}

func (m *Map) reindex() {
	m.order = make([]string, 0, len(m.Layers))
	for ref := range m.Layers {
		m.order = append(m.order, ref)
	}
	sort.Strings(m.order)
}

// Save persists the map atomically.
func (m *Map) Save(workspaceRoot string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal layer-file map: %w", err)
	}
	return atomicfile.Write(Path(workspaceRoot), data, 0o644)
}

// AddMapping inserts file into layerRef's bucket uniquely, in sorted order
// (spec.md §4.L).
func (m *Map) AddMapping(layerRef, file string) {
	files := m.Layers[layerRef]
	i := sort.SearchStrings(files, file)
	if i < len(files) && files[i] == file {
		return
	}
	files = append(files, "")
	copy(files[i+1:], files[i:])
	files[i] = file
	m.Layers[layerRef] = files
	m.touch()
}

// RemoveMapping removes file from every layer bucket, deleting any bucket
// that becomes empty (spec.md §4.L).
func (m *Map) RemoveMapping(file string) {
	for ref, files := range m.Layers {
		i := sort.SearchStrings(files, file)
		if i >= len(files) || files[i] != file {
			continue
		}
		files = append(files[:i], files[i+1:]...)
		if len(files) == 0 {
			delete(m.Layers, ref)
		} else {
			m.Layers[ref] = files
		}
	}
	m.touch()
}

func (m *Map) touch() { m.LastUpdated = time.Now() }

// Files returns the sorted file list for layerRef.
func (m *Map) Files(layerRef string) []string { return m.Layers[layerRef] }

// Rebuild regenerates the map from scratch by globbing refs/jin/layers/**
// and walking each layer's tree (spec.md §4.K/L).
func Rebuild(st *store.Store) (*Map, error) {
	refs, err := st.ListRefsByGlob(layersGlob)
	if err != nil {
		return nil, fmt.Errorf("list layer refs: %w", err)
	}
	m := New()
	for _, ref := range refs {
		commit, err := st.FindCommit(ref.Target)
		if err != nil {
			return nil, fmt.Errorf("find commit for %s: %w", ref.Name, err)
		}
		err = st.WalkTree(commit.TreeHash, func(path string, _ object.TreeEntry) error {
			m.AddMapping(ref.Name, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk tree for %s: %w", ref.Name, err)
		}
	}
	return m, nil
}
