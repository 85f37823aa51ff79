package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/edelwud/jin/internal/atomicfile"
)

// MetadataPath returns <workspace>/.jin/workspace-metadata.yaml.
func MetadataPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, jinDir, "workspace-metadata.yaml")
}

// Metadata records the last apply's outcome so a subsequent apply can detect
// a dirty workspace (spec.md §3.6): a file whose on-disk content hash no
// longer matches what was last written was edited outside jin.
type Metadata struct {
	// FileHashes maps workspace-relative path to the SHA-256 hex digest of
	// the content last written by apply.
	FileHashes map[string]string `yaml:"file_hashes"`
	// ActiveLayers names the layers (by String()) composed into the last apply.
	ActiveLayers []string `yaml:"active_layers"`
}

// NewMetadata returns empty metadata, as after init.
func NewMetadata() *Metadata {
	return &Metadata{FileHashes: map[string]string{}}
}

// LoadMetadata reads Workspace Metadata, returning empty metadata if absent.
func LoadMetadata(workspaceRoot string) (*Metadata, error) {
	data, err := os.ReadFile(MetadataPath(workspaceRoot))
	if errors.Is(err, os.ErrNotExist) {
		return NewMetadata(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace metadata: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse workspace metadata: %w", err)
	}
	if m.FileHashes == nil {
		m.FileHashes = map[string]string{}
	}
	return &m, nil
}

// Save persists Workspace Metadata atomically.
func (m *Metadata) Save(workspaceRoot string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal workspace metadata: %w", err)
	}
	return atomicfile.Write(MetadataPath(workspaceRoot), data, 0o644)
}

// IsDirty reports whether path's current on-disk content hash differs from
// the hash recorded at the last apply (or the file isn't tracked at all).
func (m *Metadata) IsDirty(path, currentHash string) bool {
	recorded, ok := m.FileHashes[path]
	return !ok || recorded != currentHash
}
