package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/edelwud/jin/internal/atomicfile"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
)

// Export writes every file tracked by l's current tree into destDir,
// preserving relative paths (SPEC_FULL.md §4, `commands/export.rs`).
func (c *Core) Export(l layer.Layer, destDir string) ([]string, error) {
	ref, err := c.st.GetRef(l.RefPath())
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, jinerr.New(jinerr.KindNotFound, "layer %s has no commits", l.String()).WithPath(l.RefPath())
	}
	commit, err := c.st.FindCommit(ref.Target)
	if err != nil {
		return nil, err
	}

	var written []string
	err = c.st.WalkTree(commit.TreeHash, func(path string, entry object.TreeEntry) error {
		data, err := c.st.FindBlob(entry.Hash)
		if err != nil {
			return fmt.Errorf("read blob at %s: %w", path, err)
		}
		if err := atomicfile.Write(filepath.Join(destDir, path), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

// Import copies every regular file under srcDir into the workspace at the
// same relative path and stages it under flags' routed layer, equivalent to
// staging every file under a root with one routing target (SPEC_FULL.md §4,
// `commands/import.rs`).
func (c *Core) Import(srcDir string, flags RoutingFlags) ([]string, error) {
	var relPaths []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		dest := filepath.Join(c.workspaceRoot, rel)
		if err := atomicfile.Write(dest, data, 0o644); err != nil {
			return fmt.Errorf("copy %s into workspace: %w", rel, err)
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk import source %s: %w", srcDir, err)
	}

	if err := c.Stage(relPaths, flags); err != nil {
		return nil, err
	}
	return relPaths, nil
}
