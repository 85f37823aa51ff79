// Package workspace implements the two pieces of workspace-local state that
// sit outside the object store: the Project Context (spec.md §3.5) and
// Workspace Metadata (spec.md §3.6), both workspace-scoped, neither a
// global.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v6"
	"go.yaml.in/yaml/v4"

	"github.com/edelwud/jin/internal/atomicfile"
)

// jinDir is the workspace-local state directory, relative to the workspace root.
const jinDir = ".jin"

// ContextPath returns <workspace>/.jin/context.
func ContextPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, jinDir, "context")
}

// Context is the active mode/scope for a workspace (spec.md §3.5).
type Context struct {
	Version int    `yaml:"version"`
	Mode    string `yaml:"mode,omitempty"`
	Scope   string `yaml:"scope,omitempty"`
}

// DefaultContext is written by init: no mode or scope active.
func DefaultContext() *Context {
	return &Context{Version: 1}
}

// LoadContext reads the Project Context, returning a default (not persisted)
// context if the file does not yet exist.
func LoadContext(workspaceRoot string) (*Context, error) {
	data, err := os.ReadFile(ContextPath(workspaceRoot))
	if errors.Is(err, os.ErrNotExist) {
		return DefaultContext(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	var ctx Context
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parse context: %w", err)
	}
	if ctx.Version == 0 {
		ctx.Version = 1
	}
	return &ctx, nil
}

// Save persists the Project Context atomically.
func (c *Context) Save(workspaceRoot string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	return atomicfile.Write(ContextPath(workspaceRoot), data, 0o644)
}

// DeriveProject names the workspace's project: the remote "origin" URL's
// basename if the workspace is a Git checkout with one configured, else the
// workspace directory's own name (spec.md §3.1).
func DeriveProject(workspaceRoot string) string {
	if repo, err := git.PlainOpen(workspaceRoot); err == nil {
		if remote, err := repo.Remote("origin"); err == nil {
			cfg := remote.Config()
			if len(cfg.URLs) > 0 {
				if name := basenameFromURL(cfg.URLs[0]); name != "" {
					return name
				}
			}
		}
	}
	return filepath.Base(filepath.Clean(workspaceRoot))
}

// basenameFromURL extracts a project name from a Git remote URL, stripping
// a trailing ".git" and any path/scheme prefix, for both
// "git@host:owner/repo.git" and "https://host/owner/repo.git" forms.
func basenameFromURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 && i+1 < len(url) {
		return url[i+1:]
	}
	return url
}
