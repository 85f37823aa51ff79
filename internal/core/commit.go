package core

import (
	"github.com/edelwud/jin/internal/commit"
	"github.com/edelwud/jin/internal/staging"
)

// Commit invokes the Commit Pipeline over the current staging index
// (spec.md §4.H), defaulting author identity and the staged-file size limit
// from the bound configuration when the caller leaves them unset.
func (c *Core) Commit(opts commit.Options) (*commit.Result, error) {
	idx, err := staging.Load(c.workspaceRoot)
	if err != nil {
		return nil, err
	}
	ctx, err := c.activeContext()
	if err != nil {
		return nil, err
	}
	if opts.AuthorName == "" {
		opts.AuthorName = c.cfg.Author.Name
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = c.cfg.Author.Email
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = c.cfg.Commit.MaxFileSize
	}
	return commit.Execute(c.st, idx, c.workspaceRoot, ctx, opts)
}
