// Package gitstatus answers one question for the Pre-Commit Validator
// (spec.md §4.F rule 4): is this workspace path already tracked by the
// project's own Git repository? It is adapted from the teacher's
// internal/git diff-detection client, reimplemented against go-git's
// worktree status instead of shelling out to the git binary, since go-git
// is already wired for the object store facade.
package gitstatus

import (
	"errors"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/format/index"
)

// Checker answers tracked-file queries against a single worktree's Git
// repository. A workspace that isn't a Git repository at all reports every
// path as untracked.
type Checker struct {
	repo *git.Repository
}

// Open opens the Git repository containing workspaceRoot, if any. A nil
// *Checker (not an error) is returned when workspaceRoot isn't a Git
// worktree; callers should treat that as "nothing is tracked".
func Open(workspaceRoot string) (*Checker, error) {
	repo, err := git.PlainOpenWithOptions(workspaceRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Checker{repo: repo}, nil
}

// IsTracked reports whether relPath (workspace-relative, forward-slash
// separated) is tracked by the project's Git repository in any state other
// than an untracked worktree file — i.e. it appears in the index, or the
// worktree status for it is anything but "Untracked" (spec.md §4.F rule 4).
func (c *Checker) IsTracked(relPath string) (bool, error) {
	if c == nil {
		return false, nil
	}
	wt, err := c.repo.Worktree()
	if err != nil {
		return false, err
	}
	st, err := wt.Status()
	if err != nil {
		return false, err
	}
	fileStatus, present := st[relPath]
	if !present {
		// go-git's Status map only contains entries that differ from the
		// index/HEAD pair in some way; absence alone doesn't mean
		// untracked, so fall back to checking the index directly.
		return c.inIndex(relPath)
	}
	return fileStatus.Staging != git.Untracked || fileStatus.Worktree != git.Untracked, nil
}

func (c *Checker) inIndex(relPath string) (bool, error) {
	idx, err := c.repo.Storer.Index()
	if err != nil {
		return false, err
	}
	_, err = idx.Entry(relPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, index.ErrEntryNotFound) {
		return false, nil
	}
	return false, err
}
