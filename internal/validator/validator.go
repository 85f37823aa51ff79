// Package validator implements the Pre-Commit Validator (spec.md §4.F):
// symlink/binary/size/tracking checks run over every staged entry, errors
// accumulating across the whole scan rather than aborting on the first
// failure.
package validator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edelwud/jin/internal/gitstatus"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/staging"
)

// MaxFileSize is the 10 MiB staged-file size limit (spec.md §4.F rule 5).
const MaxFileSize = 10 << 20

// Result holds every violation found across the scanned entries. Errors are
// fatal (the entry cannot be committed); Warnings are informational only.
type Result struct {
	Errors   []*jinerr.Error
	Warnings []*jinerr.Error
}

// OK reports whether the index is committable: no fatal errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Validate scans every entry in idx against the five checks from spec.md
// §4.F, in order, accumulating every violation rather than stopping at the
// first (so the caller can surface them all at once). maxFileSize of 0
// falls back to MaxFileSize.
func Validate(idx *staging.Index, workspaceRoot string, maxFileSize int64) (Result, error) {
	tracker, err := gitstatus.Open(workspaceRoot)
	if err != nil {
		return Result{}, fmt.Errorf("open git status: %w", err)
	}
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}

	var res Result
	for _, entry := range idx.IterAll() {
		res.Errors = append(res.Errors, validateEntry(entry, workspaceRoot, tracker, maxFileSize)...)
	}
	return res, nil
}

func validateEntry(entry staging.Entry, workspaceRoot string, tracker *gitstatus.Checker, maxFileSize int64) []*jinerr.Error {
	// A removal entry deletes entry.Path from the layer's tracked tree; it
	// carries no content, and the file need not (and after `rm --force`,
	// will not) still exist in the workspace, so none of the on-disk checks
	// below apply to it.
	if entry.Status.Has(staging.StatusRemoved) {
		return nil
	}

	var errs []*jinerr.Error
	abspath := filepath.Join(workspaceRoot, entry.Path)

	info, err := os.Lstat(abspath)
	if err != nil {
		return []*jinerr.Error{
			jinerr.New(jinerr.KindValidation, "FileNotFound: %v", err).WithPath(entry.Path).WithHint("the file is no longer on disk; unstage it or restore it"),
		}
	}

	if info.Mode()&os.ModeSymlink != 0 {
		errs = append(errs, jinerr.New(jinerr.KindValidation, "SymlinkNotSupported").WithPath(entry.Path).WithHint("stage the file's real content, not a symlink"))
	}

	data, readErr := os.ReadFile(abspath)
	if readErr == nil {
		if bytes.IndexByte(data, 0) != -1 {
			errs = append(errs, jinerr.New(jinerr.KindValidation, "BinaryFileNotSupported").WithPath(entry.Path).WithHint("jin tracks text-based configuration only"))
		}
	}

	if tracked, terr := tracker.IsTracked(entry.Path); terr == nil && tracked {
		errs = append(errs, jinerr.New(jinerr.KindValidation, "GitTrackedFile").WithPath(entry.Path).WithHint("jin manages files outside the project's own history; untrack it from git first"))
	}

	if info.Size() > maxFileSize {
		errs = append(errs, jinerr.New(jinerr.KindValidation, "FileSizeLimit: %d bytes exceeds %d", info.Size(), maxFileSize).WithPath(entry.Path))
	}

	return errs
}
