// Package commit implements the Commit Pipeline (spec.md §4.H): orchestrates
// the validator, per-layer tree/commit construction, the transaction
// manager, and the Layer-File Map / audit log updates that follow a
// successful transaction.
package commit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/google/uuid"

	"github.com/edelwud/jin/internal/audit"
	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/layermap"
	"github.com/edelwud/jin/internal/staging"
	"github.com/edelwud/jin/internal/store"
	"github.com/edelwud/jin/internal/txn"
	"github.com/edelwud/jin/internal/validator"
)

// DefaultAuthorName and DefaultAuthorEmail back every commit unless the
// caller overrides them (spec.md §4.H step 3).
const (
	DefaultAuthorName  = "Jin"
	DefaultAuthorEmail = "jin@local"
)

// Options parameterises a single commit-pipeline invocation.
type Options struct {
	Message     string
	AllowEmpty  bool
	AuthorName  string
	AuthorEmail string
	User        string // for the audit record
	MaxFileSize int64  // 0 falls back to validator.MaxFileSize
}

// Result summarises a successful commit across every layer touched.
type Result struct {
	TransactionID uuid.UUID
	LayerCommits  map[string]store.Oid // keyed by layer ref path
	Files         []string
}

// ValidationFailed wraps the validator's accumulated errors as the
// top-level error the caller sees when step 1 rejects the index (spec.md
// §4.H step 1, §7).
type ValidationFailed struct {
	Errors []*jinerr.Error
}

func (e *ValidationFailed) Error() string {
	return fmt.Sprintf("validation failed with %d error(s): %v", len(e.Errors), e.Errors[0])
}

// Execute runs the full pipeline: validate, build per-layer trees and
// commits, commit the transaction, then update the Layer-File Map and
// audit log (spec.md §4.H).
func Execute(st *store.Store, idx *staging.Index, workspaceRoot string, ctx layer.Context, opts Options) (*Result, error) {
	if idx.IsEmpty() && !opts.AllowEmpty {
		return nil, jinerr.New(jinerr.KindNotFound, "nothing staged").WithHint("stage files with jin add before committing")
	}

	res, err := validator.Validate(idx, workspaceRoot, opts.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("run validator: %w", err)
	}
	if !res.OK() {
		return nil, &ValidationFailed{Errors: res.Errors}
	}

	authorName, authorEmail := opts.AuthorName, opts.AuthorEmail
	if authorName == "" {
		authorName = DefaultAuthorName
	}
	if authorEmail == "" {
		authorEmail = DefaultAuthorEmail
	}
	sig := st.Signature(authorName, authorEmail)

	tx := txn.Begin(st)
	layerCommits := map[string]store.Oid{}
	layerParents := map[string]store.Oid{}
	var allFiles []string

	for _, l := range sortedLayers(idx.Layers()) {
		entries := idx.EntriesByLayer(l)

		parentOid, parentTree, err := currentHead(st, l)
		if err != nil {
			return nil, fmt.Errorf("resolve current head for %s: %w", l.RefPath(), err)
		}

		treeInputs, err := buildTreeInputs(st, parentTree, entries, workspaceRoot)
		if err != nil {
			return nil, err
		}

		treeOid, err := st.MakeTree(treeInputs)
		if err != nil {
			return nil, fmt.Errorf("build tree for %s: %w", l.RefPath(), err)
		}

		var parents []store.Oid
		if parentOid != store.ZeroOid {
			parents = []store.Oid{parentOid}
		}
		msg := opts.Message
		if msg == "" {
			msg = "Jin commit to layer: " + l.String()
		}
		commitOid, err := st.CreateCommit("", msg, sig, sig, treeOid, parents)
		if err != nil {
			return nil, fmt.Errorf("create commit for %s: %w", l.RefPath(), err)
		}

		if err := tx.AddLayerUpdate(l, commitOid); err != nil {
			return nil, err
		}
		layerCommits[l.RefPath()] = commitOid
		layerParents[l.RefPath()] = parentOid
		for _, e := range entries {
			allFiles = append(allFiles, e.Path)
		}
	}

	if err := tx.Prepare(); err != nil {
		return nil, fmt.Errorf("prepare transaction: %w", err)
	}
	txID, err := tx.Commit()
	if err != nil {
		return nil, err
	}

	lm, err := layermap.Load(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("load layer-file map: %w", err)
	}
	for refPath := range layerCommits {
		l := findLayer(idx.Layers(), refPath)
		for _, e := range idx.EntriesByLayer(l) {
			if e.Status.Has(staging.StatusRemoved) {
				lm.RemoveMapping(e.Path)
			} else {
				lm.AddMapping(refPath, e.Path)
			}
		}
	}
	if err := lm.Save(workspaceRoot); err != nil {
		return nil, fmt.Errorf("save layer-file map: %w", err)
	}

	user := opts.User
	if user == "" {
		user = authorName
	}
	for refPath, commitOid := range layerCommits {
		l := findLayer(idx.Layers(), refPath)
		var parentStr string
		if parentParent := layerParents[refPath]; parentParent != store.ZeroOid {
			parentStr = parentParent.String()
		}
		entry := audit.NewEntry(user, ctx.Project, ctx, l, pathsForLayer(idx, l), parentStr, commitOid.String())
		if err := audit.Append(st.Path(), entry); err != nil {
			return nil, fmt.Errorf("append audit log: %w", err)
		}
	}

	idx.Clear()
	if err := idx.Save(workspaceRoot); err != nil {
		return nil, fmt.Errorf("persist cleared staging index: %w", err)
	}

	sort.Strings(allFiles)
	return &Result{TransactionID: txID, LayerCommits: layerCommits, Files: allFiles}, nil
}

func sortedLayers(layers []layer.Layer) []layer.Layer {
	out := append([]layer.Layer(nil), layers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Precedence() < out[j].Precedence() })
	return out
}

func findLayer(layers []layer.Layer, refPath string) layer.Layer {
	for _, l := range layers {
		if l.RefPath() == refPath {
			return l
		}
	}
	return layer.Layer{}
}

func pathsForLayer(idx *staging.Index, l layer.Layer) []string {
	var out []string
	for _, e := range idx.EntriesByLayer(l) {
		out = append(out, e.Path)
	}
	return out
}

// currentHead resolves l's current ref, if any, peeling it to its commit
// and tree so new trees can be built on top of what's already committed.
func currentHead(st *store.Store, l layer.Layer) (store.Oid, *object.Tree, error) {
	ref, err := st.GetRef(l.RefPath())
	if err != nil {
		return store.ZeroOid, nil, err
	}
	if ref == nil {
		return store.ZeroOid, nil, nil
	}
	commit, err := st.FindCommit(ref.Target)
	if err != nil {
		return store.ZeroOid, nil, err
	}
	tree, err := st.FindTree(commit.TreeHash)
	if err != nil {
		return store.ZeroOid, nil, err
	}
	return ref.Target, tree, nil
}

// buildTreeInputs starts from the layer's existing tree (if any) and
// overlays the staged batch: new blobs for staged/modified entries, and
// omission for entries whose status carries StatusRemoved.
func buildTreeInputs(st *store.Store, parentTree *object.Tree, entries []staging.Entry, workspaceRoot string) ([]store.TreeEntryInput, error) {
	byPath := map[string]store.TreeEntryInput{}
	if parentTree != nil {
		err := st.WalkTree(parentTree.Hash, func(path string, e object.TreeEntry) error {
			byPath[path] = store.TreeEntryInput{Path: path, Blob: e.Hash, Mode: e.Mode}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk parent tree: %w", err)
		}
	}

	for _, e := range entries {
		if e.Status.Has(staging.StatusRemoved) {
			delete(byPath, e.Path)
			continue
		}
		abspath := filepath.Join(workspaceRoot, e.Path)
		data, err := os.ReadFile(abspath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Path, err)
		}
		blobOid, err := st.CreateBlob(data)
		if err != nil {
			return nil, fmt.Errorf("create blob for %s: %w", e.Path, err)
		}
		byPath[filepath.ToSlash(e.Path)] = store.TreeEntryInput{
			Path: filepath.ToSlash(e.Path),
			Blob: blobOid,
			Mode: filemode.Regular,
		}
	}

	out := make([]store.TreeEntryInput, 0, len(byPath))
	for _, in := range byPath {
		out = append(out, in)
	}
	return out, nil
}
