// Package store is the Object Store Facade (spec.md §4.D): a thin, uniform
// interface over a bare, content-addressed Git repository, used by every
// higher layer (staging, transactions, the commit pipeline, the composer)
// for object and ref access.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
)

// Oid is a content hash identifying a blob, tree, or commit object.
type Oid = plumbing.Hash

// ZeroOid is the nil hash, used to mean "no parent" / "ref does not exist".
var ZeroOid = plumbing.ZeroHash

// Store wraps a bare Git repository and exposes the object/ref operations
// the rest of jin needs.
type Store struct {
	repo *git.Repository
	path string
}

// Open opens the bare repository at path, creating it (idempotently) if it
// doesn't yet exist (spec.md §4.D). Open has no default location of its own;
// the CLI passes <workspace>/.jin/repo unless --repo, the config file or
// JIN_REPO_PATH names another path, so there is no store shared under the
// home directory.
func Open(path string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(path, 0o755); mkErr != nil {
			return nil, fmt.Errorf("create repository dir: %w", mkErr)
		}
		repo, err = git.PlainInit(path, true)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}
	return &Store{repo: repo, path: path}, nil
}

// Path returns the repository's on-disk location.
func (s *Store) Path() string { return s.path }

// Signature returns a current-time author/committer signature.
func (s *Store) Signature(name, email string) object.Signature {
	return object.Signature{Name: name, Email: email, When: time.Now()}
}

// CreateBlob writes data as a blob object, idempotent by content (Git's
// content addressing already gives this for free).
func (s *Store) CreateBlob(data []byte) (Oid, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return ZeroOid, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return ZeroOid, err
	}
	if err := w.Close(); err != nil {
		return ZeroOid, err
	}
	return s.repo.Storer.SetEncodedObject(obj)
}

// FindBlob resolves a blob by oid and returns its content.
func (s *Store) FindBlob(oid Oid) ([]byte, error) {
	blob, err := object.GetBlob(s.repo.Storer, oid)
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", oid, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// FindTree resolves a tree object by oid.
func (s *Store) FindTree(oid Oid) (*object.Tree, error) {
	return object.GetTree(s.repo.Storer, oid)
}

// FindCommit resolves a commit object by oid.
func (s *Store) FindCommit(oid Oid) (*object.Commit, error) {
	return object.GetCommit(s.repo.Storer, oid)
}

// TreeEntryInput is one entry for MakeTree: a slash-separated path within
// the tree, the blob it points to, and its file mode.
type TreeEntryInput struct {
	Path string
	Blob Oid
	Mode filemode.FileMode
}

// MakeTree builds a (possibly multi-level) tree from a flat list of
// slash-separated paths, creating intermediate subtrees as needed, and
// returns the root tree's oid (spec.md §4.D make_tree).
func (s *Store) MakeTree(entries []TreeEntryInput) (Oid, error) {
	root := newTreeNode()
	for _, e := range entries {
		segments := strings.Split(e.Path, "/")
		root.insert(segments, e.Blob, e.Mode)
	}
	return s.writeTreeNode(root)
}

// treeNode is an in-memory staging area for building a nested tree before
// any subtree is actually encoded into the object store.
type treeNode struct {
	blobs map[string]TreeEntryInput
	dirs  map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{blobs: map[string]TreeEntryInput{}, dirs: map[string]*treeNode{}}
}

func (n *treeNode) insert(segments []string, blob Oid, mode filemode.FileMode) {
	if len(segments) == 1 {
		n.blobs[segments[0]] = TreeEntryInput{Path: segments[0], Blob: blob, Mode: mode}
		return
	}
	dir, ok := n.dirs[segments[0]]
	if !ok {
		dir = newTreeNode()
		n.dirs[segments[0]] = dir
	}
	dir.insert(segments[1:], blob, mode)
}

func (s *Store) writeTreeNode(n *treeNode) (Oid, error) {
	var entries []object.TreeEntry
	for name, b := range n.blobs {
		entries = append(entries, object.TreeEntry{Name: name, Mode: b.Mode, Hash: b.Blob})
	}
	for name, dir := range n.dirs {
		sub, err := s.writeTreeNode(dir)
		if err != nil {
			return ZeroOid, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: sub})
	}
	sortTreeEntries(entries)

	tree := &object.Tree{Entries: entries}
	obj := s.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return ZeroOid, err
	}
	return s.repo.Storer.SetEncodedObject(obj)
}

// sortTreeEntries orders entries the way Git requires: byte-wise by name,
// except directory names sort as though suffixed with "/".
func sortTreeEntries(entries []object.TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})
}

func treeSortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// CreateCommit creates a commit object over tree with the given parents,
// and optionally force-creates refname pointing at it. Returns the new
// commit's oid.
func (s *Store) CreateCommit(refname, message string, author, committer object.Signature, tree Oid, parents []Oid) (Oid, error) {
	commit := &object.Commit{
		Author:       author,
		Committer:    committer,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return ZeroOid, err
	}
	oid, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return ZeroOid, err
	}
	if refname != "" {
		if err := s.CreateRef(refname, oid, true, "jin commit"); err != nil {
			return ZeroOid, err
		}
	}
	return oid, nil
}

// Reference is a named pointer to an object oid.
type Reference struct {
	Name   string
	Target Oid
}

// GetRef resolves a reference by full name, returning nil if it doesn't exist.
func (s *Store) GetRef(name string) (*Reference, error) {
	ref, err := s.repo.Storer.Reference(plumbing.ReferenceName(name))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Reference{Name: name, Target: ref.Hash()}, nil
}

// CreateRef creates or force-updates a reference. reflogMsg is currently
// informational only; go-git's bare storage does not persist reflogs.
func (s *Store) CreateRef(name string, oid Oid, force bool, reflogMsg string) error {
	refName := plumbing.ReferenceName(name)
	if !force {
		if existing, _ := s.repo.Storer.Reference(refName); existing != nil {
			return fmt.Errorf("ref %s already exists", name)
		}
	}
	return s.repo.Storer.SetReference(plumbing.NewHashReference(refName, oid))
}

// CheckAndSetReference atomically updates name from old to new, failing if
// the stored value no longer matches old (nil old means "must not exist";
// that case is checked just before the write rather than under its lock).
// This backs the Transaction Manager's CAS discipline (spec.md §4.G).
func (s *Store) CheckAndSetReference(name string, oldOid *Oid, newOid Oid) error {
	refName := plumbing.ReferenceName(name)
	newRef := plumbing.NewHashReference(refName, newOid)
	if oldOid == nil {
		existing, err := s.repo.Storer.Reference(refName)
		if err == nil && existing != nil {
			return fmt.Errorf("ref %s already exists", name)
		}
		if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return err
		}
		return s.repo.Storer.SetReference(newRef)
	}
	var oldRef *plumbing.Reference
	if oldOid != nil {
		oldRef = plumbing.NewHashReference(refName, *oldOid)
	}
	rs, ok := s.repo.Storer.(storer.ReferenceStorer)
	if !ok {
		return errors.New("storer does not support compare-and-swap reference updates")
	}
	return rs.CheckAndSetReference(newRef, oldRef)
}

// DeleteRef removes a reference. Deleting an absent reference is a no-op.
func (s *Store) DeleteRef(name string) error {
	err := s.repo.Storer.RemoveReference(plumbing.ReferenceName(name))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil
	}
	return err
}

// ListRefsByGlob returns every reference whose name matches a shell glob
// pattern (e.g. "refs/jin/layers/**").
func (s *Store) ListRefsByGlob(pattern string) ([]Reference, error) {
	iter, err := s.repo.Storer.IterReferences()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Reference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		if matchRefGlob(pattern, name) {
			out = append(out, Reference{Name: name, Target: ref.Hash()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// matchRefGlob supports a single trailing "**" wildcard matching any number
// of path segments, and "*" matching within a single segment, sufficient
// for jin's own reserved-namespace patterns.
func matchRefGlob(pattern, name string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return name == prefix || strings.HasPrefix(name, prefix+"/")
	}
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}

// WalkTree visits every blob entry under tree depth-first in the tree's
// on-disk (lexicographic, Git-sorted) order, passing the slash-joined path
// relative to tree's root. Directories are descended into, not visited.
func (s *Store) WalkTree(tree Oid, visit func(path string, entry object.TreeEntry) error) error {
	t, err := s.FindTree(tree)
	if err != nil {
		return err
	}
	return s.walkTreeNode(t, "", visit)
}

func (s *Store) walkTreeNode(t *object.Tree, prefix string, visit func(path string, entry object.TreeEntry) error) error {
	for _, entry := range t.Entries {
		path := entry.Name
		if prefix != "" {
			path = prefix + "/" + entry.Name
		}
		if entry.Mode == filemode.Dir {
			sub, err := object.GetTree(s.repo.Storer, entry.Hash)
			if err != nil {
				return fmt.Errorf("subtree %s at %s: %w", entry.Hash, path, err)
			}
			if err := s.walkTreeNode(sub, path, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(path, entry); err != nil {
			return err
		}
	}
	return nil
}
