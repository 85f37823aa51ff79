package store

import (
	"testing"

	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
)

func TestOpenCreatesBareRepoIdempotently(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if s1.Path() != s2.Path() {
		t.Fatalf("path mismatch: %s vs %s", s1.Path(), s2.Path())
	}
}

func TestCreateBlobIsContentAddressed(t *testing.T) {
	s := mustOpen(t)
	a, err := s.CreateBlob([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.CreateBlob([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("identical content produced different oids: %s vs %s", a, b)
	}

	got, err := s.FindBlob(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestMakeTreeNestedPaths(t *testing.T) {
	s := mustOpen(t)
	blob, err := s.CreateBlob([]byte("content"))
	if err != nil {
		t.Fatal(err)
	}

	treeOid, err := s.MakeTree([]TreeEntryInput{
		{Path: "a/b/c.json", Blob: blob, Mode: filemode.Regular},
		{Path: "a/d.json", Blob: blob, Mode: filemode.Regular},
		{Path: "top.json", Blob: blob, Mode: filemode.Regular},
	})
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	err = s.WalkTree(treeOid, func(path string, entry object.TreeEntry) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"a/b/c.json": true, "a/d.json": true, "top.json": true}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want keys of %v", paths, want)
	}
	for _, p := range paths {
		if !want[p] {
			t.Fatalf("unexpected path %q", p)
		}
	}
}

func TestRefCreateGetDelete(t *testing.T) {
	s := mustOpen(t)
	blob, _ := s.CreateBlob([]byte("x"))
	tree, err := s.MakeTree([]TreeEntryInput{{Path: "f.txt", Blob: blob, Mode: filemode.Regular}})
	if err != nil {
		t.Fatal(err)
	}
	sig := s.Signature("tester", "tester@example.com")
	commitOid, err := s.CreateCommit("", "first commit", sig, sig, tree, nil)
	if err != nil {
		t.Fatal(err)
	}

	const refName = "refs/jin/layers/global"
	if err := s.CreateRef(refName, commitOid, true, "init"); err != nil {
		t.Fatal(err)
	}
	ref, err := s.GetRef(refName)
	if err != nil {
		t.Fatal(err)
	}
	if ref == nil || ref.Target != commitOid {
		t.Fatalf("got %v, want target %s", ref, commitOid)
	}

	if err := s.DeleteRef(refName); err != nil {
		t.Fatal(err)
	}
	ref, err = s.GetRef(refName)
	if err != nil {
		t.Fatal(err)
	}
	if ref != nil {
		t.Fatalf("expected ref deleted, got %v", ref)
	}
}

func TestCheckAndSetReferenceRejectsStaleCompare(t *testing.T) {
	s := mustOpen(t)
	blob, _ := s.CreateBlob([]byte("x"))
	tree, _ := s.MakeTree([]TreeEntryInput{{Path: "f.txt", Blob: blob, Mode: filemode.Regular}})
	sig := s.Signature("tester", "tester@example.com")

	const refName = "refs/jin/layers/project/demo"
	c1, err := s.CreateCommit("", "c1", sig, sig, tree, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CheckAndSetReference(refName, nil, c1); err != nil {
		t.Fatalf("initial CAS create: %v", err)
	}

	c2, err := s.CreateCommit("", "c2", sig, sig, tree, []Oid{c1})
	if err != nil {
		t.Fatal(err)
	}
	stale := ZeroOid
	if err := s.CheckAndSetReference(refName, &stale, c2); err == nil {
		t.Fatal("expected CAS failure against stale old value")
	}

	if err := s.CheckAndSetReference(refName, &c1, c2); err != nil {
		t.Fatalf("CAS against current value should succeed: %v", err)
	}
	ref, err := s.GetRef(refName)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Target != c2 {
		t.Fatalf("got %s, want %s", ref.Target, c2)
	}
}

func TestListRefsByGlob(t *testing.T) {
	s := mustOpen(t)
	blob, _ := s.CreateBlob([]byte("x"))
	tree, _ := s.MakeTree([]TreeEntryInput{{Path: "f.txt", Blob: blob, Mode: filemode.Regular}})
	sig := s.Signature("tester", "tester@example.com")
	commitOid, _ := s.CreateCommit("", "c", sig, sig, tree, nil)

	for _, name := range []string{
		"refs/jin/layers/global",
		"refs/jin/layers/mode/claude",
		"refs/jin/layers/mode/claude/project/demo",
		"refs/jin/staging/tx-1/mode/claude",
	} {
		if err := s.CreateRef(name, commitOid, true, "setup"); err != nil {
			t.Fatal(err)
		}
	}

	layers, err := s.ListRefsByGlob("refs/jin/layers/**")
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 3 {
		t.Fatalf("got %d refs, want 3: %v", len(layers), layers)
	}
}

func mustOpen(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}
