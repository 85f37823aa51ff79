package commit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/layermap"
	"github.com/edelwud/jin/internal/staging"
	"github.com/edelwud/jin/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return s
}

func writeWorkspaceFile(t *testing.T, workspaceRoot, path, content string) {
	t.Helper()
	abspath := filepath.Join(workspaceRoot, path)
	if err := os.MkdirAll(filepath.Dir(abspath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abspath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteCommitsStagedFile(t *testing.T) {
	st := openTestStore(t)
	workspaceRoot := t.TempDir()
	writeWorkspaceFile(t, workspaceRoot, "CLAUDE.md", "hello\n")

	idx := staging.New()
	l := layer.New(layer.GlobalBase)
	idx.Add(staging.NewEntry("CLAUDE.md", l, []byte("hello\n"), time.Now()))

	res, err := Execute(st, idx, workspaceRoot, layer.Context{}, Options{User: "tester"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0] != "CLAUDE.md" {
		t.Fatalf("Files = %v", res.Files)
	}
	if !idx.IsEmpty() {
		t.Fatal("staging index must be cleared after a successful commit")
	}

	lm, err := layermap.Load(workspaceRoot)
	if err != nil {
		t.Fatalf("layermap.Load: %v", err)
	}
	if files := lm.Files(l.RefPath()); len(files) != 1 || files[0] != "CLAUDE.md" {
		t.Fatalf("layer-file map = %v, want [CLAUDE.md]", files)
	}
}

func TestExecuteRemovalDropsFileFromTreeAndMap(t *testing.T) {
	st := openTestStore(t)
	workspaceRoot := t.TempDir()
	writeWorkspaceFile(t, workspaceRoot, "CLAUDE.md", "hello\n")

	l := layer.New(layer.GlobalBase)

	idx := staging.New()
	idx.Add(staging.NewEntry("CLAUDE.md", l, []byte("hello\n"), time.Now()))
	if _, err := Execute(st, idx, workspaceRoot, layer.Context{}, Options{User: "tester"}); err != nil {
		t.Fatalf("first Execute: %v", err)
	}

	idx2 := staging.New()
	idx2.Add(staging.NewRemovalEntry("CLAUDE.md", l))
	if _, err := Execute(st, idx2, workspaceRoot, layer.Context{}, Options{User: "tester"}); err != nil {
		t.Fatalf("removal Execute: %v", err)
	}

	ref, err := st.GetRef(l.RefPath())
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	commit, err := st.FindCommit(ref.Target)
	if err != nil {
		t.Fatalf("FindCommit: %v", err)
	}
	tree, err := st.FindTree(commit.TreeHash)
	if err != nil {
		t.Fatalf("FindTree: %v", err)
	}
	if _, err := tree.File("CLAUDE.md"); err == nil {
		t.Fatal("removed file must no longer be present in the layer's committed tree")
	}

	lm, err := layermap.Load(workspaceRoot)
	if err != nil {
		t.Fatalf("layermap.Load: %v", err)
	}
	if files := lm.Files(l.RefPath()); len(files) != 0 {
		t.Fatalf("layer-file map after removal = %v, want empty", files)
	}
}
