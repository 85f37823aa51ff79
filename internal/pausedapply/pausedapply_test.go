package pausedapply

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateSaveLoadDelete(t *testing.T) {
	dir := t.TempDir()

	if got, err := Load(dir); err != nil || got != nil {
		t.Fatalf("Load on absent state = %v, %v; want nil, nil", got, err)
	}

	s := &State{
		Timestamp:     time.Now(),
		LayerConfig:   []string{"global", "project:proj"},
		ConflictFiles: []string{"CLAUDE.md"},
		ConflictCount: 1,
	}
	if err := s.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ConflictCount != 1 || len(got.ConflictFiles) != 1 || got.ConflictFiles[0] != "CLAUDE.md" {
		t.Fatalf("Load returned %+v", got)
	}

	if err := Delete(dir); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := Load(dir); err != nil || got != nil {
		t.Fatalf("Load after Delete = %v, %v; want nil, nil", got, err)
	}
	// deleting again must be a no-op
	if err := Delete(dir); err != nil {
		t.Fatalf("Delete on absent state: %v", err)
	}
}

func TestStateIsStale(t *testing.T) {
	fresh := &State{Timestamp: time.Now()}
	if fresh.IsStale() {
		t.Error("freshly stamped state should not be stale")
	}
	old := &State{Timestamp: time.Now().Add(-25 * time.Hour)}
	if !old.IsStale() {
		t.Error("25h old state should be stale")
	}
}

func TestResolveWithoutPausedApplyErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(dir, nil, true, false, false); err != ErrNoPausedOperation {
		t.Fatalf("Resolve() err = %v, want ErrNoPausedOperation", err)
	}
}

func TestResolveStaleRequiresForce(t *testing.T) {
	dir := t.TempDir()
	s := &State{Timestamp: time.Now().Add(-48 * time.Hour), ConflictFiles: []string{"a.md"}, ConflictCount: 1}
	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(dir, nil, true, false, false); err != ErrStaleState {
		t.Fatalf("Resolve() err = %v, want ErrStaleState", err)
	}

	if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, MergePath("a.md"))), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, MergePath("a.md")), []byte("resolved content\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(dir, nil, true, false, true); err != nil {
		t.Fatalf("Resolve with force: %v", err)
	}
}

func TestResolveExplicitPathNotInConflict(t *testing.T) {
	dir := t.TempDir()
	s := &State{Timestamp: time.Now(), ConflictFiles: []string{"a.md"}, ConflictCount: 1}
	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(dir, []string{"b.md"}, false, false, false); err != ErrNotInConflict {
		t.Fatalf("Resolve() err = %v, want ErrNotInConflict", err)
	}
}

func TestResolveDryRunFinalizesNothing(t *testing.T) {
	dir := t.TempDir()
	s := &State{Timestamp: time.Now(), ConflictFiles: []string{"a.md"}, ConflictCount: 1}
	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, MergePath("a.md")), []byte("resolved\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Resolve(dir, []string{"a.md"}, false, true, false)
	if err != nil {
		t.Fatalf("Resolve dry-run: %v", err)
	}
	if res.Remaining != 0 || len(res.Resolved) != 1 {
		t.Fatalf("Resolve dry-run result = %+v", res)
	}
	if got, err := Load(dir); err != nil || got == nil {
		t.Fatal("dry-run must not delete paused-apply state")
	}
}
