package workspace

import "testing"

func TestLoadMetadataEmptyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadMetadata(dir)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if m.FileHashes == nil || len(m.FileHashes) != 0 {
		t.Fatalf("LoadMetadata on absent file = %+v, want empty", m)
	}
}

func TestMetadataSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := NewMetadata()
	m.FileHashes["CLAUDE.md"] = "deadbeef"
	m.ActiveLayers = []string{"global", "project:proj"}
	if err := m.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadMetadata(dir)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if got.FileHashes["CLAUDE.md"] != "deadbeef" {
		t.Fatalf("FileHashes = %v", got.FileHashes)
	}
	if len(got.ActiveLayers) != 2 || got.ActiveLayers[1] != "project:proj" {
		t.Fatalf("ActiveLayers = %v", got.ActiveLayers)
	}
}

func TestIsDirty(t *testing.T) {
	m := NewMetadata()
	m.FileHashes["a.md"] = "hash1"

	if !m.IsDirty("b.md", "anything") {
		t.Error("untracked path should be dirty")
	}
	if m.IsDirty("a.md", "hash1") {
		t.Error("matching hash should not be dirty")
	}
	if !m.IsDirty("a.md", "hash2") {
		t.Error("mismatched hash should be dirty")
	}
}
