package workspace

import (
	"path/filepath"
	"testing"
)

func TestLoadContextDefaultWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	ctx, err := LoadContext(dir)
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if ctx.Version != 1 || ctx.Mode != "" || ctx.Scope != "" {
		t.Fatalf("LoadContext on absent file = %+v, want default", ctx)
	}
}

func TestContextSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := &Context{Version: 1, Mode: "writing", Scope: "backend"}
	if err := ctx.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadContext(dir)
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got.Mode != "writing" || got.Scope != "backend" {
		t.Fatalf("LoadContext = %+v, want Mode=writing Scope=backend", got)
	}
}

func TestDeriveProjectFallsBackToDirName(t *testing.T) {
	dir := t.TempDir()
	got := DeriveProject(dir)
	want := filepath.Base(filepath.Clean(dir))
	if got != want {
		t.Fatalf("DeriveProject = %q, want %q", got, want)
	}
}

func TestBasenameFromURL(t *testing.T) {
	cases := map[string]string{
		"git@github.com:acme/widgets.git":  "widgets",
		"https://github.com/acme/widgets":  "widgets",
		"https://github.com/acme/widgets/": "widgets",
	}
	for url, want := range cases {
		if got := basenameFromURL(url); got != want {
			t.Errorf("basenameFromURL(%q) = %q, want %q", url, got, want)
		}
	}
}
