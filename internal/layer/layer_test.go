package layer

import "testing"

func TestPrecedenceOrder(t *testing.T) {
	want := map[Kind]int{
		GlobalBase: 1, ModeBase: 2, ModeScope: 3, ModeScopeProject: 4,
		ModeProject: 5, ScopeBase: 6, ProjectBase: 7, UserLocal: 8, WorkspaceActive: 9,
	}
	for kind, rank := range want {
		if got := New(kind).Precedence(); got != rank {
			t.Errorf("Precedence(%v) = %d, want %d", kind, got, rank)
		}
	}
}

func TestRefPathScopeEscaping(t *testing.T) {
	l := NewScope("language:rust")
	want := "refs/jin/layers/scope/language%3Arust"
	if got := l.RefPath(); got != want {
		t.Errorf("RefPath() = %q, want %q", got, want)
	}
	if got := UnescapeScope("language%3Arust"); got != "language:rust" {
		t.Errorf("UnescapeScope() = %q, want %q", got, "language:rust")
	}
}

func TestRefPathUserLocalAndWorkspaceAreUnversioned(t *testing.T) {
	if New(UserLocal).RefPath() != "" {
		t.Error("UserLocal should have no ref path")
	}
	if New(UserLocal).IsVersioned() {
		t.Error("UserLocal should not be versioned")
	}
	if New(WorkspaceActive).RefPath() != "" {
		t.Error("WorkspaceActive should have no ref path")
	}
}

func TestApplicableLayersDefault(t *testing.T) {
	layers := ApplicableLayers(Context{Project: "proj"})
	if len(layers) != 2 {
		t.Fatalf("expected GlobalBase+ProjectBase, got %v", layers)
	}
	if layers[0].Kind != GlobalBase || layers[1].Kind != ProjectBase {
		t.Fatalf("unexpected layers %v", layers)
	}
}

func TestApplicableLayersWithMode(t *testing.T) {
	layers := ApplicableLayers(Context{Mode: "claude", Project: "proj"})
	kinds := kindsOf(layers)
	want := []Kind{GlobalBase, ModeBase, ModeProject, ProjectBase}
	assertKinds(t, kinds, want)
}

func TestApplicableLayersWithScopeNoMode(t *testing.T) {
	layers := ApplicableLayers(Context{Scope: "language:rust", Project: "proj"})
	kinds := kindsOf(layers)
	want := []Kind{GlobalBase, ScopeBase, ProjectBase}
	assertKinds(t, kinds, want)
}

func TestApplicableLayersModeScopeShadowsUntetheredScope(t *testing.T) {
	layers := ApplicableLayers(Context{Mode: "claude", Scope: "language:rust", Project: "proj"})
	kinds := kindsOf(layers)
	want := []Kind{GlobalBase, ModeScope, ModeScopeProject, ProjectBase}
	assertKinds(t, kinds, want)
	for _, k := range kinds {
		if k == ScopeBase {
			t.Fatal("untethered ScopeBase must not appear when mode+scope both set")
		}
	}
}

func TestApplicableLayersAreSortedAscending(t *testing.T) {
	layers := ApplicableLayers(Context{Mode: "claude", Scope: "language:rust", Project: "proj"})
	for i := 1; i < len(layers); i++ {
		if layers[i-1].Precedence() >= layers[i].Precedence() {
			t.Fatalf("layers not strictly ascending: %v", layers)
		}
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	layers := []Layer{
		New(GlobalBase),
		New(UserLocal),
		New(WorkspaceActive),
		NewMode("writing"),
		NewModeScope("writing", "backend"),
		NewModeScopeProject("writing", "backend", "proj"),
		NewModeProject("writing", "proj"),
		NewScope("backend"),
		NewProject("proj"),
	}
	for _, l := range layers {
		s := l.String()
		got, ok := ParseString(s)
		if !ok {
			t.Errorf("ParseString(%q) failed to parse", s)
			continue
		}
		if got != l {
			t.Errorf("ParseString(%q) = %+v, want %+v", s, got, l)
		}
	}
}

func TestParseStringInvalid(t *testing.T) {
	for _, s := range []string{"", "bogus", "mode:x/bogus:y", "mode:x/scope:y/z"} {
		if _, ok := ParseString(s); ok {
			t.Errorf("ParseString(%q) should fail", s)
		}
	}
}

func kindsOf(layers []Layer) []Kind {
	out := make([]Kind, len(layers))
	for i, l := range layers {
		out[i] = l.Kind
	}
	return out
}

func assertKinds(t *testing.T, got, want []Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
