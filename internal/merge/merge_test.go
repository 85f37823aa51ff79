package merge

import (
	"testing"

	"github.com/edelwud/jin/internal/value"
)

func mustParseJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse(value.JSON, []byte(s))
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestMergeNullDeletesTopLevelKey(t *testing.T) {
	base := mustParseJSON(t, `{"keep":1,"delete":2}`)
	overlay := mustParseJSON(t, `{"delete":null}`)

	got, err := Merge(base, overlay, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Map().Get("delete"); ok {
		t.Fatalf("expected delete key removed, got %v", got)
	}
	if v, ok := got.Map().Get("keep"); !ok || v.Int() != 1 {
		t.Fatalf("expected keep=1 preserved, got %v", got)
	}
}

func TestMergeOverlayNullAtRootReturnsNull(t *testing.T) {
	base := mustParseJSON(t, `{"a":1}`)
	got, err := Merge(base, value.Null(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsNull() {
		t.Fatalf("expected Null, got %v", got)
	}
}

func TestMergeIdentityNonNull(t *testing.T) {
	v := mustParseJSON(t, `{"a":1}`)
	got, err := Merge(value.Null(), v, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(v) {
		t.Fatalf("merge(Null, V) should equal V, got %v", got)
	}
}

func TestMergeObjectRecursive(t *testing.T) {
	base := mustParseJSON(t, `{"common":{"a":1},"g":true}`)
	overlay := mustParseJSON(t, `{"common":{"b":2},"p":false}`)

	got, err := Merge(base, overlay, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := mustParseJSON(t, `{"common":{"a":1,"b":2},"g":true,"p":false}`)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergeScalarReplace(t *testing.T) {
	base := mustParseJSON(t, `{"a":1}`)
	overlay := mustParseJSON(t, `{"a":2}`)
	got, err := Merge(base, overlay, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	v, _ := got.Map().Get("a")
	if v.Int() != 2 {
		t.Fatalf("expected overlay to win, got %v", v)
	}
}

func TestMergeTypeConflictOverlayWins(t *testing.T) {
	base := mustParseJSON(t, `{"a":{"nested":true}}`)
	overlay := mustParseJSON(t, `{"a":"string"}`)
	got, err := Merge(base, overlay, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	v, _ := got.Map().Get("a")
	if v.Kind() != value.KindStr || v.Str() != "string" {
		t.Fatalf("expected scalar replace, got %v", v)
	}
}

func TestMergeArrayReplaceDefault(t *testing.T) {
	base := mustParseJSON(t, `[1,2,3]`)
	overlay := mustParseJSON(t, `[4,5]`)
	got, err := Merge(base, overlay, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(overlay) {
		t.Fatalf("expected overlay array to replace, got %v", got)
	}
}

func TestMergeByKeyArrays(t *testing.T) {
	base := mustParseJSON(t, `[{"id":"1","name":"x","status":"p"}]`)
	overlay := mustParseJSON(t, `[{"id":"1","priority":"h"},{"id":"2","name":"y"}]`)
	cfg := DefaultConfig()
	cfg.ArrayStrategy = MergeByKey

	got, err := Merge(base, overlay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := mustParseJSON(t, `[{"id":"1","name":"x","status":"p","priority":"h"},{"id":"2","name":"y"}]`)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if len(got.Seq()) != 2 {
		t.Fatalf("expected base order preserved then append, got %v", got)
	}
	first := got.Seq()[0]
	id, _ := first.Map().Get("id")
	if id.Str() != "1" {
		t.Fatalf("expected base item first, got %v", got)
	}
}

func TestMergeByKeyFallsBackToReplaceOnMixedArray(t *testing.T) {
	base := mustParseJSON(t, `[{"id":"1"},{"no_id":true}]`)
	overlay := mustParseJSON(t, `[{"id":"2"}]`)
	cfg := DefaultConfig()
	cfg.ArrayStrategy = MergeByKey

	got, err := Merge(base, overlay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(overlay) {
		t.Fatalf("expected fallback replace, got %v", got)
	}
}

func TestMergeByKeyEmptyOverlayReplaces(t *testing.T) {
	base := mustParseJSON(t, `[{"id":"1"}]`)
	overlay := mustParseJSON(t, `[]`)
	cfg := DefaultConfig()
	cfg.ArrayStrategy = MergeByKey

	got, err := Merge(base, overlay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Seq()) != 0 {
		t.Fatalf("expected empty overlay array to replace, got %v", got)
	}
}

func TestMergeConcatenate(t *testing.T) {
	base := mustParseJSON(t, `[1,2]`)
	overlay := mustParseJSON(t, `[3,4]`)
	cfg := DefaultConfig()
	cfg.ArrayStrategy = Concatenate

	got, err := Merge(base, overlay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := mustParseJSON(t, `[1,2,3,4]`)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergeAssociativeNonConflictingMaps(t *testing.T) {
	v1 := mustParseJSON(t, `{"a":1}`)
	v2 := mustParseJSON(t, `{"b":2}`)
	v3 := mustParseJSON(t, `{"c":3}`)

	left, err := Merge(v1, v2, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	left, err = Merge(left, v3, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	right, err := Merge(v2, v3, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	right, err = Merge(v1, right, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if !left.Equal(right) {
		t.Fatalf("merge not associative for disjoint maps: %v vs %v", left, right)
	}
}

func TestMergeDepthExceeded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 1

	base := mustParseJSON(t, `{"a":{"b":{"c":1}}}`)
	overlay := mustParseJSON(t, `{"a":{"b":{"c":2}}}`)

	_, err := Merge(base, overlay, cfg)
	if err == nil {
		t.Fatal("expected DepthExceeded error")
	}
	if _, ok := err.(*DepthExceeded); !ok {
		t.Fatalf("expected *DepthExceeded, got %T", err)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := mustParseJSON(t, `{"a":1}`)
	overlay := mustParseJSON(t, `{"a":2}`)
	baseCopy := base.Clone()

	if _, err := Merge(base, overlay, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if !base.Equal(baseCopy) {
		t.Fatalf("merge mutated base: %v vs %v", base, baseCopy)
	}
}
