package value

import "testing"

func TestRoundTripJSON(t *testing.T) {
	src := []byte(`{"a":1,"b":{"c":true,"d":[1,2,3]},"e":"text","f":null}`)
	v, err := Parse(JSON, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	emitted, err := Emit(JSON, v)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	v2, err := Parse(JSON, emitted)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !v.Equal(v2) {
		t.Fatalf("round-trip mismatch:\nfirst:  %s\nsecond: %s", src, emitted)
	}
}

func TestRoundTripYAML(t *testing.T) {
	src := []byte("a: 1\nb:\n  c: true\n  d:\n    - 1\n    - 2\ne: text\n")
	v, err := Parse(YAML, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	emitted, err := Emit(YAML, v)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	v2, err := Parse(YAML, emitted)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !v.Equal(v2) {
		t.Fatalf("round-trip mismatch:\nfirst:  %s\nsecond: %s", src, emitted)
	}
}

func TestRoundTripTOML(t *testing.T) {
	src := []byte("a = 1\n\n[b]\nc = true\n")
	v, err := Parse(TOML, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	emitted, err := Emit(TOML, v)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	v2, err := Parse(TOML, emitted)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !v.Equal(v2) {
		t.Fatalf("round-trip mismatch:\nfirst:  %s\nsecond: %s", src, emitted)
	}
}

func TestRoundTripINI(t *testing.T) {
	src := []byte("key = value\n\n[section]\nfoo = bar\n")
	v, err := Parse(INI, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	emitted, err := Emit(INI, v)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	v2, err := Parse(INI, emitted)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !v.Equal(v2) {
		t.Fatalf("round-trip mismatch:\nfirst:  %s\nsecond: %s", src, emitted)
	}
}

func TestParseTextNeverFails(t *testing.T) {
	v, err := Parse(Text, []byte("anything at all, not\xff even valid utf8 matters"))
	if err != nil {
		t.Fatalf("text parse must never fail: %v", err)
	}
	if v.Kind() != KindStr {
		t.Fatalf("expected Str, got %v", v.Kind())
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"config.json": JSON,
		"config.yaml": YAML,
		"config.yml":  YAML,
		"config.toml": TOML,
		"config.ini":  INI,
		"config.cfg":  INI,
		"README.md":   Text,
		"noext":       Text,
	}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDeterministicEmission(t *testing.T) {
	m := NewMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	v := MapOf(m)

	out1, err := Emit(JSON, v)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := Emit(JSON, v)
	if err != nil {
		t.Fatal(err)
	}
	if string(out1) != string(out2) {
		t.Fatalf("emission not deterministic:\n%s\nvs\n%s", out1, out2)
	}
}

func TestJSONPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	out, err := Emit(JSON, MapOf(m))
	if err != nil {
		t.Fatal(err)
	}
	zi := indexOf(out, `"z"`)
	ai := indexOf(out, `"a"`)
	if zi == -1 || ai == -1 || zi > ai {
		t.Fatalf("expected insertion order z before a, got %s", out)
	}
}

func TestJSONParsePreservesSourceKeyOrder(t *testing.T) {
	src := []byte(`{"z":1,"m":2,"a":3,"q":{"y":1,"b":2}}`)
	v, err := Parse(JSON, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	assertMapKeyOrder(t, v, []string{"z", "m", "a", "q"})
	nested, _ := v.Map().Get("q")
	assertMapKeyOrder(t, nested, []string{"y", "b"})
}

func TestYAMLParsePreservesSourceKeyOrder(t *testing.T) {
	src := []byte("z: 1\nm: 2\na: 3\nq:\n  y: 1\n  b: 2\n")
	v, err := Parse(YAML, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	assertMapKeyOrder(t, v, []string{"z", "m", "a", "q"})
	nested, _ := v.Map().Get("q")
	assertMapKeyOrder(t, nested, []string{"y", "b"})
}

func TestTOMLParsePreservesSourceKeyOrder(t *testing.T) {
	src := []byte("z = 1\nm = 2\na = 3\n\n[q]\ny = 1\nb = 2\n")
	v, err := Parse(TOML, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	assertMapKeyOrder(t, v, []string{"z", "m", "a", "q"})
	nested, _ := v.Map().Get("q")
	assertMapKeyOrder(t, nested, []string{"y", "b"})
}

// assertMapKeyOrder fails unless v is a Map whose keys appear, in Oldest()
// iteration order, exactly as want — a stronger check than Value.Equal,
// which compares maps order-insensitively.
func assertMapKeyOrder(t *testing.T, v Value, want []string) {
	t.Helper()
	if v.Kind() != KindMap {
		t.Fatalf("expected a map, got %v", v.Kind())
	}
	var got []string
	for pair := v.Map().Oldest(); pair != nil; pair = pair.Next() {
		got = append(got, pair.Key)
	}
	if len(got) != len(want) {
		t.Fatalf("key order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key order = %v, want %v", got, want)
		}
	}
}

func indexOf(data []byte, sub string) int {
	for i := 0; i+len(sub) <= len(data); i++ {
		if string(data[i:i+len(sub)]) == sub {
			return i
		}
	}
	return -1
}
