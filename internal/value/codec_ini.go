package value

import (
	"bytes"
	"fmt"

	"github.com/go-ini/ini"
)

// parseINI models INI as the two-level Map spec.md §3.2 requires: section
// name to key to scalar string. Keys outside any [section] header land
// under go-ini's DEFAULT section name.
func parseINI(data []byte) (Value, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Null(), &ParseError{Format: INI, Reason: err.Error()}
	}
	root := NewMap()
	for _, section := range f.Sections() {
		sec := NewMap()
		for _, key := range section.Keys() {
			sec.Set(key.Name(), Str(key.Value()))
		}
		root.Set(section.Name(), MapOf(sec))
	}
	return MapOf(root), nil
}

// emitINI hand-writes the file instead of round-tripping through ini.File
// so emission stays a pure function of the Value (go-ini's File carries
// load-time state that would make two emits of an equal Value diverge).
func emitINI(v Value) ([]byte, error) {
	if v.Kind() != KindMap {
		return nil, &ParseError{Format: INI, Reason: "INI documents must be a top-level section map"}
	}
	var buf bytes.Buffer
	root := v.Map()
	if def, ok := root.Get(ini.DefaultSection); ok && def.Kind() == KindMap {
		if err := writeINISection(&buf, def.Map()); err != nil {
			return nil, err
		}
	}
	for pair := root.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == ini.DefaultSection {
			continue
		}
		if pair.Value.Kind() != KindMap {
			return nil, &ParseError{Format: INI, Reason: "INI section " + pair.Key + " must be a map"}
		}
		fmt.Fprintf(&buf, "[%s]\n", pair.Key)
		if err := writeINISection(&buf, pair.Value.Map()); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeINISection(buf *bytes.Buffer, m *Map) error {
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Kind() != KindStr {
			return &ParseError{Format: INI, Reason: "INI values must be strings, key " + pair.Key}
		}
		fmt.Fprintf(buf, "%s = %s\n", pair.Key, pair.Value.Str())
	}
	return nil
}
