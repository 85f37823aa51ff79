package value

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/pelletier/go-toml"
)

// parseTOML decodes via toml.Tree rather than into map[string]any: the
// Tree records each key's source position, which an `any`-typed decode
// target cannot, so tomlTreeToValue can restore the document's own
// declaration order (Tree.Keys() itself returns keys in map order).
func parseTOML(data []byte) (Value, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Null(), &ParseError{Format: TOML, Reason: err.Error()}
	}
	return tomlTreeToValue(tree), nil
}

func tomlTreeToValue(tree *toml.Tree) Value {
	keys := tree.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		pi := tree.GetPositionPath([]string{keys[i]})
		pj := tree.GetPositionPath([]string{keys[j]})
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Col < pj.Col
	})
	m := NewMap()
	for _, key := range keys {
		m.Set(key, tomlToValue(tree.Get(key)))
	}
	return MapOf(m)
}

// tomlToValue mirrors fromAny but special-cases the Tree's own nested types
// plus datetimes: spec.md §4.A requires TOML datetimes to normalise to Str
// rather than a distinct temporal kind the value model doesn't have.
func tomlToValue(raw any) Value {
	switch t := raw.(type) {
	case *toml.Tree:
		return tomlTreeToValue(t)
	case []*toml.Tree:
		items := make([]Value, len(t))
		for i, sub := range t {
			items[i] = tomlTreeToValue(sub)
		}
		return Seq(items...)
	case time.Time:
		return Str(t.Format(time.RFC3339))
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = tomlToValue(item)
		}
		return Seq(items...)
	default:
		return fromAny(raw)
	}
}

// emitTOML hand-writes tables/array-of-tables so Seq-of-Map values (keyed
// arrays after a merge) round-trip, something toml.Marshal on a converted
// map[string]any cannot express without reflecting back through structs.
func emitTOML(v Value) ([]byte, error) {
	if v.Kind() != KindMap {
		return nil, &ParseError{Format: TOML, Reason: "TOML documents must be a top-level table"}
	}
	var buf bytes.Buffer
	if err := writeTOMLTable(&buf, nil, v.Map()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTOMLTable(buf *bytes.Buffer, path []string, m *Map) error {
	var nested []struct {
		key string
		val Value
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Value.Kind() {
		case KindMap:
			nested = append(nested, struct {
				key string
				val Value
			}{pair.Key, pair.Value})
		case KindSeq:
			if isArrayOfTables(pair.Value) {
				nested = append(nested, struct {
					key string
					val Value
				}{pair.Key, pair.Value})
				continue
			}
			fmt.Fprintf(buf, "%s = ", tomlKey(pair.Key))
			writeTOMLInline(buf, pair.Value)
			buf.WriteByte('\n')
		default:
			fmt.Fprintf(buf, "%s = ", tomlKey(pair.Key))
			writeTOMLInline(buf, pair.Value)
			buf.WriteByte('\n')
		}
	}
	for _, n := range nested {
		segPath := append(append([]string{}, path...), n.key)
		if n.val.Kind() == KindMap {
			fmt.Fprintf(buf, "\n[%s]\n", tomlDottedPath(segPath))
			if err := writeTOMLTable(buf, segPath, n.val.Map()); err != nil {
				return err
			}
			continue
		}
		for _, item := range n.val.Seq() {
			fmt.Fprintf(buf, "\n[[%s]]\n", tomlDottedPath(segPath))
			if err := writeTOMLTable(buf, segPath, item.Map()); err != nil {
				return err
			}
		}
	}
	return nil
}

func isArrayOfTables(v Value) bool {
	seq := v.Seq()
	if len(seq) == 0 {
		return false
	}
	for _, item := range seq {
		if item.Kind() != KindMap {
			return false
		}
	}
	return true
}

func tomlDottedPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += tomlKey(p)
	}
	return out
}

func tomlKey(k string) string {
	for _, r := range k {
		if !(r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Sprintf("%q", k)
		}
	}
	return k
}

func writeTOMLInline(buf *bytes.Buffer, v Value) {
	switch v.Kind() {
	case KindNull:
		buf.WriteString(`""`)
	case KindBool:
		if v.Bool() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		fmt.Fprintf(buf, "%d", v.Int())
	case KindFloat:
		fmt.Fprintf(buf, "%g", v.Float())
	case KindStr:
		fmt.Fprintf(buf, "%q", v.Str())
	case KindSeq:
		buf.WriteByte('[')
		for i, item := range v.Seq() {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeTOMLInline(buf, item)
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		i, n := 0, v.Map().Len()
		for pair := v.Map().Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(buf, "%s = ", tomlKey(pair.Key))
			writeTOMLInline(buf, pair.Value)
			if i < n-1 {
				buf.WriteString(", ")
			}
			i++
		}
		buf.WriteByte('}')
	}
}
