package value

import "fmt"

// fromAny converts a generically-decoded Go value (as produced by
// encoding/json, yaml.Unmarshal, or toml.Unmarshal into an `any`) into a
// Value. Map-shaped inputs may arrive as map[string]any or, from some YAML
// decoders, map[any]any; both are normalised to an ordered Map in iteration
// order as returned by the source decoder.
func fromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case string:
		return Str(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = fromAny(item)
		}
		return Seq(items...)
	case map[string]any:
		m := NewMap()
		for k, val := range t {
			m.Set(k, fromAny(val))
		}
		return MapOf(m)
	case map[any]any:
		m := NewMap()
		for k, val := range t {
			m.Set(toKeyString(k), fromAny(val))
		}
		return MapOf(m)
	case fmt.Stringer:
		return Str(t.String())
	default:
		return Str(toKeyString(t))
	}
}

// toAny converts a Value into a plain Go value suitable for library
// Marshal functions (go-toml) that only understand native map/slice types.
func toAny(v Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int()
	case KindFloat:
		return v.Float()
	case KindStr:
		return v.Str()
	case KindSeq:
		out := make([]any, len(v.Seq()))
		for i, item := range v.Seq() {
			out[i] = toAny(item)
		}
		return out
	case KindMap:
		out := make(map[string]any)
		for pair := v.Map().Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = toAny(pair.Value)
		}
		return out
	default:
		return nil
	}
}

// toKeyString stringifies a non-string map key or an unrecognised scalar
// (e.g. a TOML local-date/time type) via fmt.Sprint.
func toKeyString(x any) string {
	return fmt.Sprint(x)
}
