// Package value defines the universal merge value: the single in-memory
// representation every structured config format is parsed into and emitted
// from before the deep merge engine ever sees it.
package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "string"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Map is the ordered string-keyed map backing Value's Map variant. Insertion
// order is preserved through every mutation, matching the data model's
// "Map preserves insertion order" invariant.
type Map = orderedmap.OrderedMap[string, Value]

// NewMap returns an empty, ordered Value map.
func NewMap() *Map {
	return orderedmap.New[string, Value]()
}

// Value is the tagged sum Null | Bool | Int | Float | Str | Seq | Map.
// Zero value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    *Map
}

func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Int(i int64) Value          { return Value{kind: KindInt, i: i} }
func Float(f float64) Value      { return Value{kind: KindFloat, f: f} }
func Str(s string) Value         { return Value{kind: KindStr, s: s} }
func Seq(items ...Value) Value   { return Value{kind: KindSeq, seq: items} }
func MapOf(m *Map) Value         { return Value{kind: KindMap, m: m} }
func NewMapValue() Value         { return MapOf(NewMap()) }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) Bool() bool    { return v.b }
func (v Value) Int() int64   { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string  { return v.s }
func (v Value) Seq() []Value { return v.seq }

// Map returns the underlying ordered map. Callers must check Kind() ==
// KindMap first; on any other kind it returns nil.
func (v Value) Map() *Map {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// Equal reports whether two values are structurally equal. Map equality is
// order-insensitive (same keys, same values); Seq equality is ordered.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindStr:
		return v.s == other.s
	case KindSeq:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if v.m.Len() != other.m.Len() {
			return false
		}
		for pair := v.m.Oldest(); pair != nil; pair = pair.Next() {
			ov, ok := other.m.Get(pair.Key)
			if !ok || !pair.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone deep-copies a Value so callers may mutate the result without
// affecting the source (the merge engine relies on this).
func (v Value) Clone() Value {
	switch v.kind {
	case KindSeq:
		out := make([]Value, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Clone()
		}
		return Value{kind: KindSeq, seq: out}
	case KindMap:
		out := NewMap()
		for pair := v.m.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, pair.Value.Clone())
		}
		return MapOf(out)
	default:
		return v
	}
}

// Set inserts or replaces a key in a Map-kind value's map, appending new
// keys after existing ones. Panics if v is not a Map (callers are expected
// to have checked Kind()).
func (v Value) Set(key string, val Value) {
	v.m.Set(key, val)
}
