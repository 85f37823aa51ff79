// Package merge implements the deep merge engine: RFC 7396 null-deletion
// merge of two Values with a pluggable array strategy (spec.md §4.B).
package merge

import (
	"fmt"
	"sort"

	"github.com/edelwud/jin/internal/value"
)

// ArrayStrategy selects how two Seq values are combined.
type ArrayStrategy int

const (
	// Replace is RFC 7396's default: the overlay array wins outright.
	Replace ArrayStrategy = iota
	// MergeByKey merges same-keyed items recursively, in base order, then
	// appends the overlay's new keys sorted by key. It applies only when
	// every item on both sides has a key; if any item lacks one, or the
	// overlay is empty, the overlay array replaces the base wholesale.
	// Unkeyed items are never merged item by item.
	MergeByKey
	// Concatenate appends the overlay array's items after the base array's.
	Concatenate
)

// Config parameterises a merge invocation.
type Config struct {
	ArrayStrategy ArrayStrategy
	KeyFields     []string
	MaxDepth      int
}

// DefaultConfig returns RFC 7396 defaults: Replace arrays, key fields
// ["id","name"], depth guard of 100.
func DefaultConfig() Config {
	return Config{
		ArrayStrategy: Replace,
		KeyFields:     []string{"id", "name"},
		MaxDepth:      100,
	}
}

// DepthExceeded is returned when recursion passes Config.MaxDepth.
type DepthExceeded struct{ MaxDepth int }

func (e *DepthExceeded) Error() string {
	return fmt.Sprintf("merge exceeded max depth %d", e.MaxDepth)
}

// Merge combines base and overlay per spec.md §4.B. overlay takes
// precedence; Null entries in overlay delete the corresponding base key.
func Merge(base, overlay value.Value, cfg Config) (value.Value, error) {
	return mergeAt(base, overlay, cfg, 0)
}

func mergeAt(base, overlay value.Value, cfg Config, depth int) (value.Value, error) {
	if depth > cfg.MaxDepth {
		return value.Null(), &DepthExceeded{MaxDepth: cfg.MaxDepth}
	}

	// Rule 1: overlay Null signals deletion to the caller.
	if overlay.IsNull() {
		return value.Null(), nil
	}

	if base.Kind() == value.KindMap && overlay.Kind() == value.KindMap {
		return mergeMaps(base, overlay, cfg, depth)
	}

	if base.Kind() == value.KindSeq && overlay.Kind() == value.KindSeq {
		return mergeSeqs(base, overlay, cfg, depth)
	}

	// Rule 4: all other pairs (type mismatch or scalar/scalar) - overlay wins.
	return overlay, nil
}

func mergeMaps(base, overlay value.Value, cfg Config, depth int) (value.Value, error) {
	result := base.Clone()
	m := result.Map()
	for pair := overlay.Map().Oldest(); pair != nil; pair = pair.Next() {
		key, overlayVal := pair.Key, pair.Value
		if overlayVal.IsNull() {
			m.Delete(key)
			continue
		}
		if baseVal, ok := m.Get(key); ok {
			merged, err := mergeAt(baseVal, overlayVal, cfg, depth+1)
			if err != nil {
				return value.Null(), err
			}
			if merged.IsNull() {
				m.Delete(key)
			} else {
				m.Set(key, merged)
			}
		} else {
			m.Set(key, overlayVal.Clone())
		}
	}
	return result, nil
}

func mergeSeqs(base, overlay value.Value, cfg Config, depth int) (value.Value, error) {
	baseSeq, overlaySeq := base.Seq(), overlay.Seq()

	switch cfg.ArrayStrategy {
	case Concatenate:
		out := make([]value.Value, 0, len(baseSeq)+len(overlaySeq))
		out = append(out, baseSeq...)
		out = append(out, overlaySeq...)
		return value.Seq(out...), nil

	case MergeByKey:
		if len(overlaySeq) == 0 {
			return value.Seq(), nil
		}
		baseKeys, baseOK := extractKeys(baseSeq, cfg.KeyFields)
		overlayKeys, overlayOK := extractKeys(overlaySeq, cfg.KeyFields)
		if !baseOK || !overlayOK {
			// Documented fallback: conflicting/unkeyable items replace wholesale.
			return overlay, nil
		}
		return mergeKeyedSeqs(baseSeq, overlaySeq, baseKeys, overlayKeys, cfg, depth)

	default: // Replace
		return overlay, nil
	}
}

// keyOf returns the first configured key field present as a non-empty
// string on a Map item, and whether the item was keyable at all.
func keyOf(item value.Value, keyFields []string) (string, bool) {
	if item.Kind() != value.KindMap {
		return "", false
	}
	for _, field := range keyFields {
		if v, ok := item.Map().Get(field); ok && v.Kind() == value.KindStr && v.Str() != "" {
			return v.Str(), true
		}
	}
	return "", false
}

// extractKeys maps every item in arr to its key, succeeding only if every
// item is keyable (spec.md §4.B rule 3).
func extractKeys(arr []value.Value, keyFields []string) (map[string]value.Value, bool) {
	out := make(map[string]value.Value, len(arr))
	for _, item := range arr {
		k, ok := keyOf(item, keyFields)
		if !ok {
			return nil, false
		}
		out[k] = item
	}
	return out, true
}

func mergeKeyedSeqs(baseSeq, overlaySeq []value.Value, baseKeys, overlayKeys map[string]value.Value, cfg Config, depth int) (value.Value, error) {
	consumed := make(map[string]bool, len(overlayKeys))
	result := make([]value.Value, 0, len(baseSeq)+len(overlaySeq))

	for _, item := range baseSeq {
		k, _ := keyOf(item, cfg.KeyFields)
		if ov, ok := overlayKeys[k]; ok {
			merged, err := mergeAt(item, ov, cfg, depth+1)
			if err != nil {
				return value.Null(), err
			}
			result = append(result, merged)
			consumed[k] = true
		} else {
			result = append(result, item)
		}
	}

	var newKeys []string
	for _, item := range overlaySeq {
		k, _ := keyOf(item, cfg.KeyFields)
		if !consumed[k] {
			newKeys = append(newKeys, k)
			consumed[k] = true
		}
	}
	sort.Strings(newKeys)
	for _, k := range newKeys {
		result = append(result, overlayKeys[k])
	}

	return value.Seq(result...), nil
}
