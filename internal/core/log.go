package core

import (
	"github.com/edelwud/jin/internal/audit"
)

// Log returns audit entries newest-first, optionally filtered to a single
// layer (by its String() name) and capped at limit entries (0 means
// unlimited), reading the JSON Lines shards under the object store's
// .audit/ directory (SPEC_FULL.md §4, `commands/log.rs`).
func (c *Core) Log(layerName string, limit int) ([]audit.Entry, error) {
	days, err := audit.Days(c.st.Path())
	if err != nil {
		return nil, err
	}

	var out []audit.Entry
	for _, day := range days {
		entries, err := audit.Read(c.st.Path(), day)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if layerName != "" && e.Layer != layerName {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}
