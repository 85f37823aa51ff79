// Package ignoreblock maintains the managed block inside a workspace's
// .gitignore that keeps jin's own state directories and applied files out of
// the project's primary version history (spec.md §6.1, SPEC_FULL.md §4
// "repair diagnostics detail").
package ignoreblock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edelwud/jin/internal/atomicfile"
)

const (
	startMarker = "### JIN MANAGED START"
	endMarker   = "### JIN MANAGED END"
)

// DefaultEntries are always present in the managed block regardless of
// applied files: jin's own workspace-local state.
var DefaultEntries = []string{".jin/", ".jinmap"}

// Path returns <workspace>/.gitignore.
func Path(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".gitignore")
}

// Ensure writes or rewrites the managed block with entries, preserving any
// content outside the block. A missing .gitignore is created. entries is
// normalised to DefaultEntries followed by every given path, deduplicated,
// in that order (entries are not sorted).
func Ensure(workspaceRoot string, entries []string) error {
	all := mergedEntries(entries)
	path := Path(workspaceRoot)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read .gitignore: %w", err)
	}
	before, _, after, hadBlock := splitBlock(string(existing))
	var b strings.Builder
	b.WriteString(before)
	if before != "" && !strings.HasSuffix(before, "\n") {
		b.WriteString("\n")
	}
	writeBlock(&b, all)
	if hadBlock {
		b.WriteString(after)
	}
	return atomicfile.Write(path, []byte(b.String()), 0o644)
}

// IsPresent reports whether the managed block exists and is well-formed
// (a start marker followed later by an end marker), for repair's
// diagnostics.
func IsPresent(workspaceRoot string) (bool, error) {
	data, err := os.ReadFile(Path(workspaceRoot))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read .gitignore: %w", err)
	}
	_, _, _, ok := splitBlock(string(data))
	return ok, nil
}

func mergedEntries(entries []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range append(append([]string{}, DefaultEntries...), entries...) {
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

func writeBlock(b *strings.Builder, entries []string) {
	b.WriteString(startMarker)
	b.WriteString("\n")
	for _, e := range entries {
		b.WriteString(e)
		b.WriteString("\n")
	}
	b.WriteString(endMarker)
	b.WriteString("\n")
}

// splitBlock locates the managed block within content, returning the text
// before it, its current entries, the text after it, and whether a
// well-formed block was found at all.
func splitBlock(content string) (before string, entries []string, after string, ok bool) {
	startIdx := strings.Index(content, startMarker)
	if startIdx < 0 {
		return content, nil, "", false
	}
	endIdx := strings.Index(content[startIdx:], endMarker)
	if endIdx < 0 {
		return content, nil, "", false
	}
	endIdx += startIdx

	before = content[:startIdx]
	inner := content[startIdx+len(startMarker) : endIdx]
	for _, line := range strings.Split(inner, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	rest := content[endIdx+len(endMarker):]
	after = strings.TrimPrefix(rest, "\n")
	return before, entries, after, true
}
