// Package audit implements the Audit Log (spec.md §3.10, §4.K): an
// append-only, per-day JSON Lines record of every successful commit-pipeline
// invocation, written under the object store's repository directory. The
// core never reads it back; it exists purely as forensic data for external
// consumers, except for jin's own supplemented `log` command (SPEC_FULL.md §4).
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edelwud/jin/internal/layer"
)

// Entry is one audit record (spec.md §3.10).
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	User        string    `json:"user"`
	Project     string    `json:"project"`
	Mode        string    `json:"mode,omitempty"`
	Scope       string    `json:"scope,omitempty"`
	LayerRank   int       `json:"layer_rank"`
	Layer       string    `json:"layer"`
	Files       []string  `json:"files"`
	BaseCommit  string    `json:"base_commit,omitempty"`
	MergeCommit string    `json:"merge_commit"`
	Context     string    `json:"context,omitempty"`
}

// shardPath returns <repoPath>/.audit/YYYY-MM-DD.log for t.
func shardPath(repoPath string, t time.Time) string {
	return filepath.Join(repoPath, ".audit", t.Format("2006-01-02")+".log")
}

// Append writes entry as one JSON Lines record to the shard for its
// timestamp's day, creating the .audit directory if needed.
func Append(repoPath string, entry Entry) error {
	path := shardPath(repoPath, entry.Timestamp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit shard: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// NewEntry builds an audit entry for a single layer's commit.
func NewEntry(user, project string, ctx layer.Context, l layer.Layer, files []string, baseCommit, mergeCommit string) Entry {
	return Entry{
		Timestamp:   time.Now(),
		User:        user,
		Project:     project,
		Mode:        ctx.Mode,
		Scope:       ctx.Scope,
		LayerRank:   l.Precedence(),
		Layer:       l.String(),
		Files:       files,
		BaseCommit:  baseCommit,
		MergeCommit: mergeCommit,
	}
}

// Read returns every entry recorded on day (format "2006-01-02"), newest
// first within the day, for the `log` command's per-day listing
// (SPEC_FULL.md §4). A shard that doesn't exist yields no entries.
func Read(repoPath, day string) ([]Entry, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", day, err)
	}
	data, err := os.ReadFile(shardPath(repoPath, t))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read audit shard: %w", err)
	}
	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Days lists the shard days available under repoPath/.audit, newest first.
func Days(repoPath string) ([]string, error) {
	dir := filepath.Join(repoPath, ".audit")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list audit shards: %w", err)
	}
	var days []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".log" {
			days = append(days, name[:len(name)-len(".log")])
		}
	}
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days, nil
}
