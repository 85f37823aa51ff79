// Package staging implements the Staging Index (spec.md §3.4, §4.E): an
// ordered path -> entry map, plus a derived layer -> paths index rebuilt
// after every load, persisted as a single JSON file under the workspace.
package staging

import (
	"crypto/sha256"
	"time"

	"github.com/edelwud/jin/internal/layer"
)

// Status is a bitset of the lifecycle flags a staged entry can carry
// (spec.md §3.3). Bits are independent: e.g. STAGED|NEW marks a newly
// staged file that has not yet been committed.
type Status int

const (
	StatusClean    Status = 1 << 0
	StatusModified Status = 1 << 1
	StatusStaged   Status = 1 << 2
	StatusRemoved  Status = 1 << 3
	StatusNew      Status = 1 << 4
)

func (s Status) Has(bit Status) bool { return s&bit != 0 }

// Entry is one staged file: its routed layer, content hash, lifecycle
// status, and timestamps (spec.md §3.3).
type Entry struct {
	Path        string      `json:"path"`
	Layer       layer.Layer `json:"layer"`
	ContentHash [32]byte    `json:"content_hash"`
	Status      Status      `json:"status"`
	StagedAt    *time.Time  `json:"staged_at,omitempty"`
	Size        int64       `json:"size"`
	ModifiedAt  time.Time   `json:"modified_at"`
}

// HashContent computes the SHA-256 digest spec.md §3.3 requires of staged
// file content.
func HashContent(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// NewEntry builds a fresh staged entry for data currently staged under l.
func NewEntry(path string, l layer.Layer, data []byte, modifiedAt time.Time) Entry {
	now := time.Now()
	return Entry{
		Path:        path,
		Layer:       l,
		ContentHash: HashContent(data),
		Status:      StatusStaged | StatusNew,
		StagedAt:    &now,
		Size:        int64(len(data)),
		ModifiedAt:  modifiedAt,
	}
}

// NewRemovalEntry builds a staged entry marking path for removal from l's
// tracked tree on the next commit, the structural analogue of `git rm
// --cached` (SPEC_FULL.md §4). It carries no content hash: nothing is ever
// read from disk for a removal.
func NewRemovalEntry(path string, l layer.Layer) Entry {
	now := time.Now()
	return Entry{
		Path:     path,
		Layer:    l,
		Status:   StatusRemoved,
		StagedAt: &now,
	}
}
