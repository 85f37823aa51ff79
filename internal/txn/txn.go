// Package txn implements the Transaction Manager (spec.md §3.8, §4.G): the
// all-or-nothing update of multiple layer refs, backed by a per-transaction
// reservation namespace under refs/jin/staging/<tx-id> and a CAS guard on
// each layer ref.
package txn

import (
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/edelwud/jin/internal/jinerr"
	"github.com/edelwud/jin/internal/layer"
	"github.com/edelwud/jin/internal/store"
)

// State is one of the four transaction lifecycle states (spec.md §3.8).
type State int

const (
	Pending State = iota
	Prepared
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Prepared:
		return "prepared"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// update is one layer's pending ref change, plus the snapshot of its
// pre-transaction target captured during prepare (nil means the ref didn't
// exist yet).
type update struct {
	layer    layer.Layer
	newOid   store.Oid
	snapshot *store.Oid
}

// Transaction is the atomic unit that updates one or more layer refs in
// lockstep (spec.md §3.8).
type Transaction struct {
	ID        uuid.UUID
	State     State
	CreatedAt time.Time

	st      *store.Store
	updates []update
	byLayer map[string]int
}

const reservationRoot = "refs/jin/staging"

// Begin starts a new Pending transaction against st.
func Begin(st *store.Store) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		State:     Pending,
		CreatedAt: time.Now(),
		st:        st,
		byLayer:   map[string]int{},
	}
}

// AddLayerUpdate registers a pending ref change for l. Only legal in
// Pending; a duplicate registration for the same layer is rejected (spec.md
// §4.G).
func (t *Transaction) AddLayerUpdate(l layer.Layer, newOid store.Oid) error {
	if t.State != Pending {
		return jinerr.New(jinerr.KindInternal, "cannot add layer update: transaction is %s, not pending", t.State)
	}
	key := l.RefPath()
	if _, dup := t.byLayer[key]; dup {
		return jinerr.New(jinerr.KindInternal, "duplicate layer update for %s", key)
	}
	t.byLayer[key] = len(t.updates)
	t.updates = append(t.updates, update{layer: l, newOid: newOid})
	return nil
}

// reservationName is the reservation ref for one of this transaction's
// layer updates: refs/jin/staging/<tx-id>/<layer-ref-basename>.
func (t *Transaction) reservationName(u update) string {
	return path.Join(reservationRoot, t.ID.String(), path.Base(u.layer.RefPath()))
}

// Prepare snapshots every target layer ref's current value and creates a
// reservation pointing at the new oid for each, transitioning to Prepared
// (spec.md §4.G).
func (t *Transaction) Prepare() error {
	if t.State != Pending {
		return jinerr.New(jinerr.KindInternal, "cannot prepare: transaction is %s, not pending", t.State)
	}
	for i, u := range t.updates {
		ref, err := t.st.GetRef(u.layer.RefPath())
		if err != nil {
			return fmt.Errorf("snapshot ref %s: %w", u.layer.RefPath(), err)
		}
		if ref != nil {
			oid := ref.Target
			t.updates[i].snapshot = &oid
		}
		if err := t.st.CreateRef(t.reservationName(u), u.newOid, true, "jin: prepare "+t.ID.String()); err != nil {
			return fmt.Errorf("create reservation for %s: %w", u.layer.RefPath(), err)
		}
	}
	t.State = Prepared
	return nil
}

// Commit applies every prepared update in layer-rank order, using a CAS
// guard per ref. On the first failure it restores every ref already
// updated to its snapshot, deletes all reservations, transitions to
// Aborted, and surfaces TransactionConflict — the caller may retry (spec.md
// §4.G, §6.5 exit code 2). On success it deletes the reservations and
// transitions to Committed.
func (t *Transaction) Commit() (uuid.UUID, error) {
	if t.State != Prepared {
		return uuid.Nil, jinerr.New(jinerr.KindInternal, "cannot commit: transaction is %s, not prepared", t.State)
	}

	applied := make([]update, 0, len(t.updates))
	for _, u := range t.updates {
		if err := t.st.CheckAndSetReference(u.layer.RefPath(), u.snapshot, u.newOid); err != nil {
			t.rollback(applied)
			t.deleteReservations()
			t.State = Aborted
			return uuid.Nil, jinerr.Wrap(jinerr.KindTransaction, err).WithPath(u.layer.RefPath()).WithHint("retry the commit")
		}
		applied = append(applied, u)
	}

	t.deleteReservations()
	t.State = Committed
	return t.ID, nil
}

// rollback restores every already-applied update's ref to its pre-commit
// snapshot (deleting it if the snapshot was "ref did not exist").
func (t *Transaction) rollback(applied []update) {
	for _, u := range applied {
		if u.snapshot != nil {
			_ = t.st.CreateRef(u.layer.RefPath(), *u.snapshot, true, "jin: rollback "+t.ID.String())
		} else {
			_ = t.st.DeleteRef(u.layer.RefPath())
		}
	}
}

// Abort deletes reservations and restores any updates already applied
// (defensive; Abort is normally called before Commit has touched anything).
func (t *Transaction) Abort() {
	t.rollback(t.updates)
	t.deleteReservations()
	t.State = Aborted
}

func (t *Transaction) deleteReservations() {
	for _, u := range t.updates {
		_ = t.st.DeleteRef(t.reservationName(u))
	}
}

// RepairOrphanReservations deletes reservation refs under refs/jin/staging/*
// that belong to no transaction this process knows about — the repair
// command's recovery path for a process that crashed between Prepare and
// Commit/Abort (spec.md §5, §6.3).
func RepairOrphanReservations(st *store.Store, dryRun bool) ([]string, error) {
	refs, err := st.ListRefsByGlob(reservationRoot + "/**")
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	var removed []string
	for _, ref := range refs {
		removed = append(removed, ref.Name)
		if !dryRun {
			if err := st.DeleteRef(ref.Name); err != nil {
				return removed, fmt.Errorf("delete orphan reservation %s: %w", ref.Name, err)
			}
		}
	}
	return removed, nil
}
