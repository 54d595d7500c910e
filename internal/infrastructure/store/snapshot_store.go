package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
)

// SnapshotStore is an in-memory snapshot store with the same optimistic
// concurrency behavior as the Postgres implementation.
type SnapshotStore struct {
	mu     sync.Mutex
	rows   map[int64]*visitor.VisitorStateSnapshot
	nextID int64
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{rows: make(map[int64]*visitor.VisitorStateSnapshot), nextID: 1}
}

// FindFirstByAggregateID returns the snapshot for the aggregate, or nil when
// none exists.
func (ss *SnapshotStore) FindFirstByAggregateID(ctx context.Context, aggregateID uuid.UUID) (*visitor.VisitorStateSnapshot, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.findLocked(aggregateID), nil
}

func (ss *SnapshotStore) findLocked(aggregateID uuid.UUID) *visitor.VisitorStateSnapshot {
	var found *visitor.VisitorStateSnapshot
	for _, row := range ss.rows {
		if row.AggregateID == aggregateID && (found == nil || row.SnapshotID < found.SnapshotID) {
			found = row
		}
	}
	if found == nil {
		return nil
	}
	out := *found
	return &out
}

// Save persists the snapshot. First save assigns the id and version 0; later
// saves bump the version by one, failing with ErrVersionConflict when the
// stored version no longer matches the one the caller read.
func (ss *SnapshotStore) Save(ctx context.Context, snapshot *visitor.VisitorStateSnapshot) (*visitor.VisitorStateSnapshot, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.saveLocked(snapshot)
}

func (ss *SnapshotStore) saveLocked(snapshot *visitor.VisitorStateSnapshot) (*visitor.VisitorStateSnapshot, error) {
	if snapshot.SnapshotID == 0 {
		snapshot.SnapshotID = ss.nextID
		ss.nextID++
		snapshot.Version = 0
	} else {
		stored, ok := ss.rows[snapshot.SnapshotID]
		if !ok || stored.Version != snapshot.Version {
			return nil, ErrVersionConflict
		}
		snapshot.Version++
	}

	row := *snapshot
	ss.rows[snapshot.SnapshotID] = &row
	return snapshot, nil
}

// Upsert patches the aggregate's snapshot with the incoming partial state and
// saves it, seeding a noop snapshot when the aggregate has none yet. The whole
// find-patch-save sequence runs under the store lock.
func (ss *SnapshotStore) Upsert(ctx context.Context, state *visitor.VisitorState) (*visitor.VisitorStateSnapshot, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if state.AggregateID == uuid.Nil {
		return nil, ErrMissingAggregateID
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	base := ss.findLocked(state.AggregateID)
	if base == nil {
		base = visitor.NoopSnapshot(state.AggregateID)
	}
	return ss.saveLocked(base.PatchWith(state))
}

// DeleteAll purges all rows. Test fixtures only.
func (ss *SnapshotStore) DeleteAll(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.rows = make(map[int64]*visitor.VisitorStateSnapshot)
	return nil
}
