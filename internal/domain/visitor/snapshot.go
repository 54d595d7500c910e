package visitor

import (
	"time"

	"github.com/google/uuid"
)

// VisitorStateSnapshot is a VisitorState with persistence bookkeeping. The
// snapshot store assigns SnapshotID on first save; Version starts at 0 and is
// incremented by the store on every persisted mutation. SnapshotID == 0 means
// the snapshot has never been saved.
type VisitorStateSnapshot struct {
	VisitorState
	SnapshotID int64
	Version    int64
}

// NoopSnapshot is the synthetic base used when an aggregate has no snapshot
// yet: it carries only the aggregate id, ready to be patched and saved.
func NoopSnapshot(aggregateID uuid.UUID) *VisitorStateSnapshot {
	return &VisitorStateSnapshot{VisitorState: VisitorState{AggregateID: aggregateID}}
}

// SnapshotFromState wraps a fully-built state into an unsaved snapshot.
func SnapshotFromState(state *VisitorState) *VisitorStateSnapshot {
	return &VisitorStateSnapshot{VisitorState: *state}
}

// PatchWith merges the incoming state into the snapshot in place and returns
// the snapshot. The merge is non-destructive by absence: a nil incoming field
// keeps the snapshot's value, an equal incoming value keeps the snapshot's
// value, and only a present, differing value overwrites. Callers therefore
// cannot clear a field through a patch.
func (s *VisitorStateSnapshot) PatchWith(state *VisitorState) *VisitorStateSnapshot {
	if state.AggregateID != uuid.Nil && state.AggregateID != s.AggregateID {
		s.AggregateID = state.AggregateID
	}
	patchString(&s.Name, state.Name)
	patchTime(&s.ExpireAt, state.ExpireAt)
	patchTime(&s.DeliveredAt, state.DeliveredAt)
	patchString(&s.LastDoorID, state.LastDoorID)
	patchTime(&s.LastDoorEnteredAt, state.LastDoorEnteredAt)
	patchTime(&s.OccurredAt, state.OccurredAt)
	return s
}

func patchString(base **string, incoming *string) {
	if incoming == nil {
		return
	}
	if *base != nil && **base == *incoming {
		return
	}
	v := *incoming
	*base = &v
}

func patchTime(base **time.Time, incoming *time.Time) {
	if incoming == nil {
		return
	}
	if *base != nil && (*base).Equal(*incoming) {
		return
	}
	v := *incoming
	*base = &v
}
