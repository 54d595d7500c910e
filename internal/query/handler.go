package query

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
	"github.com/example/visitor-access/internal/infrastructure/store"
)

var ErrVisitorNotFound = errors.New("visitor not found")

// Handler serves the read side: snapshots by aggregate id and the raw event
// log. It never folds events at read time; the snapshot is the source for
// current state.
type Handler struct {
	snapshots store.SnapshotStoreInterface
	events    store.EventStoreInterface
}

func NewHandler(snapshots store.SnapshotStoreInterface, events store.EventStoreInterface) *Handler {
	return &Handler{snapshots: snapshots, events: events}
}

// GetVisitor returns the visitor's snapshot.
func (h *Handler) GetVisitor(ctx context.Context, aggregateID uuid.UUID) (*visitor.VisitorStateSnapshot, error) {
	snap, err := h.snapshots.FindFirstByAggregateID(ctx, aggregateID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrVisitorNotFound
	}
	return snap, nil
}

// ListEvents returns the full event log.
func (h *Handler) ListEvents(ctx context.Context) ([]visitor.DomainEvent, error) {
	return h.events.FindAll(ctx)
}
