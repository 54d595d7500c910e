package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
)

// Clock supplies the current time. Stores default to UTCNow; tests inject a
// fixed clock.
type Clock func() time.Time

// UTCNow is the default Clock. The whole process works in UTC.
func UTCNow() time.Time { return time.Now().UTC() }

// EventStoreInterface is the append-only log of visitor domain events.
// Append stamps the record id and, when the producer left it unset, the
// occurrence timestamp. FindAll makes no ordering promise; implementations
// typically return records in id order.
type EventStoreInterface interface {
	Append(ctx context.Context, event visitor.DomainEvent) (visitor.DomainEvent, error)
	FindAll(ctx context.Context) ([]visitor.DomainEvent, error)
	DeleteAll(ctx context.Context) error
}

// SnapshotStoreInterface holds the mutable per-aggregate snapshot rows.
// Save applies optimistic concurrency on Version; Upsert is the
// find-or-noop, patch, save path that keeps at most one row per aggregate.
type SnapshotStoreInterface interface {
	FindFirstByAggregateID(ctx context.Context, aggregateID uuid.UUID) (*visitor.VisitorStateSnapshot, error)
	Save(ctx context.Context, snapshot *visitor.VisitorStateSnapshot) (*visitor.VisitorStateSnapshot, error)
	Upsert(ctx context.Context, state *visitor.VisitorState) (*visitor.VisitorStateSnapshot, error)
}
