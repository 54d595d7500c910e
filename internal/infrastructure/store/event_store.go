package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/visitor-access/internal/domain/visitor"
	"github.com/example/visitor-access/internal/infrastructure/kafka"
)

// EventStore is an in-memory event log. It backs tests and local runs; the
// Postgres and DynamoDB stores are the durable implementations.
type EventStore struct {
	mu       sync.RWMutex
	events   []visitor.DomainEvent
	nextID   int64
	now      Clock
	producer *kafka.Producer
}

func NewEventStore(producer *kafka.Producer) *EventStore {
	return &EventStore{nextID: 1, now: UTCNow, producer: producer}
}

// WithClock replaces the store's time source. Used by tests.
func (es *EventStore) WithClock(now Clock) *EventStore {
	es.now = now
	return es
}

// Append stamps the next record id (and occurredAt, when unset), stores the
// event and publishes it to Kafka when a producer is attached.
func (es *EventStore) Append(ctx context.Context, event visitor.DomainEvent) (visitor.DomainEvent, error) {
	if event == nil {
		return nil, ErrNilEvent
	}

	es.mu.Lock()
	occurredAt := event.OccurredAt()
	if occurredAt.IsZero() {
		occurredAt = es.now()
	}
	stored, err := rehydrate(event, es.nextID, occurredAt)
	if err != nil {
		es.mu.Unlock()
		return nil, err
	}
	es.nextID++
	es.events = append(es.events, stored)
	es.mu.Unlock()

	if es.producer != nil {
		if err := es.producer.Publish(ctx, stored.AggregateID().String(), NewEnvelope(stored)); err != nil {
			return nil, fmt.Errorf("failed to publish event: %w", err)
		}
	}

	return stored, nil
}

// FindAll returns all stored events in record id order.
func (es *EventStore) FindAll(ctx context.Context) ([]visitor.DomainEvent, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	all := make([]visitor.DomainEvent, len(es.events))
	copy(all, es.events)
	return all, nil
}

// DeleteAll purges the log. Test fixtures only.
func (es *EventStore) DeleteAll(ctx context.Context) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.events = nil
	return nil
}

// rehydrate builds the stored form of a transient event: same variant fields,
// with the store-assigned record id and occurrence timestamp.
func rehydrate(event visitor.DomainEvent, recordID int64, occurredAt time.Time) (visitor.DomainEvent, error) {
	switch e := event.(type) {
	case *visitor.VisitorRegistered:
		return visitor.RehydrateVisitorRegistered(recordID, e.AggregateID(), occurredAt, e.Name(), e.ExpireAt()), nil
	case *visitor.PassCardDelivered:
		return visitor.RehydratePassCardDelivered(recordID, e.AggregateID(), occurredAt), nil
	case *visitor.EnteredTheDoor:
		return visitor.RehydrateEnteredTheDoor(recordID, e.AggregateID(), occurredAt, e.DoorID()), nil
	default:
		return nil, fmt.Errorf("unsupported event variant %q", event.Kind())
	}
}
