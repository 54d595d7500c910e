package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
)

// Envelope is the JSON wire form of a stored event, published to Kafka by the
// event stores and decoded by the projector. Variant fields are omitted when
// the variant does not carry them; event_type holds the discriminator value
// verbatim.
type Envelope struct {
	RecordID    int64      `json:"record_id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	OccurredAt  time.Time  `json:"occurred_at"`
	Name        *string    `json:"name,omitempty"`
	ExpireAt    *time.Time `json:"expire_at,omitempty"`
	DoorID      *string    `json:"door_id,omitempty"`
}

// NewEnvelope wraps a stored event for publishing.
func NewEnvelope(event visitor.DomainEvent) Envelope {
	env := Envelope{
		RecordID:    event.RecordID(),
		AggregateID: event.AggregateID().String(),
		EventType:   event.Kind(),
		OccurredAt:  event.OccurredAt(),
	}
	switch e := event.(type) {
	case *visitor.VisitorRegistered:
		name := e.Name()
		expireAt := e.ExpireAt()
		env.Name = &name
		env.ExpireAt = &expireAt
	case *visitor.EnteredTheDoor:
		doorID := e.DoorID()
		env.DoorID = &doorID
	}
	return env
}

// ToDomainEvent rehydrates the enclosed event.
func (env Envelope) ToDomainEvent() (visitor.DomainEvent, error) {
	aggregateID, err := uuid.Parse(env.AggregateID)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregate id %q: %w", env.AggregateID, err)
	}

	switch env.EventType {
	case visitor.EventVisitorRegistered:
		var name string
		if env.Name != nil {
			name = *env.Name
		}
		var expireAt time.Time
		if env.ExpireAt != nil {
			expireAt = *env.ExpireAt
		}
		return visitor.RehydrateVisitorRegistered(env.RecordID, aggregateID, env.OccurredAt, name, expireAt), nil
	case visitor.EventPassCardDelivered:
		return visitor.RehydratePassCardDelivered(env.RecordID, aggregateID, env.OccurredAt), nil
	case visitor.EventEnteredTheDoor:
		var doorID string
		if env.DoorID != nil {
			doorID = *env.DoorID
		}
		return visitor.RehydrateEnteredTheDoor(env.RecordID, aggregateID, env.OccurredAt, doorID), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.EventType)
	}
}
