package visitor

import (
	"time"

	"github.com/google/uuid"
)

// Discriminator values persisted in the event_type column. These are part of
// the storage contract and must not change when the Go types are renamed.
const (
	EventVisitorRegistered = "VisitorRegisteredEvent"
	EventPassCardDelivered = "PassCardDeliveredEvent"
	EventEnteredTheDoor    = "EnteredTheDoorEvent"
)

// DomainEvent is the closed set of visitor lifecycle events. All variants
// share the record id, aggregate id and occurrence timestamp; the store
// assigns the first and, when the producer left it unset, the last.
type DomainEvent interface {
	RecordID() int64
	AggregateID() uuid.UUID
	OccurredAt() time.Time
	Kind() string
}

// header carries the fields common to every event variant. Fields are
// unexported: events are immutable once constructed, and only the stores
// produce fully-populated instances via the Rehydrate constructors.
type header struct {
	recordID    int64
	aggregateID uuid.UUID
	occurredAt  time.Time
}

func (h header) RecordID() int64        { return h.recordID }
func (h header) AggregateID() uuid.UUID { return h.aggregateID }
func (h header) OccurredAt() time.Time  { return h.occurredAt }

// VisitorRegistered is emitted when a visitor is registered at the front desk.
type VisitorRegistered struct {
	header
	name     string
	expireAt time.Time
}

// NewVisitorRegistered builds a transient event: no record id, occurredAt
// left for the store to stamp.
func NewVisitorRegistered(aggregateID uuid.UUID, name string, expireAt time.Time) *VisitorRegistered {
	return &VisitorRegistered{
		header:   header{aggregateID: aggregateID},
		name:     name,
		expireAt: expireAt,
	}
}

// RehydrateVisitorRegistered reconstructs a stored event. Only stores call this.
func RehydrateVisitorRegistered(recordID int64, aggregateID uuid.UUID, occurredAt time.Time, name string, expireAt time.Time) *VisitorRegistered {
	return &VisitorRegistered{
		header:   header{recordID: recordID, aggregateID: aggregateID, occurredAt: occurredAt},
		name:     name,
		expireAt: expireAt,
	}
}

func (e *VisitorRegistered) Kind() string        { return EventVisitorRegistered }
func (e *VisitorRegistered) Name() string        { return e.name }
func (e *VisitorRegistered) ExpireAt() time.Time { return e.expireAt }

// PassCardDelivered is emitted when the visitor receives their pass card.
type PassCardDelivered struct {
	header
}

func NewPassCardDelivered(aggregateID uuid.UUID) *PassCardDelivered {
	return &PassCardDelivered{header: header{aggregateID: aggregateID}}
}

// RehydratePassCardDelivered reconstructs a stored event. Only stores call this.
func RehydratePassCardDelivered(recordID int64, aggregateID uuid.UUID, occurredAt time.Time) *PassCardDelivered {
	return &PassCardDelivered{header: header{recordID: recordID, aggregateID: aggregateID, occurredAt: occurredAt}}
}

func (e *PassCardDelivered) Kind() string { return EventPassCardDelivered }

// EnteredTheDoor is emitted each time the visitor badges through a door.
type EnteredTheDoor struct {
	header
	doorID string
}

func NewEnteredTheDoor(aggregateID uuid.UUID, doorID string) *EnteredTheDoor {
	return &EnteredTheDoor{
		header: header{aggregateID: aggregateID},
		doorID: doorID,
	}
}

// RehydrateEnteredTheDoor reconstructs a stored event. Only stores call this.
func RehydrateEnteredTheDoor(recordID int64, aggregateID uuid.UUID, occurredAt time.Time, doorID string) *EnteredTheDoor {
	return &EnteredTheDoor{
		header: header{recordID: recordID, aggregateID: aggregateID, occurredAt: occurredAt},
		doorID: doorID,
	}
}

func (e *EnteredTheDoor) Kind() string   { return EventEnteredTheDoor }
func (e *EnteredTheDoor) DoorID() string { return e.doorID }
