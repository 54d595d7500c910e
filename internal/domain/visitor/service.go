package visitor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidDoorID   = errors.New("door id is required")
	ErrNoAggregateID   = errors.New("aggregate id is required")
	ErrInvalidExpireAt = errors.New("expire at is required")
)

// EventAppender is the slice of the event store the service needs.
type EventAppender interface {
	Append(ctx context.Context, event DomainEvent) (DomainEvent, error)
}

// Service handles visitor lifecycle operations by appending domain events.
type Service struct {
	events EventAppender
	newID  func() uuid.UUID
}

func NewService(events EventAppender) *Service {
	return &Service{events: events, newID: uuid.New}
}

// WithIDSource replaces the aggregate id generator. Used by tests.
func (s *Service) WithIDSource(newID func() uuid.UUID) *Service {
	s.newID = newID
	return s
}

// Register creates a new visitor aggregate and records its registration.
// Returns the stored event; its AggregateID identifies the visitor from
// here on.
func (s *Service) Register(ctx context.Context, name string, expireAt time.Time) (DomainEvent, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if expireAt.IsZero() {
		return nil, ErrInvalidExpireAt
	}

	return s.events.Append(ctx, NewVisitorRegistered(s.newID(), name, expireAt))
}

// DeliverPassCard records that the visitor received their pass card.
func (s *Service) DeliverPassCard(ctx context.Context, aggregateID uuid.UUID) (DomainEvent, error) {
	if aggregateID == uuid.Nil {
		return nil, ErrNoAggregateID
	}

	return s.events.Append(ctx, NewPassCardDelivered(aggregateID))
}

// EnterDoor records a door entry for the visitor.
func (s *Service) EnterDoor(ctx context.Context, aggregateID uuid.UUID, doorID string) (DomainEvent, error) {
	if aggregateID == uuid.Nil {
		return nil, ErrNoAggregateID
	}
	if doorID == "" {
		return nil, ErrInvalidDoorID
	}

	return s.events.Append(ctx, NewEnteredTheDoor(aggregateID, doorID))
}
