package visitor

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

var ErrNilEvent = errors.New("event must not be nil")

// VisitorState is the materialized view of a visitor aggregate. Every field
// except AggregateID is optional: a nil pointer means the corresponding event
// has not been folded in yet. AggregateID uses uuid.Nil as its absent value.
type VisitorState struct {
	AggregateID       uuid.UUID
	Name              *string
	ExpireAt          *time.Time
	DeliveredAt       *time.Time
	LastDoorID        *string
	LastDoorEnteredAt *time.Time
	OccurredAt        *time.Time
}

// Mutate folds a single event into the state and returns the state for
// chaining. It is pure with respect to persistence: only the receiver is
// modified. Unknown event variants are logged and leave the state unchanged.
func (s *VisitorState) Mutate(event DomainEvent) (*VisitorState, error) {
	if event == nil {
		return nil, ErrNilEvent
	}
	switch e := event.(type) {
	case *VisitorRegistered:
		return s.onVisitorRegistered(e), nil
	case *PassCardDelivered:
		return s.onPassCardDelivered(e), nil
	case *EnteredTheDoor:
		return s.onEnteredTheDoor(e), nil
	default:
		log.Printf("[VisitorState] Fallback: unhandled event %q", event.Kind())
		return s, nil
	}
}

func (s *VisitorState) onVisitorRegistered(e *VisitorRegistered) *VisitorState {
	s.AggregateID = e.AggregateID()
	name := e.Name()
	expireAt := e.ExpireAt()
	occurredAt := e.OccurredAt()
	s.Name = &name
	s.ExpireAt = &expireAt
	s.OccurredAt = &occurredAt
	return s
}

func (s *VisitorState) onPassCardDelivered(e *PassCardDelivered) *VisitorState {
	occurredAt := e.OccurredAt()
	s.DeliveredAt = &occurredAt
	s.OccurredAt = &occurredAt
	return s
}

func (s *VisitorState) onEnteredTheDoor(e *EnteredTheDoor) *VisitorState {
	doorID := e.DoorID()
	occurredAt := e.OccurredAt()
	s.LastDoorID = &doorID
	s.LastDoorEnteredAt = &occurredAt
	s.OccurredAt = &occurredAt
	return s
}

// FoldState applies events left to right onto the given state.
func FoldState(state *VisitorState, events ...DomainEvent) (*VisitorState, error) {
	for _, event := range events {
		if _, err := state.Mutate(event); err != nil {
			return nil, err
		}
	}
	return state, nil
}
