package visitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAppender records appended events and stamps them like a store would.
type fakeAppender struct {
	appended []DomainEvent
	err      error
}

func (f *fakeAppender) Append(ctx context.Context, event DomainEvent) (DomainEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.appended = append(f.appended, event)

	occurredAt := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	switch e := event.(type) {
	case *VisitorRegistered:
		return RehydrateVisitorRegistered(int64(len(f.appended)), e.AggregateID(), occurredAt, e.Name(), e.ExpireAt()), nil
	case *PassCardDelivered:
		return RehydratePassCardDelivered(int64(len(f.appended)), e.AggregateID(), occurredAt), nil
	case *EnteredTheDoor:
		return RehydrateEnteredTheDoor(int64(len(f.appended)), e.AggregateID(), occurredAt, e.DoorID()), nil
	}
	return event, nil
}

func TestService_Register(t *testing.T) {
	appender := &fakeAppender{}
	aggregateID := uuid.New()
	svc := NewService(appender).WithIDSource(func() uuid.UUID { return aggregateID })
	expireAt := time.Now().UTC().Add(24 * time.Hour)

	stored, err := svc.Register(context.Background(), "test", expireAt)

	require.NoError(t, err)
	assert.Equal(t, aggregateID, stored.AggregateID())
	assert.Equal(t, EventVisitorRegistered, stored.Kind())
	assert.False(t, stored.OccurredAt().IsZero())

	require.Len(t, appender.appended, 1)
	registered := appender.appended[0].(*VisitorRegistered)
	assert.Equal(t, "test", registered.Name())
	assert.True(t, registered.OccurredAt().IsZero(), "service must leave occurredAt for the store")
}

func TestService_Register_Validation(t *testing.T) {
	svc := NewService(&fakeAppender{})

	_, err := svc.Register(context.Background(), "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Register(context.Background(), "test", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidExpireAt)
}

func TestService_DeliverPassCard(t *testing.T) {
	appender := &fakeAppender{}
	svc := NewService(appender)
	aggregateID := uuid.New()

	stored, err := svc.DeliverPassCard(context.Background(), aggregateID)

	require.NoError(t, err)
	assert.Equal(t, EventPassCardDelivered, stored.Kind())
	assert.Equal(t, aggregateID, stored.AggregateID())

	_, err = svc.DeliverPassCard(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrNoAggregateID)
}

func TestService_EnterDoor(t *testing.T) {
	appender := &fakeAppender{}
	svc := NewService(appender)
	aggregateID := uuid.New()

	stored, err := svc.EnterDoor(context.Background(), aggregateID, "IN-1")

	require.NoError(t, err)
	entered := stored.(*EnteredTheDoor)
	assert.Equal(t, "IN-1", entered.DoorID())

	_, err = svc.EnterDoor(context.Background(), aggregateID, "")
	assert.ErrorIs(t, err, ErrInvalidDoorID)

	_, err = svc.EnterDoor(context.Background(), uuid.Nil, "IN-1")
	assert.ErrorIs(t, err, ErrNoAggregateID)
}

func TestService_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("connection lost")
	svc := NewService(&fakeAppender{err: storeErr})

	_, err := svc.DeliverPassCard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storeErr)
}
