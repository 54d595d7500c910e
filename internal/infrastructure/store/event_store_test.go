package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/visitor-access/internal/domain/visitor"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestEventStore_AppendPolymorphicLog(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	es := NewEventStore(nil).WithClock(fixedClock(now))
	aggregateID := uuid.New()

	transients := []visitor.DomainEvent{
		visitor.NewVisitorRegistered(aggregateID, "test", now.Add(24*time.Hour)),
		visitor.NewPassCardDelivered(aggregateID),
		visitor.NewEnteredTheDoor(aggregateID, "IN-1"),
		visitor.NewEnteredTheDoor(aggregateID, "IN-2"),
		visitor.NewEnteredTheDoor(aggregateID, "OUT-2"),
		visitor.NewEnteredTheDoor(aggregateID, "OUT-1"),
	}
	for _, e := range transients {
		stored, err := es.Append(ctx, e)
		require.NoError(t, err)
		assert.False(t, stored.OccurredAt().IsZero())
	}

	all, err := es.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)

	kinds := make([]string, 0, 6)
	for i, e := range all {
		assert.Equal(t, int64(i+1), e.RecordID())
		assert.Equal(t, aggregateID, e.AggregateID())
		assert.True(t, e.OccurredAt().Equal(now))
		kinds = append(kinds, e.Kind())
	}
	assert.Equal(t, []string{
		visitor.EventVisitorRegistered,
		visitor.EventPassCardDelivered,
		visitor.EventEnteredTheDoor,
		visitor.EventEnteredTheDoor,
		visitor.EventEnteredTheDoor,
		visitor.EventEnteredTheDoor,
	}, kinds)

	registered := all[0].(*visitor.VisitorRegistered)
	assert.Equal(t, "test", registered.Name())
	assert.True(t, registered.ExpireAt().Equal(now.Add(24*time.Hour)))

	doors := []string{}
	for _, e := range all[2:] {
		doors = append(doors, e.(*visitor.EnteredTheDoor).DoorID())
	}
	assert.Equal(t, []string{"IN-1", "IN-2", "OUT-2", "OUT-1"}, doors)
}

func TestEventStore_AppendKeepsProducerTimestamp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	es := NewEventStore(nil).WithClock(fixedClock(now))
	aggregateID := uuid.New()

	supplied := now.Add(-time.Hour)
	stored, err := es.Append(ctx, visitor.RehydratePassCardDelivered(0, aggregateID, supplied))

	require.NoError(t, err)
	assert.True(t, stored.OccurredAt().Equal(supplied))
}

func TestEventStore_AppendNilEvent(t *testing.T) {
	es := NewEventStore(nil)

	_, err := es.Append(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilEvent)
}

func TestEventStore_RecordIDsAreMonotonicAcrossAggregates(t *testing.T) {
	ctx := context.Background()
	es := NewEventStore(nil)

	first, err := es.Append(ctx, visitor.NewPassCardDelivered(uuid.New()))
	require.NoError(t, err)
	second, err := es.Append(ctx, visitor.NewPassCardDelivered(uuid.New()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.RecordID())
	assert.Equal(t, int64(2), second.RecordID())
}

func TestEventStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	es := NewEventStore(nil)

	_, err := es.Append(ctx, visitor.NewPassCardDelivered(uuid.New()))
	require.NoError(t, err)

	require.NoError(t, es.DeleteAll(ctx))

	all, err := es.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
