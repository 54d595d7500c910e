package visitor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unknownEvent stands in for a variant this projector does not know.
type unknownEvent struct {
	header
}

func (e *unknownEvent) Kind() string { return "VisitorLeftEvent" }

func TestMutate_VisitorRegistered(t *testing.T) {
	aggregateID := uuid.New()
	occurredAt := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	expireAt := occurredAt.Add(24 * time.Hour)

	state, err := new(VisitorState).Mutate(RehydrateVisitorRegistered(1, aggregateID, occurredAt, "test", expireAt))

	require.NoError(t, err)
	assert.Equal(t, aggregateID, state.AggregateID)
	require.NotNil(t, state.Name)
	assert.Equal(t, "test", *state.Name)
	require.NotNil(t, state.ExpireAt)
	assert.True(t, state.ExpireAt.Equal(expireAt))
	require.NotNil(t, state.OccurredAt)
	assert.True(t, state.OccurredAt.Equal(occurredAt))
	assert.Nil(t, state.DeliveredAt)
	assert.Nil(t, state.LastDoorID)
}

func TestMutate_PassCardDelivered(t *testing.T) {
	aggregateID := uuid.New()
	occurredAt := time.Date(2026, 9, 1, 10, 45, 0, 0, time.UTC)

	state, err := new(VisitorState).Mutate(RehydratePassCardDelivered(2, aggregateID, occurredAt))

	require.NoError(t, err)
	require.NotNil(t, state.DeliveredAt)
	assert.True(t, state.DeliveredAt.Equal(occurredAt))
	require.NotNil(t, state.OccurredAt)
	assert.True(t, state.OccurredAt.Equal(occurredAt))
	assert.Nil(t, state.Name)
}

func TestMutate_EnteredTheDoor(t *testing.T) {
	aggregateID := uuid.New()
	occurredAt := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)

	state, err := new(VisitorState).Mutate(RehydrateEnteredTheDoor(3, aggregateID, occurredAt, "IN-1"))

	require.NoError(t, err)
	require.NotNil(t, state.LastDoorID)
	assert.Equal(t, "IN-1", *state.LastDoorID)
	require.NotNil(t, state.LastDoorEnteredAt)
	assert.True(t, state.LastDoorEnteredAt.Equal(occurredAt))
	require.NotNil(t, state.OccurredAt)
	assert.True(t, state.OccurredAt.Equal(occurredAt))
}

func TestMutate_RegistrationOverwritesUnconditionally(t *testing.T) {
	aggregateID := uuid.New()
	first := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	state, err := new(VisitorState).Mutate(RehydrateVisitorRegistered(1, aggregateID, first, "old", first.Add(time.Hour)))
	require.NoError(t, err)
	_, err = state.Mutate(RehydrateVisitorRegistered(2, aggregateID, second, "new", second.Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, "new", *state.Name)
	assert.True(t, state.OccurredAt.Equal(second))
}

func TestMutate_UnknownEventIsNoop(t *testing.T) {
	aggregateID := uuid.New()
	occurredAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	state, err := new(VisitorState).Mutate(RehydrateVisitorRegistered(1, aggregateID, occurredAt, "test", occurredAt.Add(time.Hour)))
	require.NoError(t, err)
	before := *state

	after, err := state.Mutate(&unknownEvent{header: header{recordID: 99, aggregateID: aggregateID, occurredAt: occurredAt}})

	require.NoError(t, err)
	assert.Same(t, state, after)
	assert.Equal(t, before, *after)
}

func TestMutate_NilEvent(t *testing.T) {
	_, err := new(VisitorState).Mutate(nil)
	assert.ErrorIs(t, err, ErrNilEvent)
}

func TestFoldState_IsLeftFold(t *testing.T) {
	aggregateID := uuid.New()
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	events := []DomainEvent{
		RehydrateVisitorRegistered(1, aggregateID, t0, "test", t0.Add(24*time.Hour)),
		RehydratePassCardDelivered(2, aggregateID, t0.Add(time.Minute)),
		RehydrateEnteredTheDoor(3, aggregateID, t0.Add(2*time.Minute), "IN-1"),
		RehydrateEnteredTheDoor(4, aggregateID, t0.Add(3*time.Minute), "OUT-1"),
	}

	folded, err := FoldState(new(VisitorState), events...)
	require.NoError(t, err)

	pairwise := new(VisitorState)
	for _, e := range events {
		_, err := pairwise.Mutate(e)
		require.NoError(t, err)
	}

	assert.Equal(t, pairwise, folded)
	assert.Equal(t, "OUT-1", *folded.LastDoorID)
	assert.True(t, folded.DeliveredAt.Equal(t0.Add(time.Minute)))
	assert.True(t, folded.OccurredAt.Equal(t0.Add(3*time.Minute)))
}

func TestFoldState_StopsOnNilEvent(t *testing.T) {
	_, err := FoldState(new(VisitorState), NewPassCardDelivered(uuid.New()), nil)
	assert.ErrorIs(t, err, ErrNilEvent)
}
