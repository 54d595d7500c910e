package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
	"github.com/example/visitor-access/internal/infrastructure/store"
)

// upsertAttempts bounds retries after a lost optimistic concurrency race.
// The store itself never retries; the projector, as a caller, may.
const upsertAttempts = 3

// Projector folds consumed events into per-visitor snapshots. Each envelope
// becomes a sparse state delta which the snapshot store patches in.
type Projector struct {
	snapshots store.SnapshotStoreInterface
}

func NewProjector(snapshots store.SnapshotStoreInterface) *Projector {
	return &Projector{snapshots: snapshots}
}

// HandleEvent is the Kafka message handler: decode the envelope, project the
// event into a state delta and upsert the snapshot.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var env store.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	event, err := env.ToDomainEvent()
	if err != nil {
		// Unknown variants are skipped, not errored: a newer producer may
		// already emit kinds this projector does not know.
		log.Printf("[Projector] Skipping message: %v", err)
		return nil
	}

	state, err := new(visitor.VisitorState).Mutate(event)
	if err != nil {
		return err
	}
	if state.AggregateID == uuid.Nil {
		// Only registration sets the aggregate id during projection; the
		// other variants carry it on the event itself.
		state.AggregateID = event.AggregateID()
	}

	for attempt := 1; ; attempt++ {
		_, err = p.snapshots.Upsert(ctx, state)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) || attempt == upsertAttempts {
			return fmt.Errorf("failed to upsert snapshot for %s: %w", state.AggregateID, err)
		}
		log.Printf("[Projector] Version conflict for %s, retrying (%d/%d)", state.AggregateID, attempt, upsertAttempts)
	}
}
