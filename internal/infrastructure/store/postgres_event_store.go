package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/example/visitor-access/internal/domain/visitor"
	"github.com/example/visitor-access/internal/infrastructure/kafka"
)

// PostgresEventStore persists events in a single domain_events table,
// discriminated by the event_type column. Variant columns are nullable and
// populated only for the variants that carry them.
type PostgresEventStore struct {
	db       *sql.DB
	producer *kafka.Producer
	now      Clock
}

func NewPostgresEventStore(db *sql.DB, producer *kafka.Producer) *PostgresEventStore {
	return &PostgresEventStore{db: db, producer: producer, now: UTCNow}
}

// WithClock replaces the store's time source. Used by tests.
func (es *PostgresEventStore) WithClock(now Clock) *PostgresEventStore {
	es.now = now
	return es
}

// Append inserts the event, letting the id sequence assign the record id and
// stamping occurred_at when the producer left it unset. The stored event is
// published to Kafka when a producer is attached.
func (es *PostgresEventStore) Append(ctx context.Context, event visitor.DomainEvent) (visitor.DomainEvent, error) {
	if event == nil {
		return nil, ErrNilEvent
	}

	occurredAt := event.OccurredAt()
	if occurredAt.IsZero() {
		occurredAt = es.now()
	}

	var name, doorID sql.NullString
	var expireAt sql.NullTime
	switch e := event.(type) {
	case *visitor.VisitorRegistered:
		name = sql.NullString{String: e.Name(), Valid: true}
		expireAt = sql.NullTime{Time: e.ExpireAt(), Valid: true}
	case *visitor.EnteredTheDoor:
		doorID = sql.NullString{String: e.DoorID(), Valid: true}
	case *visitor.PassCardDelivered:
	default:
		return nil, fmt.Errorf("unsupported event variant %q", event.Kind())
	}

	var recordID int64
	err := es.db.QueryRowContext(ctx,
		`INSERT INTO domain_events (aggregate_id, occurred_at, event_type, name, expire_at, door_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		event.AggregateID(), occurredAt, event.Kind(), name, expireAt, doorID,
	).Scan(&recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	stored, err := rehydrate(event, recordID, occurredAt)
	if err != nil {
		return nil, err
	}

	if es.producer != nil {
		if err := es.producer.Publish(ctx, stored.AggregateID().String(), NewEnvelope(stored)); err != nil {
			return nil, fmt.Errorf("failed to publish event: %w", err)
		}
	}

	return stored, nil
}

// FindAll returns every stored event in record id order.
func (es *PostgresEventStore) FindAll(ctx context.Context) ([]visitor.DomainEvent, error) {
	rows, err := es.db.QueryContext(ctx,
		`SELECT id, aggregate_id, occurred_at, event_type, name, expire_at, door_id
		 FROM domain_events
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []visitor.DomainEvent
	for rows.Next() {
		var (
			recordID     int64
			aggregateID  uuid.UUID
			occurredAt   time.Time
			eventType    string
			name, doorID sql.NullString
			expireAt     sql.NullTime
		)
		if err := rows.Scan(&recordID, &aggregateID, &occurredAt, &eventType, &name, &expireAt, &doorID); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		switch eventType {
		case visitor.EventVisitorRegistered:
			events = append(events, visitor.RehydrateVisitorRegistered(recordID, aggregateID, occurredAt, name.String, expireAt.Time))
		case visitor.EventPassCardDelivered:
			events = append(events, visitor.RehydratePassCardDelivered(recordID, aggregateID, occurredAt))
		case visitor.EventEnteredTheDoor:
			events = append(events, visitor.RehydrateEnteredTheDoor(recordID, aggregateID, occurredAt, doorID.String))
		default:
			log.Printf("[PostgresEventStore] Skipping record %d with unknown event type %q", recordID, eventType)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// DeleteAll purges the log. Test fixtures only.
func (es *PostgresEventStore) DeleteAll(ctx context.Context) error {
	if _, err := es.db.ExecContext(ctx, "DELETE FROM domain_events"); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

// ConnectPostgres opens and verifies a PostgreSQL connection.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
