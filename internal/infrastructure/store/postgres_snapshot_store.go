package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
)

// PostgresSnapshotStore persists snapshot rows with an optimistic version
// column. The snapshots table has no unique constraint on aggregate_id;
// one-row-per-aggregate is maintained by the Upsert algorithm alone.
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx, so the find and save
// paths can run inside the Upsert transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FindFirstByAggregateID returns the snapshot for the aggregate, or nil when
// none exists.
func (ss *PostgresSnapshotStore) FindFirstByAggregateID(ctx context.Context, aggregateID uuid.UUID) (*visitor.VisitorStateSnapshot, error) {
	return ss.find(ctx, ss.db, aggregateID)
}

func (ss *PostgresSnapshotStore) find(ctx context.Context, q querier, aggregateID uuid.UUID) (*visitor.VisitorStateSnapshot, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, version, aggregate_id, name, expire_at, delivered_at, last_door_id, last_door_entered_at, occurred_at
		 FROM snapshots
		 WHERE aggregate_id = $1
		 ORDER BY id ASC
		 LIMIT 1`,
		aggregateID,
	)

	var snap visitor.VisitorStateSnapshot
	var name, lastDoorID sql.NullString
	var expireAt, deliveredAt, lastDoorEnteredAt, occurredAt sql.NullTime
	err := row.Scan(&snap.SnapshotID, &snap.Version, &snap.AggregateID,
		&name, &expireAt, &deliveredAt, &lastDoorID, &lastDoorEnteredAt, &occurredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	if name.Valid {
		snap.Name = &name.String
	}
	if lastDoorID.Valid {
		snap.LastDoorID = &lastDoorID.String
	}
	if expireAt.Valid {
		snap.ExpireAt = &expireAt.Time
	}
	if deliveredAt.Valid {
		snap.DeliveredAt = &deliveredAt.Time
	}
	if lastDoorEnteredAt.Valid {
		snap.LastDoorEnteredAt = &lastDoorEnteredAt.Time
	}
	if occurredAt.Valid {
		snap.OccurredAt = &occurredAt.Time
	}
	return &snap, nil
}

// Save inserts an unsaved snapshot at version 0, or updates an existing row
// with a compare-and-swap on the version column. A lost race surfaces as
// ErrVersionConflict.
func (ss *PostgresSnapshotStore) Save(ctx context.Context, snapshot *visitor.VisitorStateSnapshot) (*visitor.VisitorStateSnapshot, error) {
	return ss.save(ctx, ss.db, snapshot)
}

func (ss *PostgresSnapshotStore) save(ctx context.Context, q querier, snapshot *visitor.VisitorStateSnapshot) (*visitor.VisitorStateSnapshot, error) {
	if snapshot.SnapshotID == 0 {
		err := q.QueryRowContext(ctx,
			`INSERT INTO snapshots (version, aggregate_id, name, expire_at, delivered_at, last_door_id, last_door_entered_at, occurred_at)
			 VALUES (0, $1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			snapshot.AggregateID, snapshot.Name, snapshot.ExpireAt, snapshot.DeliveredAt,
			snapshot.LastDoorID, snapshot.LastDoorEnteredAt, snapshot.OccurredAt,
		).Scan(&snapshot.SnapshotID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert snapshot: %w", err)
		}
		snapshot.Version = 0
		return snapshot, nil
	}

	res, err := q.ExecContext(ctx,
		`UPDATE snapshots
		 SET version = version + 1, aggregate_id = $1, name = $2, expire_at = $3, delivered_at = $4,
		     last_door_id = $5, last_door_entered_at = $6, occurred_at = $7
		 WHERE id = $8 AND version = $9`,
		snapshot.AggregateID, snapshot.Name, snapshot.ExpireAt, snapshot.DeliveredAt,
		snapshot.LastDoorID, snapshot.LastDoorEnteredAt, snapshot.OccurredAt,
		snapshot.SnapshotID, snapshot.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update snapshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update snapshot: %w", err)
	}
	if affected == 0 {
		return nil, ErrVersionConflict
	}

	snapshot.Version++
	return snapshot, nil
}

// Upsert runs find-or-noop, patch and save inside one transaction. Concurrent
// upserts on the same aggregate resolve through the version CAS: the first
// commit wins, the loser gets ErrVersionConflict.
func (ss *PostgresSnapshotStore) Upsert(ctx context.Context, state *visitor.VisitorState) (*visitor.VisitorStateSnapshot, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if state.AggregateID == uuid.Nil {
		return nil, ErrMissingAggregateID
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	base, err := ss.find(ctx, tx, state.AggregateID)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = visitor.NoopSnapshot(state.AggregateID)
	}

	saved, err := ss.save(ctx, tx, base.PatchWith(state))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot upsert: %w", err)
	}
	return saved, nil
}

// DeleteAll purges all rows. Test fixtures only.
func (ss *PostgresSnapshotStore) DeleteAll(ctx context.Context) error {
	if _, err := ss.db.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
