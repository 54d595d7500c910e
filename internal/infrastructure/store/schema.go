package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema for the two PostgreSQL tables. Record and snapshot ids come from
// sequences starting at 1 with step 1. aggregate_id on snapshots deliberately
// carries no unique constraint; the Upsert algorithm keeps it unique.
const schema = `
CREATE TABLE IF NOT EXISTS domain_events (
	id           BIGSERIAL PRIMARY KEY,
	aggregate_id UUID NOT NULL,
	occurred_at  TIMESTAMP NOT NULL,
	event_type   TEXT NOT NULL,
	name         TEXT,
	expire_at    TIMESTAMP,
	door_id      TEXT
);

CREATE INDEX IF NOT EXISTS idx_domain_events_aggregate_id ON domain_events (aggregate_id);

CREATE TABLE IF NOT EXISTS snapshots (
	id                   BIGSERIAL PRIMARY KEY,
	version              BIGINT NOT NULL DEFAULT 0,
	aggregate_id         UUID NOT NULL,
	name                 TEXT,
	expire_at            TIMESTAMP,
	delivered_at         TIMESTAMP,
	last_door_id         TEXT,
	last_door_entered_at TIMESTAMP,
	occurred_at          TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_snapshots_aggregate_id ON snapshots (aggregate_id);
`

// EnsureSchema creates the event and snapshot tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
