package repository

import (
	"context"

	"macro-canary/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createMacroEventsTable = `
CREATE TABLE IF NOT EXISTS macro_events (
    hash         TEXT        PRIMARY KEY,
    event        TEXT        NOT NULL,
    importance   INT         NOT NULL,
    currency     TEXT        NOT NULL,
    event_date   DATE        NOT NULL,
    event_time   TEXT        NOT NULL,
    previous     TEXT        NOT NULL DEFAULT '',
    forecast     TEXT        NOT NULL DEFAULT '',
    actual       TEXT        NOT NULL DEFAULT '',
    process_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_macro_events_event_date
    ON macro_events (event_date DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// EventRepository stores delivered calendar events keyed by message
// fingerprint. The hash column is the dedup ledger; the remaining columns
// keep the event fields for inspection.
type EventRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewEventRepository(pool PgxPool, tracer trace.Tracer) *EventRepository {
	return &EventRepository{pool: pool, tracer: tracer}
}

func (r *EventRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "event-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createMacroEventsTable)
	return err
}

// LoadKnownHashes returns every fingerprint ever recorded. Called once at
// startup to seed the in-memory ledger.
func (r *EventRepository) LoadKnownHashes(ctx context.Context) (map[string]struct{}, error) {
	_, span := r.tracer.Start(ctx, "event-repo.load-known-hashes")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT hash FROM macro_events`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		known[hash] = struct{}{}
	}
	return known, rows.Err()
}

// InsertEvent records a delivered event. Re-inserting an existing
// fingerprint is a no-op so reconnect-and-retry paths stay safe.
func (r *EventRepository) InsertEvent(ctx context.Context, hash string, e domain.Event) error {
	_, span := r.tracer.Start(ctx, "event-repo.insert-event")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO macro_events (hash, event, importance, currency, event_date, event_time, previous, forecast, actual)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (hash) DO NOTHING`,
		hash, e.Name, e.Importance, e.Currency, e.Date, e.Time, e.Previous, e.Forecast, e.Actual,
	)
	return err
}
