// Package monitoring records served predictions for offline review.
package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
)

// PredictionEvent is one served prediction. The raw input never leaves
// the request path; only its hash is stored.
type PredictionEvent struct {
	ID              uuid.UUID
	InputHash       string
	PrimaryDisease  string
	Confidence      float64
	ConfidenceLevel string
	LatencyMs       int64
	OccurredAt      time.Time
}

// AuditStore persists prediction events.
type AuditStore interface {
	Record(ctx context.Context, event PredictionEvent) error
	Recent(ctx context.Context, limit int) ([]PredictionEvent, error)
	Close() error
}

// NopStore discards every event. Used when auditing is disabled.
type NopStore struct{}

// Record discards the event.
func (NopStore) Record(ctx context.Context, event PredictionEvent) error { return nil }

// Recent returns no events.
func (NopStore) Recent(ctx context.Context, limit int) ([]PredictionEvent, error) {
	return nil, nil
}

// Close is a no-op.
func (NopStore) Close() error { return nil }

// SQLStore persists prediction events to SQLite or Postgres.
type SQLStore struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewSQLStore wraps an open database handle and ensures the schema
// exists.
func NewSQLStore(db *sql.DB, logger *observability.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	s := &SQLStore{db: db, logger: logger.WithComponent("audit")}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open connects to the audit database using the given driver ("sqlite3"
// or "postgres") and DSN.
func Open(driver, dsn string, logger *observability.Logger) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	store, err := NewSQLStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS prediction_events (
			id TEXT PRIMARY KEY,
			input_hash TEXT NOT NULL,
			primary_disease TEXT NOT NULL,
			confidence REAL NOT NULL,
			confidence_level TEXT NOT NULL,
			latency_ms BIGINT NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create prediction_events table: %w", err)
	}
	return nil
}

// Record inserts one prediction event.
func (s *SQLStore) Record(ctx context.Context, event PredictionEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	query := `
		INSERT INTO prediction_events
			(id, input_hash, primary_disease, confidence, confidence_level, latency_ms, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID.String(), event.InputHash, event.PrimaryDisease,
		event.Confidence, event.ConfidenceLevel, event.LatencyMs, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("record prediction event: %w", err)
	}
	return nil
}

// Recent returns the newest events, newest first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]PredictionEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, input_hash, primary_disease, confidence, confidence_level, latency_ms, occurred_at
		FROM prediction_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query prediction events: %w", err)
	}
	defer rows.Close()

	var events []PredictionEvent
	for rows.Next() {
		var event PredictionEvent
		var id string
		if err := rows.Scan(&id, &event.InputHash, &event.PrimaryDisease,
			&event.Confidence, &event.ConfidenceLevel, &event.LatencyMs, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan prediction event: %w", err)
		}
		event.ID, _ = uuid.Parse(id)
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
