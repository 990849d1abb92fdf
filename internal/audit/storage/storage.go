package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/visai-labs/extraction-be/internal/events"
	"github.com/visai-labs/extraction-be/shared/postgresql"
)

// Storage persists audited lifecycle events
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

// RecordEvent inserts one lifecycle event into the audit trail. Re-delivered
// events are deduplicated on event_id.
func (s *Storage) RecordEvent(ctx context.Context, ev *events.Event) error {
	query := `
		INSERT INTO extraction_events (
			event_id, extraction_id, event_type,
			status, cause, occurred_at, recorded_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7
		)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		ev.EventID,
		ev.ExtractionID,
		ev.Type,
		ev.Status,
		ev.Cause,
		ev.OccurredAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}
