package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/visai-labs/extraction-be/internal/extraction/domain"
	"github.com/visai-labs/extraction-be/shared/postgresql"
)

// Storage is the durable extraction record store. It is authoritative over
// the in-memory cache: on any disagreement the row here wins.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// record mirrors one row of the extractions table.
type record struct {
	ExtractionID  string          `db:"extraction_id"`
	SourcePath    sql.NullString  `db:"source_path"`
	Status        string          `db:"status"`
	RawText       sql.NullString  `db:"raw_text"`
	ExtractedJSON domain.FieldMap `db:"extracted_json"`
	VerifiedJSON  domain.FieldMap `db:"verified_json"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// NewStorage creates a Storage backed by the given PostgreSQL client.
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

// Create inserts the placeholder row for a freshly accepted extraction.
func (s *Storage) Create(ctx context.Context, e *domain.Extraction) error {
	query := `
		INSERT INTO extractions (
			extraction_id, source_path, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		e.ID,
		e.SourceRef,
		e.Status,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create extraction: %w", err)
	}

	return nil
}

// GetByID fetches one extraction row by its identifier.
func (s *Storage) GetByID(ctx context.Context, id string) (*domain.Extraction, error) {
	var rec record
	query := `
		SELECT
			extraction_id, source_path, status, raw_text,
			extracted_json, verified_json, created_at, updated_at
		FROM extractions
		WHERE extraction_id = $1
	`

	err := s.db.GetContext(ctx, &rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}

	return rec.toDomain(), nil
}

// CompleteRun records a successful pipeline run: raw text plus extracted
// fields in one transaction. The row is locked first so a submission racing
// with completion cannot be lost; a status that already advanced to submitted
// is preserved while the pipeline output is still recorded.
func (s *Storage) CompleteRun(ctx context.Context, id, rawText string, fields domain.FieldMap) error {
	return s.updateLocked(ctx, id, func(tx *sqlx.Tx, current string) error {
		status := domain.StatusCompleted
		if current == domain.StatusSubmitted {
			status = current
		}

		query := `
			UPDATE extractions
			SET status = $1,
			    raw_text = $2,
			    extracted_json = $3,
			    updated_at = NOW()
			WHERE extraction_id = $4
		`
		if _, err := tx.ExecContext(ctx, query, status, rawText, fields, id); err != nil {
			return fmt.Errorf("failed to record pipeline result: %w", err)
		}
		return nil
	})
}

// MarkFailed moves the row to the error status. The failure cause lives in
// the cache entry and the lifecycle event stream, not in this schema.
func (s *Storage) MarkFailed(ctx context.Context, id string) error {
	return s.updateLocked(ctx, id, func(tx *sqlx.Tx, current string) error {
		status := domain.StatusError
		if current == domain.StatusSubmitted {
			status = current
		}

		query := `
			UPDATE extractions
			SET status = $1,
			    updated_at = NOW()
			WHERE extraction_id = $2
		`
		if _, err := tx.ExecContext(ctx, query, status, id); err != nil {
			return fmt.Errorf("failed to mark extraction failed: %w", err)
		}
		return nil
	})
}

// SubmitVerified overwrites the verified field map and moves the row to
// submitted, from any prior status. Repeated submission simply overwrites.
func (s *Storage) SubmitVerified(ctx context.Context, id string, fields domain.FieldMap) error {
	return s.updateLocked(ctx, id, func(tx *sqlx.Tx, _ string) error {
		query := `
			UPDATE extractions
			SET status = $1,
			    verified_json = $2,
			    updated_at = NOW()
			WHERE extraction_id = $3
		`
		if _, err := tx.ExecContext(ctx, query, domain.StatusSubmitted, fields, id); err != nil {
			return fmt.Errorf("failed to record submission: %w", err)
		}
		return nil
	})
}

// updateLocked wraps read-mutate-commit: lock the row, apply the mutation,
// commit. Missing rows surface as ErrExtractionNotFound.
func (s *Storage) updateLocked(ctx context.Context, id string, mutate func(tx *sqlx.Tx, current string) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	lock := `SELECT status FROM extractions WHERE extraction_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &current, lock, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrExtractionNotFound
		}
		return fmt.Errorf("failed to lock extraction: %w", err)
	}

	if err := mutate(tx, current); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit extraction update: %w", err)
	}

	s.logger.Debug("Extraction row updated",
		slog.String("extraction_id", id),
	)

	return nil
}

func (r *record) toDomain() *domain.Extraction {
	e := &domain.Extraction{
		ID:        r.ExtractionID,
		Status:    r.Status,
		Fields:    r.ExtractedJSON,
		Verified:  r.VerifiedJSON,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.SourcePath.Valid {
		e.SourceRef = r.SourcePath.String
	}
	if r.RawText.Valid {
		e.RawText = r.RawText.String
		e.HasText = true
	}
	return e
}
