package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/visai-labs/extraction-be/internal/events"
	"github.com/visai-labs/extraction-be/internal/extraction/cache"
	"github.com/visai-labs/extraction-be/internal/extraction/domain"
	"github.com/visai-labs/extraction-be/internal/ocr"
)

const (
	defaultConcurrency = 4
	defaultQueueSize   = 64
)

// Records is the durable record store consumed by the orchestrator. The
// sqlx-backed implementation lives in the storage subpackage; tests supply an
// in-memory fake.
type Records interface {
	Create(ctx context.Context, e *domain.Extraction) error
	GetByID(ctx context.Context, id string) (*domain.Extraction, error)
	CompleteRun(ctx context.Context, id, rawText string, fields domain.FieldMap) error
	MarkFailed(ctx context.Context, id string) error
	SubmitVerified(ctx context.Context, id string, fields domain.FieldMap) error
}

// Config holds orchestrator dependencies and tuning.
type Config struct {
	Logger      *slog.Logger
	Cache       cache.Store
	Records     Records
	Engine      ocr.Engine
	Events      events.Publisher
	Concurrency int
	QueueSize   int
}

// job is one scheduled pipeline run. The image bytes ride along so the
// pipeline never touches blob storage.
type job struct {
	ID    string
	Image []byte
}

// Orchestrator owns the extraction lifecycle: it accepts images, schedules
// pipeline runs off the request path on its worker pool, keeps the cache and
// the durable store in step, and serves read-through lookups. The durable
// store is authoritative; the cache only accelerates reads.
type Orchestrator struct {
	logger      *slog.Logger
	cache       cache.Store
	records     Records
	engine      ocr.Engine
	events      events.Publisher
	concurrency int

	jobsChan chan *job
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewOrchestrator creates an orchestrator. Workers do not run until Start.
func NewOrchestrator(cfg *Config) *Orchestrator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	publisher := cfg.Events
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Orchestrator{
		logger:      cfg.Logger,
		cache:       cfg.Cache,
		records:     cfg.Records,
		engine:      cfg.Engine,
		events:      publisher,
		concurrency: concurrency,
		jobsChan:    make(chan *job, queueSize),
		stopChan:    make(chan struct{}),
	}
}

// Submit accepts raw image bytes, writes the processing placeholder to both
// stores synchronously, and schedules the pipeline run. A read issued right
// after Submit returns therefore always finds the extraction.
func (o *Orchestrator) Submit(ctx context.Context, image []byte, sourceRef string) (*domain.Extraction, error) {
	now := time.Now()
	e := &domain.Extraction{
		ID:        uuid.New().String(),
		Status:    domain.StatusProcessing,
		SourceRef: sourceRef,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := o.records.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to accept extraction: %w", err)
	}
	o.cache.Put(e)

	select {
	case o.jobsChan <- &job{ID: e.ID, Image: image}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	o.logger.Info("Extraction accepted",
		slog.String("extraction_id", e.ID),
		slog.String("source", sourceRef),
		slog.Int("image_bytes", len(image)),
	)

	return e, nil
}

// Get returns the cached entry when present and otherwise falls back to the
// durable store, repopulating the cache from the row it finds. Unknown
// identifiers fail with domain.ErrExtractionNotFound.
func (o *Orchestrator) Get(ctx context.Context, id string) (*domain.Extraction, error) {
	if e, ok := o.cache.Get(id); ok {
		return e, nil
	}

	e, err := o.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	o.cache.Put(e)
	return e, nil
}

// SubmitVerified records a caller-corrected field map and moves the
// extraction to submitted. The transition is unconditional: it applies from
// any prior status, and repeated submission overwrites the verified map. Raw
// text already known for the extraction is preserved in the cache entry.
func (o *Orchestrator) SubmitVerified(ctx context.Context, id string, fields domain.FieldMap) (*domain.Extraction, error) {
	err := o.records.SubmitVerified(ctx, id, fields)
	if err != nil && !errors.Is(err, domain.ErrExtractionNotFound) {
		return nil, err
	}

	// First reference to an unknown id still yields a cache entry; its raw
	// text is simply unknown.
	e, getErr := o.Get(ctx, id)
	if getErr != nil {
		e = &domain.Extraction{ID: id, CreatedAt: time.Now()}
	}

	e.Status = domain.StatusSubmitted
	e.Verified = fields.Clone()
	e.UpdatedAt = time.Now()
	o.cache.Put(e)

	o.publish(ctx, events.TypeSubmitted, e.ID, domain.StatusSubmitted, "")

	o.logger.Info("Verified fields submitted",
		slog.String("extraction_id", id),
		slog.Int("field_count", len(fields)),
	)

	return e, nil
}

// process executes one pipeline run: normalize, recognize, extract. Stage
// failures are converted into the error status here and never crash the
// worker.
func (o *Orchestrator) process(ctx context.Context, j *job) {
	o.logger.Info("Pipeline run started",
		slog.String("extraction_id", j.ID),
	)

	raster, err := ocr.Normalize(j.Image)
	if err != nil {
		o.fail(ctx, j.ID, err)
		return
	}

	text, err := o.engine.Recognize(ctx, raster)
	if err != nil {
		o.fail(ctx, j.ID, err)
		return
	}

	fields := ocr.ExtractFields(text)
	o.complete(ctx, j.ID, text, fields)
}

// complete writes the pipeline result durably first, then refreshes the
// cache. A submission that landed mid-run keeps its submitted status and
// verified map.
func (o *Orchestrator) complete(ctx context.Context, id, rawText string, fields domain.FieldMap) {
	if err := o.records.CompleteRun(ctx, id, rawText, fields); err != nil {
		o.logger.Error("Failed to persist pipeline result",
			slog.String("extraction_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	e := o.refreshEntry(id)
	if e.Status != domain.StatusSubmitted {
		e.Status = domain.StatusCompleted
	}
	e.RawText = rawText
	e.HasText = true
	e.Fields = fields.Clone()
	e.Cause = ""
	e.UpdatedAt = time.Now()
	o.cache.Put(e)

	o.publish(ctx, events.TypeCompleted, id, domain.StatusCompleted, "")

	o.logger.Info("Pipeline run completed",
		slog.String("extraction_id", id),
		slog.Int("text_length", len(rawText)),
		slog.Int("field_count", len(fields)),
	)
}

// fail moves the extraction to the error status. The human-readable cause is
// kept on the cache entry and the event stream; the durable row only records
// the status.
func (o *Orchestrator) fail(ctx context.Context, id string, cause error) {
	if err := o.records.MarkFailed(ctx, id); err != nil {
		o.logger.Error("Failed to persist pipeline failure",
			slog.String("extraction_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	e := o.refreshEntry(id)
	if e.Status != domain.StatusSubmitted {
		e.Status = domain.StatusError
	}
	e.Cause = cause.Error()
	e.UpdatedAt = time.Now()
	o.cache.Put(e)

	o.publish(ctx, events.TypeFailed, id, domain.StatusError, cause.Error())

	o.logger.Warn("Pipeline run failed",
		slog.String("extraction_id", id),
		slog.String("cause", cause.Error()),
		slog.Bool("decode_failure", errors.Is(cause, ocr.ErrDecode)),
	)
}

// refreshEntry returns the current cache entry for id, or a minimal stand-in
// when the cache was cleared mid-run.
func (o *Orchestrator) refreshEntry(id string) *domain.Extraction {
	if e, ok := o.cache.Get(id); ok {
		return e
	}
	return &domain.Extraction{ID: id, CreatedAt: time.Now()}
}

// publish emits a lifecycle event; a broker failure is logged, never fatal.
func (o *Orchestrator) publish(ctx context.Context, eventType, id, status, cause string) {
	ev := events.Event{
		EventID:      uuid.New().String(),
		ExtractionID: id,
		Type:         eventType,
		Status:       status,
		Cause:        cause,
		OccurredAt:   time.Now(),
	}

	if err := o.events.Publish(ctx, ev); err != nil {
		o.logger.Warn("Failed to publish lifecycle event",
			slog.String("extraction_id", id),
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
