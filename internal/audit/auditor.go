// Package audit consumes the extraction lifecycle event stream and records
// every event durably. This is the external observability channel for
// pipeline failure detail: causes are not part of the extractions schema, so
// the audit trail is where they land.
package audit

import (
	"context"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/visai-labs/extraction-be/internal/events"
	"github.com/visai-labs/extraction-be/shared/rabbitmq"
)

// EventStore persists audited lifecycle events.
type EventStore interface {
	RecordEvent(ctx context.Context, ev *events.Event) error
}

// Config holds auditor configuration
type Config struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Store         EventStore
	Concurrency   int
	PrefetchCount int
	ConsumerTag   string
}

// Auditor consumes lifecycle events from RabbitMQ and writes each one to the
// event store through a pool of workers.
type Auditor struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	store         EventStore
	concurrency   int
	prefetchCount int
	consumerTag   string

	eventsChan chan amqp.Delivery
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewAuditor creates a new auditor instance
func NewAuditor(cfg *Config) *Auditor {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency * 2
	}

	return &Auditor{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		store:         cfg.Store,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		consumerTag:   cfg.ConsumerTag,
		eventsChan:    make(chan amqp.Delivery, concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming lifecycle events. It blocks until the context is
// canceled or the delivery channel closes.
func (a *Auditor) Start(ctx context.Context) error {
	deliveries, err := a.setupConsumer()
	if err != nil {
		return err
	}

	a.spawnPool(ctx)
	a.dispatch(ctx, deliveries)

	return nil
}

// Stop gracefully stops the auditor
func (a *Auditor) Stop() {
	a.logger.Info("Stopping auditor...")
	close(a.stopChan)
	a.wg.Wait()
	a.logger.Info("Auditor stopped")
}
