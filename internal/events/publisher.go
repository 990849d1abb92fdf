package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/visai-labs/extraction-be/shared/rabbitmq"
)

// RabbitPublisher publishes lifecycle events to the configured RabbitMQ
// exchange as persistent JSON messages.
type RabbitPublisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewRabbitPublisher wraps an established RabbitMQ client.
func NewRabbitPublisher(client *rabbitmq.Client, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		client: client,
		logger: logger,
	}
}

// Publish marshals the event and publishes it with retry.
func (p *RabbitPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Lifecycle event published",
		slog.String("event_id", ev.EventID),
		slog.String("extraction_id", ev.ExtractionID),
		slog.String("type", ev.Type),
	)

	return nil
}
