package audit

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer configures QoS on the RabbitMQ channel and starts consuming
// the lifecycle event queue.
func (a *Auditor) setupConsumer() (<-chan amqp.Delivery, error) {
	channel := a.rabbitClient.GetChannel()
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}

	// Per-consumer prefetch keeps a slow insert from hoarding deliveries.
	if err := channel.Qos(a.prefetchCount, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := a.rabbitClient.Consume(a.consumerTag)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	a.logger.Info("Lifecycle event consumer started",
		slog.String("consumer_tag", a.consumerTag),
		slog.Int("prefetch_count", a.prefetchCount),
	)

	return deliveries, nil
}

// dispatch feeds deliveries to the worker pool until shutdown.
func (a *Auditor) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Event dispatcher stopped - context canceled")
			return

		case <-a.stopChan:
			a.logger.Info("Event dispatcher stopped - stop requested")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				a.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			select {
			case a.eventsChan <- delivery:
			case <-ctx.Done():
				a.logger.Info("Event dispatcher stopped while dispatching")
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					a.logger.Error("Failed to NACK event on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
