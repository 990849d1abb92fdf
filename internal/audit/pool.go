package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/visai-labs/extraction-be/internal/events"
)

// spawnPool spawns N recorder goroutines based on concurrency configuration
func (a *Auditor) spawnPool(ctx context.Context) {
	a.logger.Info("Spawning audit recorder pool",
		slog.Int("concurrency", a.concurrency),
	)

	for i := 0; i < a.concurrency; i++ {
		a.wg.Add(1)
		go a.recorderLoop(ctx, i)
	}
}

// recorderLoop is the main processing loop for each recorder goroutine
func (a *Auditor) recorderLoop(ctx context.Context, workerNum int) {
	defer a.wg.Done()

	workerName := fmt.Sprintf("audit-%d", workerNum)
	a.logger.Debug("Recorder started",
		slog.String("worker", workerName),
	)

	for {
		select {
		case <-a.stopChan:
			a.logger.Debug("Recorder stopping - stop requested",
				slog.String("worker", workerName),
			)
			return

		case <-ctx.Done():
			a.logger.Debug("Recorder stopping - context canceled",
				slog.String("worker", workerName),
			)
			return

		case delivery, ok := <-a.eventsChan:
			if !ok {
				return
			}
			a.handleDelivery(ctx, workerName, delivery)
		}
	}
}

// handleDelivery records one event. Malformed messages are NACKed without
// requeue; store failures are assumed transient and requeued.
func (a *Auditor) handleDelivery(ctx context.Context, workerName string, delivery amqp.Delivery) {
	var ev events.Event
	if err := json.Unmarshal(delivery.Body, &ev); err != nil || ev.ExtractionID == "" {
		a.logger.Error("Discarding malformed lifecycle event",
			slog.String("worker", workerName),
			slog.String("body", string(delivery.Body)),
		)
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			a.logger.Error("Failed to NACK malformed event",
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	if err := a.store.RecordEvent(ctx, &ev); err != nil {
		a.logger.Error("Failed to record lifecycle event",
			slog.String("worker", workerName),
			slog.String("extraction_id", ev.ExtractionID),
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			a.logger.Error("Failed to NACK event",
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		a.logger.Error("Failed to ACK event",
			slog.String("worker", workerName),
			slog.String("extraction_id", ev.ExtractionID),
			slog.String("error", ackErr.Error()),
		)
		return
	}

	a.logger.Debug("Lifecycle event recorded",
		slog.String("worker", workerName),
		slog.String("extraction_id", ev.ExtractionID),
		slog.String("type", ev.Type),
	)
}
