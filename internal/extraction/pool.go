package extraction

import (
	"context"
	"fmt"
	"log/slog"
)

// Start spawns the pipeline worker pool. Submission only enqueues; these
// workers are the only goroutines that run pipeline stages. Each job is
// enqueued exactly once, so no two runs for the same extraction can execute
// concurrently.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Info("Spawning pipeline worker pool",
		slog.Int("concurrency", o.concurrency),
	)

	for i := 0; i < o.concurrency; i++ {
		o.wg.Add(1)
		go o.workerLoop(ctx, i)
	}
}

// Stop signals all workers and waits for in-flight pipeline runs to finish.
// Runs are never cancelled once started.
func (o *Orchestrator) Stop() {
	o.logger.Info("Stopping pipeline workers...")
	close(o.stopChan)
	o.wg.Wait()
	o.logger.Info("Pipeline workers stopped")
}

// workerLoop is the processing loop for one pool worker.
func (o *Orchestrator) workerLoop(ctx context.Context, workerNum int) {
	defer o.wg.Done()

	workerName := fmt.Sprintf("pipeline-%d", workerNum)
	o.logger.Debug("Pipeline worker started",
		slog.String("worker", workerName),
	)

	for {
		select {
		case <-o.stopChan:
			o.logger.Debug("Pipeline worker stopping - stop requested",
				slog.String("worker", workerName),
			)
			return

		case <-ctx.Done():
			o.logger.Debug("Pipeline worker stopping - context canceled",
				slog.String("worker", workerName),
			)
			return

		case j, ok := <-o.jobsChan:
			if !ok {
				o.logger.Debug("Pipeline worker stopping - queue closed",
					slog.String("worker", workerName),
				)
				return
			}
			o.process(ctx, j)
		}
	}
}
