package main

import (
	"context"
	"log/slog"
	"time"
)

const DEFAULT_CYCLE_TIMEOUT = 15 * time.Minute

func main() {
	slog.Info("Starting campaign scheduler job")
	start := time.Now()

	cycleTimeout := conf.SchedulerConfigs.CycleTimeout
	if cycleTimeout <= 0 {
		cycleTimeout = DEFAULT_CYCLE_TIMEOUT
	}

	totalProcessed := 0
	totalErrors := 0
	for _, instanceID := range conf.InstanceIDs {
		slog.Debug("Start scheduler cycle for instance", slog.String("instanceID", instanceID))
		instanceStart := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
		summary := schedulerService.RunCycle(ctx, instanceID)
		cancel()

		slog.Info("Finished scheduler cycle for instance",
			slog.String("instanceID", instanceID),
			slog.String("duration", time.Since(instanceStart).String()),
			slog.Int("processed", summary.Processed),
			slog.Int("sent", summary.Sent),
			slog.Int("skipped", summary.Skipped),
			slog.Int("completed", summary.Completed),
			slog.Int("errors", summary.Errors),
		)
		totalProcessed += summary.Processed
		totalErrors += summary.Errors
	}

	slog.Info("Campaign scheduler job completed",
		slog.String("duration", time.Since(start).String()),
		slog.Int("processed", totalProcessed),
		slog.Int("errors", totalErrors),
	)
}
