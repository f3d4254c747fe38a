package observability

import (
	"log/slog"
	"time"
)

// TimeOperation records the duration of an operation to both the metrics
// collector and the logger. Use with defer:
//
//	defer observability.TimeOperation(metrics, logger, "planning.refresh")()
func TimeOperation(metrics Metrics, logger *slog.Logger, name string, tags ...Tag) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		if metrics != nil {
			metrics.Timing(name, elapsed, tags...)
		}
		if logger != nil {
			logger.Debug("operation timed",
				"operation", name,
				"duration_ms", elapsed.Milliseconds(),
			)
		}
	}
}
