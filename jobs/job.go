package jobs

import (
	"log/slog"

	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}

func jobMetrics(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
