package jobs

import (
	"context"
	"time"

	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
)

// ApplicationCounter reports application totals per status.
type ApplicationCounter interface {
	Stats(ctx context.Context) (int, map[string]int, error)
}

// ApplicationStatsJob refreshes the per-status application gauge.
type ApplicationStatsJob struct {
	apps    ApplicationCounter
	metrics *metrics.MetricsRegistry
}

func NewApplicationStatsJob(apps ApplicationCounter, m *metrics.MetricsRegistry) *ApplicationStatsJob {
	return &ApplicationStatsJob{apps: apps, metrics: m}
}

// Run takes one snapshot of the application counts.
func (j *ApplicationStatsJob) Run(ctx context.Context) error {
	start := time.Now()
	total, counts, err := j.apps.Stats(ctx)
	if err != nil {
		return err
	}
	if j.metrics != nil {
		for status, n := range counts {
			j.metrics.ApplicationsByStatus.WithLabelValues(status).Set(float64(n))
		}
	}
	logging.Debug("Application stats refreshed", "total", total, "duration", time.Since(start))
	return nil
}

// RunScheduled runs the job immediately and then every interval until ctx is done.
func (j *ApplicationStatsJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Warn("Initial application stats run failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Warn("Scheduled application stats run failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Shutting down application stats job")
			return
		}
	}
}
