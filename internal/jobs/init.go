package jobs

import (
	"context"
	"time"

	"travel-desk/bookingcart/internal/metrics"
)

// InitializeJobs starts all background jobs
func InitializeJobs(ctx context.Context, apps ApplicationCounter, m *metrics.MetricsRegistry, statsInterval time.Duration) *ApplicationStatsJob {
	statsJob := NewApplicationStatsJob(apps, m)
	go statsJob.RunScheduled(ctx, statsInterval)
	return statsJob
}
