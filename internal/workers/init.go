package workers

import (
	"context"
	"os"

	"travel-desk/bookingcart/internal/metrics"
)

// InitWorkers starts the application event consumers in the background.
func InitWorkers(ctx context.Context, queue EventQueue, stream string, numWorkers int, m *metrics.MetricsRegistry) *ApplicationEventWorker {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "bookingcart"
	}
	worker := NewApplicationEventWorker(host, stream, queue, m)
	go worker.Start(ctx, numWorkers)
	return worker
}
