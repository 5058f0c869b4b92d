package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
)

const (
	consumerGroup   = "application-notifiers"
	dequeueBlock    = 5 * time.Second
	errorBackoff    = time.Second
	staleIdleTime   = 5 * time.Minute
	maintenanceTick = time.Minute
	maxStreamLength = 10000
)

// EventQueue is the consumer side of the application event stream.
type EventQueue interface {
	CreateConsumerGroup(ctx context.Context, streamName, groupName string) error
	Dequeue(ctx context.Context, streamName, groupName, consumerName string, blockTime time.Duration) (*common.ApplicationEvent, string, error)
	Ack(ctx context.Context, streamName, groupName, messageID string) error
	ClaimStale(ctx context.Context, streamName, groupName, consumerName string, minIdleTime time.Duration) ([]*common.ApplicationEvent, []string, error)
	GetQueueLength(ctx context.Context, streamName string) (int64, error)
	TrimStream(ctx context.Context, streamName string, maxLen int64) error
}

// ApplicationEventWorker consumes application lifecycle events and turns
// them into applicant notifications.
type ApplicationEventWorker struct {
	workerID string
	stream   string
	queue    EventQueue
	metrics  *metrics.MetricsRegistry
	notify   func(ctx context.Context, event *common.ApplicationEvent) error
}

func NewApplicationEventWorker(workerID, stream string, queue EventQueue, m *metrics.MetricsRegistry) *ApplicationEventWorker {
	w := &ApplicationEventWorker{
		workerID: workerID,
		stream:   stream,
		queue:    queue,
		metrics:  m,
	}
	w.notify = w.logNotification
	return w
}

// Start runs numWorkers consumers plus one maintenance loop until ctx is done.
func (w *ApplicationEventWorker) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	logging.Info("Starting application event workers", "workers", numWorkers, "stream", w.stream)

	if err := w.queue.CreateConsumerGroup(ctx, w.stream, consumerGroup); err != nil {
		logging.Warn("Failed to create consumer group", "stream", w.stream, "error", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		name := fmt.Sprintf("%s-%d", w.workerID, i)
		go func(name string) {
			defer wg.Done()
			w.processQueue(ctx, name)
		}(name)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.maintain(ctx)
	}()

	wg.Wait()
	logging.Info("Application event workers stopped", "stream", w.stream)
}

func (w *ApplicationEventWorker) processQueue(ctx context.Context, consumer string) {
	processed, failed := 0, 0
	for {
		select {
		case <-ctx.Done():
			logging.Info("Event consumer shutting down", "consumer", consumer, "processed", processed, "failed", failed)
			return
		default:
			event, messageID, err := w.queue.Dequeue(ctx, w.stream, consumerGroup, consumer, dequeueBlock)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				logging.Error("Failed to dequeue application event", "consumer", consumer, "error", err)
				if messageID != "" {
					// Unreadable payloads would otherwise be redelivered forever.
					w.ack(ctx, messageID)
				}
				time.Sleep(errorBackoff)
				continue
			}
			if event == nil {
				continue
			}

			if w.handle(ctx, event) {
				processed++
			} else {
				failed++
			}
			w.ack(ctx, messageID)
		}
	}
}

// handle delivers one event. Failed deliveries are still acked.
func (w *ApplicationEventWorker) handle(ctx context.Context, event *common.ApplicationEvent) bool {
	result := "delivered"
	err := w.notify(ctx, event)
	if err != nil {
		result = "delivery_failed"
		logging.Error("Failed to deliver application event", "id", event.ApplicationID, "type", event.Type, "error", err)
	}
	if w.metrics != nil {
		w.metrics.ApplicationEventsTotal.WithLabelValues(event.Type, result).Inc()
	}
	return err == nil
}

func (w *ApplicationEventWorker) ack(ctx context.Context, messageID string) {
	if err := w.queue.Ack(ctx, w.stream, consumerGroup, messageID); err != nil {
		logging.Warn("Failed to ack application event", "message_id", messageID, "error", err)
	}
}

// maintain reclaims events from dead consumers and caps the stream length.
func (w *ApplicationEventWorker) maintain(ctx context.Context) {
	ticker := time.NewTicker(maintenanceTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reclaim(ctx)
		}
	}
}

func (w *ApplicationEventWorker) reclaim(ctx context.Context) {
	consumer := w.workerID + "-reclaimer"
	events, ids, err := w.queue.ClaimStale(ctx, w.stream, consumerGroup, consumer, staleIdleTime)
	if err != nil {
		logging.Warn("Failed to claim stale application events", "error", err)
	}
	for i, event := range events {
		w.handle(ctx, event)
		w.ack(ctx, ids[i])
	}
	if len(events) > 0 {
		logging.Info("Reclaimed stale application events", "count", len(events))
	}

	length, err := w.queue.GetQueueLength(ctx, w.stream)
	if err != nil {
		logging.Warn("Failed to read event stream length", "error", err)
		return
	}
	if length > maxStreamLength {
		if err := w.queue.TrimStream(ctx, w.stream, maxStreamLength); err != nil {
			logging.Warn("Failed to trim event stream", "error", err)
		}
	}
}

func (w *ApplicationEventWorker) logNotification(ctx context.Context, event *common.ApplicationEvent) error {
	switch event.Type {
	case common.EventApplicationCreated:
		logging.Info("Notify applicant: application received",
			"to", event.ApplicantEmail,
			"id", event.ApplicationID,
			"destination", event.Destination,
		)
	case common.EventApplicationStatusChanged:
		logging.Info("Notify applicant: status changed",
			"to", event.ApplicantEmail,
			"id", event.ApplicationID,
			"from", event.FromStatus,
			"status", event.ToStatus,
		)
	default:
		return fmt.Errorf("unknown application event type %q", event.Type)
	}
	return nil
}
