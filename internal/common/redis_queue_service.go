package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
)

// Application event types
const (
	EventApplicationCreated       = "application_created"
	EventApplicationStatusChanged = "application_status_changed"
)

// ApplicationEvent is one lifecycle change of a visa application
type ApplicationEvent struct {
	Type           string                      `json:"type"`
	ApplicationID  string                      `json:"application_id"`
	FromStatus     constants.ApplicationStatus `json:"from_status,omitempty"`
	ToStatus       constants.ApplicationStatus `json:"to_status"`
	ApplicantEmail string                      `json:"applicant_email"`
	Destination    string                      `json:"destination"`
	OccurredAt     time.Time                   `json:"occurred_at"`
}

// RedisQueueService provides queue functionality using Redis Streams
type RedisQueueService struct {
	client *redis.Client
	stream string
}

// NewRedisQueueService publishes to and consumes from stream
func NewRedisQueueService(client *redis.Client, stream string) *RedisQueueService {
	return &RedisQueueService{
		client: client,
		stream: stream,
	}
}

func (s *RedisQueueService) Stream() string {
	return s.stream
}

// Publish adds an event to the service's stream
func (s *RedisQueueService) Publish(ctx context.Context, event *ApplicationEvent) error {
	return s.Enqueue(ctx, s.stream, event)
}

// Enqueue adds an event to streamName
func (s *RedisQueueService) Enqueue(ctx context.Context, streamName string, event *ApplicationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal application event: %w", err)
	}

	// XADD stream_name * data <json>
	args := &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

// Dequeue reads one event using the consumer group.
// Returns (event, messageID, error); a nil event means the block timed out.
func (s *RedisQueueService) Dequeue(ctx context.Context, streamName, groupName, consumerName string, blockTime time.Duration) (*ApplicationEvent, string, error) {
	// XREADGROUP GROUP group consumer BLOCK milliseconds COUNT 1 STREAMS stream >
	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{streamName, ">"}, // ">" means new messages only
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	event, err := decodeEvent(msg)
	if err != nil {
		return nil, msg.ID, err
	}
	return event, msg.ID, nil
}

// Ack acknowledges successful processing of a message
func (s *RedisQueueService) Ack(ctx context.Context, streamName, groupName, messageID string) error {
	return s.client.XAck(ctx, streamName, groupName, messageID).Err()
}

// CreateConsumerGroup creates a consumer group for the stream if it doesn't exist
func (s *RedisQueueService) CreateConsumerGroup(ctx context.Context, streamName, groupName string) error {
	// XGROUP CREATE stream group 0 MKSTREAM
	err := s.client.XGroupCreateMkStream(ctx, streamName, groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// GetQueueLength returns the number of entries in the stream
func (s *RedisQueueService) GetQueueLength(ctx context.Context, streamName string) (int64, error) {
	length, err := s.client.XLen(ctx, streamName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// TrimStream keeps only the most recent maxLen entries
func (s *RedisQueueService) TrimStream(ctx context.Context, streamName string, maxLen int64) error {
	return s.client.XTrimMaxLen(ctx, streamName, maxLen).Err()
}

// ClaimStale claims messages pending longer than minIdleTime, usually left by
// a consumer that died mid-processing.
func (s *RedisQueueService) ClaimStale(ctx context.Context, streamName, groupName, consumerName string, minIdleTime time.Duration) ([]*ApplicationEvent, []string, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: streamName,
		Group:  groupName,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending messages: %w", err)
	}

	var staleIDs []string
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			staleIDs = append(staleIDs, p.ID)
		}
	}
	if len(staleIDs) == 0 {
		return nil, nil, nil
	}

	messages, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   streamName,
		Group:    groupName,
		Consumer: consumerName,
		MinIdle:  minIdleTime,
		Messages: staleIDs,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var events []*ApplicationEvent
	var messageIDs []string
	for _, msg := range messages {
		event, err := decodeEvent(msg)
		if err != nil {
			logging.Warn("Skipping unreadable claimed event", "id", msg.ID, "error", err)
			continue
		}
		events = append(events, event)
		messageIDs = append(messageIDs, msg.ID)
	}
	return events, messageIDs, nil
}

func decodeEvent(msg redis.XMessage) (*ApplicationEvent, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return nil, errors.New("invalid message format: data field missing")
	}
	var event ApplicationEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal application event: %w", err)
	}
	return &event, nil
}
