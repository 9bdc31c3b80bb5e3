package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SettleStream is the Redis Stream carrying settle events for approved PIREPs.
const SettleStream = "pirep:settle"

// SettleGroup is the consumer group name used by settlement workers.
const SettleGroup = "settle-workers"

// SettleEvent is one approved-report settlement request.
type SettleEvent struct {
	PirepID    string    `json:"pirep_id"`
	ApprovedBy string    `json:"approved_by,omitempty"` // empty for automatic approvals
	Attempts   int       `json:"attempts,omitempty"`    // prior failed settlement deliveries
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// SettleQueueService provides the settle-event queue on Redis Streams.
type SettleQueueService struct {
	client *redis.Client
}

func NewSettleQueueService(client *redis.Client) *SettleQueueService {
	return &SettleQueueService{client: client}
}

// Enqueue adds a settle event to the stream.
func (s *SettleQueueService) Enqueue(ctx context.Context, event *SettleEvent) error {
	if event.EnqueuedAt.IsZero() {
		event.EnqueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal settle event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: SettleStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}
	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

// Dequeue reads one settle event via the consumer group, blocking up to
// blockTime. Returns (nil, "", nil) when nothing is available.
func (s *SettleQueueService) Dequeue(ctx context.Context, consumerName string, blockTime time.Duration) (*SettleEvent, string, error) {
	args := &redis.XReadGroupArgs{
		Group:    SettleGroup,
		Consumer: consumerName,
		Streams:  []string{SettleStream, ">"},
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, "", fmt.Errorf("invalid message format: data field missing")
	}

	var event SettleEvent
	if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal settle event: %w", err)
	}
	return &event, msg.ID, nil
}

// Ack acknowledges successful settlement of a message.
func (s *SettleQueueService) Ack(ctx context.Context, messageID string) error {
	return s.client.XAck(ctx, SettleStream, SettleGroup, messageID).Err()
}

// EnsureGroup creates the consumer group if it does not exist yet.
func (s *SettleQueueService) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, SettleStream, SettleGroup, "0").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// ClaimStale reassigns messages pending longer than minIdle to consumerName.
// Crashed workers leave messages in the pending list; this picks them up.
func (s *SettleQueueService) ClaimStale(ctx context.Context, consumerName string, minIdle time.Duration) ([]*SettleEvent, []string, error) {
	msgs, _, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   SettleStream,
		Group:    SettleGroup,
		Consumer: consumerName,
		MinIdle:  minIdle,
		Start:    "0",
		Count:    10,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var events []*SettleEvent
	var ids []string
	for _, msg := range msgs {
		dataStr, ok := msg.Values["data"].(string)
		if !ok {
			continue
		}
		var event SettleEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
			continue
		}
		events = append(events, &event)
		ids = append(ids, msg.ID)
	}
	return events, ids, nil
}
