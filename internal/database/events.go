package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// RedisStreamClient is the subset of the redis client the publisher needs.
type RedisStreamClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// EventPublisher pushes stock/price change events onto a redis stream for
// downstream consumers (notifiers, dashboards).
type EventPublisher struct {
	redis  RedisStreamClient
	stream string
	logger *slog.Logger
}

func NewEventPublisher(client RedisStreamClient, stream string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

// Publish adds one change event to the stream. The event id is filled in
// when absent.
func (p *EventPublisher) Publish(ctx context.Context, event *models.ChangeEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":      string(payload),
			"event_id":  event.EventID,
			"kind":      string(event.Kind),
			"sku":       event.SKU,
			"timestamp": fmt.Sprintf("%d", event.Timestamp.UnixNano()),
		},
	}

	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("change event published",
		"event_id", event.EventID,
		"kind", string(event.Kind),
		"sku", event.SKU)
	return nil
}
