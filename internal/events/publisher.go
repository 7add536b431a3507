// Package events publishes ingest and matching lifecycle events to Redis
// Streams for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
)

// Event types carried on the stream.
const (
	EventSourceLoaded   = "project.source.loaded"
	EventBatchCompleted = "project.batch.completed"
	EventMatchesScored  = "match.batch.scored"
	EventMatchesExpired = "match.batch.expired"
)

const (
	streamName     = "project-ingestor:events"
	maxStreamLen   = 10000
	publishTimeout = 5 * time.Second
)

// Event is one lifecycle notification. Payload carries event-specific
// counts and labels.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// Publisher writes events to a Redis stream. A nil Publisher is valid and
// drops everything, so callers never need to guard the disabled case.
type Publisher struct {
	client *redis.Client
	logger logger.Logger
}

// NewPublisher builds a publisher, or nil when disabled.
func NewPublisher(client *redis.Client, log logger.Logger, enabled bool) *Publisher {
	if !enabled || client == nil {
		return nil
	}
	return &Publisher{client: client, logger: log}
}

// Publish appends one event to the stream. The stream is capped so an
// absent consumer cannot grow it without bound.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload map[string]any) error {
	if p == nil {
		return nil
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]any{
			"type": eventType,
			"data": string(body),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// PublishAsync fires an event without blocking the caller. Failures are
// logged and dropped; events are advisory, never load-bearing.
func (p *Publisher) PublishAsync(eventType string, payload map[string]any) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.Publish(ctx, eventType, payload); err != nil {
			p.logger.Warn("Event publish failed",
				logger.String("type", eventType),
				logger.Error(err),
			)
		}
	}()
}
