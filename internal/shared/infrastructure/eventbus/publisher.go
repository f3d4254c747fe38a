// Package eventbus publishes engine events (queue refreshes, detected
// cycles) for external collaborators such as the dashboard. Local mode
// uses the in-process bus; deployments with RabbitMQ configured publish
// to a topic exchange.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Publisher defines the interface for publishing events to a message bus.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// Event is the envelope every published payload is wrapped in.
type Event struct {
	EventID    uuid.UUID       `json:"event_id"`
	RoutingKey string          `json:"routing_key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent wraps a payload into an envelope with a fresh event id.
func NewEvent(routingKey string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventID:    uuid.New(),
		RoutingKey: routingKey,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// PublishEvent marshals an envelope and publishes it.
func PublishEvent(ctx context.Context, p Publisher, routingKey string, payload any) error {
	event, err := NewEvent(routingKey, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Publish(ctx, routingKey, body)
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }
