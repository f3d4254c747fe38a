package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// HandlerFunc processes a raw event payload for one routing key.
type HandlerFunc func(ctx context.Context, payload []byte) error

// InProcessBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to registered handlers; handler
// errors are logged, never propagated to the publisher.
type InProcessBus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	logger   *slog.Logger
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		handlers: make(map[string][]HandlerFunc),
		logger:   logger,
	}
}

// Subscribe registers a handler for a routing key.
func (b *InProcessBus) Subscribe(routingKey string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// Publish dispatches the payload synchronously to all handlers
// registered for the routing key.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.RLock()
	handlers := b.handlers[routingKey]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, payload); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"handlers", len(handlers),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error { return nil }
