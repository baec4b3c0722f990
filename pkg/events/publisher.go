package events

import (
	"context"

	"go.uber.org/zap"
)

// Publisher defines the interface for publishing domain events
type Publisher interface {
	// Publish publishes an event to the message broker
	Publish(ctx context.Context, exchange string, event *Event, headers Headers) error

	// Close closes the publisher connection
	Close() error
}

// Emit publishes a v1 event on the item exchange. A nil publisher is a no-op;
// failures are logged and never returned to the caller.
func Emit(ctx context.Context, publisher Publisher, service, eventName string, payload any) {
	if publisher == nil {
		return
	}

	headers := Headers{
		TraceID:       GenerateTraceID(),
		CorrelationID: GenerateCorrelationID(),
		Service:       service,
	}

	event, err := NewEvent(eventName, EventVersionV1, payload, headers)
	if err != nil {
		zap.L().Error("Failed to build event", zap.String("event", eventName), zap.Error(err))
		return
	}

	if err := publisher.Publish(ctx, ItemExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish event",
			zap.String("event", eventName),
			zap.String("traceId", headers.TraceID),
			zap.Error(err),
		)
	}
}
