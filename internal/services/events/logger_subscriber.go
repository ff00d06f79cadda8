package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		var documentID, depth, status string
		if payload, ok := event.Payload.(map[string]interface{}); ok {
			if id, ok := payload["document_id"].(string); ok {
				documentID = id
			}
			if d, ok := payload["depth"].(string); ok {
				depth = d
			}
			if s, ok := payload["status"].(string); ok {
				status = s
			}
		}

		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if documentID != "" {
			logEvent = logEvent.Str("document_id", documentID)
		}
		if depth != "" {
			logEvent = logEvent.Str("depth", depth)
		}
		if status != "" {
			logEvent = logEvent.Str("status", status)
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventDocumentUploaded,
		interfaces.EventDocumentDeleted,
		interfaces.EventAnalysisStarted,
		interfaces.EventAnalysisCompleted,
		interfaces.EventAnalysisFailed,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Info().
		Int("event_type_count", len(eventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
