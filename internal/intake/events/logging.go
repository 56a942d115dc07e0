package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher is used when no broker is configured.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "event published",
		"event_id", e.ID,
		"event_type", e.Type,
		"key", e.Key,
	)
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }
