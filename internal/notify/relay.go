package notify

import (
	"context"
	"log/slog"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// EventSink forwards an event to a shared transport that every instance reads.
type EventSink interface {
	PublishEvent(ctx context.Context, evt model.Event) error
}

// RelayPublisher sends events through a shared sink so every instance's bus
// sees them. When the sink fails the event is delivered locally only.
type RelayPublisher struct {
	sink     EventSink
	fallback Publisher
	logger   *slog.Logger
}

// NewRelayPublisher constructs RelayPublisher.
func NewRelayPublisher(sink EventSink, fallback Publisher, logger *slog.Logger) *RelayPublisher {
	return &RelayPublisher{sink: sink, fallback: fallback, logger: logger}
}

// Publish implements Publisher.
func (p *RelayPublisher) Publish(ctx context.Context, events ...model.Event) {
	for _, evt := range events {
		if err := p.sink.PublishEvent(ctx, evt); err != nil {
			p.logger.Warn("relay publish failed, delivering locally",
				slog.String("event", string(evt.Type)),
				slog.String("error", err.Error()),
			)
			p.fallback.Publish(ctx, evt)
		}
	}
}
