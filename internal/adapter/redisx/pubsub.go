package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

const envelopeVersion = 1

type redisPubSub interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// EventsPubSub carries lifecycle events between instances over one channel.
type EventsPubSub struct {
	rdb     redisPubSub
	channel string
	logger  *slog.Logger
}

func NewEventsPubSub(rdb redisPubSub, logger *slog.Logger) *EventsPubSub {
	return &EventsPubSub{rdb: rdb, channel: ChannelEvents(), logger: logger}
}

type envelope struct {
	V     int         `json:"v"`
	Event model.Event `json:"event"`
}

// PublishEvent implements notify.EventSink.
func (p *EventsPubSub) PublishEvent(ctx context.Context, evt model.Event) error {
	b, err := json.Marshal(envelope{V: envelopeVersion, Event: evt})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks delivering decoded events to handler until ctx is done
// or the subscription channel closes.
func (p *EventsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, evt model.Event)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", p.channel, err)
	}

	return p.consume(ctx, sub.Channel(redis.WithChannelSize(256)), handler)
}

func (p *EventsPubSub) consume(ctx context.Context, ch <-chan *redis.Message, handler func(ctx context.Context, evt model.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil || env.V != envelopeVersion || env.Event.Type == "" {
				p.logger.Warn("discarding malformed relay message", slog.String("channel", m.Channel))
				continue
			}
			handler(ctx, env.Event)
		}
	}
}
