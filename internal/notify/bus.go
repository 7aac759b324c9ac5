// Package notify fans lifecycle events out to live connections grouped by topic.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
)

const defaultBufferSize = 64

// Publisher delivers events to their audience. Delivery is best-effort and
// never reports failure to the caller.
type Publisher interface {
	Publish(ctx context.Context, events ...model.Event)
}

// Subscription is one connection's view of the bus.
type Subscription struct {
	id      string
	topics  map[model.Topic]struct{}
	events  chan model.Event
	dropped atomic.Int64
}

// ID returns the connection identifier the subscription was created with.
func (s *Subscription) ID() string { return s.id }

// Events yields delivered events; it is closed on Unsubscribe.
func (s *Subscription) Events() <-chan model.Event { return s.events }

// Dropped counts events discarded because the connection was not keeping up.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

func (s *Subscription) wants(evt model.Event) bool {
	if _, ok := s.topics[model.TopicAdmin]; ok {
		return true
	}
	for _, topic := range evt.Topics {
		if _, ok := s.topics[topic]; ok {
			return true
		}
	}
	return false
}

// Bus is an in-process topic fan-out without queuing, retry or replay.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	logger *slog.Logger
}

// NewBus creates a bus whose subscriptions buffer up to bufferSize events.
func NewBus(bufferSize int, logger *slog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{
		subs:   make(map[string]*Subscription),
		buffer: bufferSize,
		logger: logger,
	}
}

// Subscribe registers connection id for the given topics.
func (b *Bus) Subscribe(id string, topics []model.Topic) (*Subscription, error) {
	set := make(map[model.Topic]struct{}, len(topics))
	for _, topic := range topics {
		set[topic] = struct{}{}
	}
	sub := &Subscription{
		id:     id,
		topics: set,
		events: make(chan model.Event, b.buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.subs[id]; exists {
		return nil, fmt.Errorf("%w: subscription %s", domainErrors.ErrAlreadyExists, id)
	}
	b.subs[id] = sub
	return sub, nil
}

// Unsubscribe removes the connection and closes its event channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()

	if ok {
		close(sub.events)
	}
}

// Publish pushes every event to each matching subscription without blocking.
func (b *Bus) Publish(ctx context.Context, events ...model.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, evt := range events {
		for _, sub := range b.subs {
			if !sub.wants(evt) {
				continue
			}
			select {
			case sub.events <- evt:
			default:
				sub.dropped.Add(1)
				b.logger.WarnContext(ctx, "live event dropped",
					slog.String("connection", sub.id),
					slog.String("event", string(evt.Type)),
				)
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
