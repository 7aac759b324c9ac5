package test

import (
	"context"
	"sync"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// PublisherRecorder captures published events.
type PublisherRecorder struct {
	mu      sync.Mutex
	events  []model.Event
	ctxErrs []error
}

// Publish records events in order along with the context state at publish time.
func (p *PublisherRecorder) Publish(ctx context.Context, events ...model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
}

// ContextErrors returns ctx.Err() as seen by each Publish call.
func (p *PublisherRecorder) ContextErrors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.ctxErrs...)
}

// Events returns a copy of everything published so far.
func (p *PublisherRecorder) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Event(nil), p.events...)
}

// Types lists recorded event types in publish order.
func (p *PublisherRecorder) Types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// Reset forgets recorded events.
func (p *PublisherRecorder) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
	p.ctxErrs = nil
}
