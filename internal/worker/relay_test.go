package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

type sourceStub struct {
	calls  atomic.Int32
	events []model.Event
	err    error
}

func (s *sourceStub) Subscribe(ctx context.Context, handler func(context.Context, model.Event)) error {
	if s.calls.Add(1) == 1 {
		for _, evt := range s.events {
			handler(ctx, evt)
		}
		return s.err
	}
	<-ctx.Done()
	return ctx.Err()
}

type publisherStub struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *publisherStub) Publish(_ context.Context, events ...model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for relay")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewRelayDefaults(t *testing.T) {
	relay := NewRelay(&sourceStub{}, &publisherStub{}, 0, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if relay.retryDelay != time.Second {
		t.Fatalf("expected default retry delay, got %s", relay.retryDelay)
	}
}

func TestRelayDeliversAndResubscribes(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	source := &sourceStub{
		events: []model.Event{{Type: model.EventOrderCreated}, {Type: model.EventStatusChanged}},
		err:    errors.New("connection reset"),
	}
	local := &publisherStub{}
	relay := NewRelay(source, local, 5*time.Millisecond, logger)

	relay.Start(context.Background())
	relay.Start(context.Background())

	waitFor(t, func() bool { return local.count() == 2 && source.calls.Load() >= 2 })

	relay.Stop()
	relay.Stop()

	if local.events[0].Type != model.EventOrderCreated || local.events[1].Type != model.EventStatusChanged {
		t.Fatalf("unexpected delivery order: %+v", local.events)
	}
}

func TestRelayStopsWithParentContext(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	source := &sourceStub{}
	relay := NewRelay(source, &publisherStub{}, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	relay.Start(ctx)
	waitFor(t, func() bool { return source.calls.Load() >= 1 })
	cancel()

	done := make(chan struct{})
	go func() {
		relay.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
