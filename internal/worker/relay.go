package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/notify"
)

// EventSource streams events published by any instance until ctx is done.
type EventSource interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, evt model.Event)) error
}

// Relay feeds events from the shared source into the local bus and
// resubscribes after failures.
type Relay struct {
	source     EventSource
	local      notify.Publisher
	retryDelay time.Duration
	logger     *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRelay constructs relay worker.
func NewRelay(source EventSource, local notify.Publisher, retryDelay time.Duration, logger *slog.Logger) *Relay {
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Relay{
		source:     source,
		local:      local,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Start launches the subscription loop in background.
func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.run(runCtx)
}

// Stop cancels the subscription and waits for the loop to exit.
func (r *Relay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		err := r.source.Subscribe(ctx, r.deliver)
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("event relay subscription failed", slog.String("error", err.Error()))
		} else {
			r.logger.Warn("event relay subscription closed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *Relay) deliver(ctx context.Context, evt model.Event) {
	r.local.Publish(ctx, evt)
}
