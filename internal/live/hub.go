// Package live admits live-channel connections and binds them to the bus and
// the presence registry.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/notify"
	"github.com/polkiloo/trattoria/internal/presence"
)

// ErrClosed is returned by Connect once the hub has been closed.
var ErrClosed = errors.New("live channel closed")

// Admission is what a connecting client presents.
type Admission struct {
	StaffID int64
	Role    model.Role
	Module  model.Module
}

// Session is an admitted connection. Close must be called once the client goes away.
type Session struct {
	Presence model.Presence

	sub   *notify.Subscription
	once  sync.Once
	close func()
}

// ID returns the connection identifier.
func (s *Session) ID() string { return s.Presence.ConnectionID }

// Events yields the events routed to this connection.
func (s *Session) Events() <-chan model.Event { return s.sub.Events() }

// Close leaves every topic and removes the presence entry.
func (s *Session) Close() {
	s.once.Do(s.close)
}

// Hub admits connections.
type Hub struct {
	bus      *notify.Bus
	registry *presence.Registry
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHub constructs Hub.
func NewHub(bus *notify.Bus, registry *presence.Registry, logger *slog.Logger) *Hub {
	return &Hub{
		bus:      bus,
		registry: registry,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Connect validates the admission and joins general plus the module's topics.
// Nothing is joined when validation fails.
func (h *Hub) Connect(ctx context.Context, a Admission) (*Session, error) {
	if a.Role == "" || a.Module == "" {
		return nil, fmt.Errorf("%w: role and module must be presented", domainErrors.ErrAuthenticationRequired)
	}
	if !a.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainErrors.ErrAuthenticationRequired, a.Role)
	}
	if !a.Module.Valid() {
		return nil, fmt.Errorf("%w: unknown module %q", domainErrors.ErrInvalidInput, a.Module)
	}
	if !a.Role.MayJoin(a.Module) {
		return nil, fmt.Errorf("%w: role %q cannot join module %q", domainErrors.ErrForbidden, a.Role, a.Module)
	}

	id := h.newID()
	topics := model.TopicsForModule(a.Module, a.StaffID)
	sub, err := h.bus.Subscribe(id, topics)
	if err != nil {
		return nil, err
	}

	p := model.Presence{
		ConnectionID: id,
		StaffID:      a.StaffID,
		Role:         a.Role,
		Module:       a.Module,
		Topics:       topics,
		ConnectedAt:  h.now(),
	}
	if err := h.registry.Register(p); err != nil {
		h.bus.Unsubscribe(id)
		return nil, err
	}

	session := &Session{
		Presence: p,
		sub:      sub,
		close: func() {
			h.forget(id)
			h.bus.Unsubscribe(id)
			h.registry.Unregister(id)
			if dropped := sub.Dropped(); dropped > 0 {
				h.logger.WarnContext(ctx, "live client missed events",
					slog.String("connection", id),
					slog.Int64("dropped", dropped),
				)
			}
		},
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		session.Close()
		return nil, ErrClosed
	}
	h.sessions[id] = session
	h.mu.Unlock()

	return session, nil
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Close ends every open session, which closes their event streams, and
// refuses further connections. It is safe to call more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	open := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
	if len(open) > 0 {
		h.logger.Info("live channel closed", slog.Int("sessions", len(open)))
	}
}

// Snapshot reports live connections and their per-module counts.
func (h *Hub) Snapshot() ([]model.Presence, map[model.Module]int) {
	return h.registry.List(), h.registry.CountsByModule()
}
