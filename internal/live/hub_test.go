package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/notify"
	"github.com/polkiloo/trattoria/internal/presence"
)

func newTestHub() (*Hub, *notify.Bus, *presence.Registry) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	bus := notify.NewBus(4, logger)
	registry := presence.NewRegistry(presence.Hooks{})
	return NewHub(bus, registry, logger), bus, registry
}

func TestHubConnectRejections(t *testing.T) {
	cases := []struct {
		name string
		in   Admission
		want error
	}{
		{"missing role", Admission{Module: model.ModuleKitchen}, domainErrors.ErrAuthenticationRequired},
		{"missing module", Admission{Role: model.RoleKitchen}, domainErrors.ErrAuthenticationRequired},
		{"unknown role", Admission{Role: "chef", Module: model.ModuleKitchen}, domainErrors.ErrAuthenticationRequired},
		{"unknown module", Admission{Role: model.RoleKitchen, Module: "bar"}, domainErrors.ErrInvalidInput},
		{"wrong module", Admission{Role: model.RoleKitchen, Module: model.ModuleCashier}, domainErrors.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub, bus, registry := newTestHub()
			if _, err := hub.Connect(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if bus.Subscribers() != 0 || len(registry.List()) != 0 {
				t.Fatal("rejected connection must not join any topic")
			}
		})
	}
}

func TestHubConnectDeliversAndCloses(t *testing.T) {
	hub, bus, registry := newTestHub()
	hub.newID = func() string { return "conn-1" }

	session, err := hub.Connect(context.Background(), Admission{StaffID: 7, Role: model.RoleWaiter, Module: model.ModuleWaitStaff})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if session.ID() != "conn-1" {
		t.Fatalf("unexpected id %s", session.ID())
	}
	if len(session.Presence.Topics) != 3 {
		t.Fatalf("unexpected topics %v", session.Presence.Topics)
	}

	bus.Publish(context.Background(),
		model.Event{Type: model.EventOrderReady, Topics: []model.Topic{model.StaffTopic(7)}},
		model.Event{Type: model.EventOrderCreated, Topics: []model.Topic{model.TopicKitchen}},
	)
	evt := <-session.Events()
	if evt.Type != model.EventOrderReady {
		t.Fatalf("unexpected event %s", evt.Type)
	}

	list, counts := hub.Snapshot()
	if len(list) != 1 || counts[model.ModuleWaitStaff] != 1 {
		t.Fatalf("unexpected presence %v %v", list, counts)
	}

	session.Close()
	session.Close()
	if bus.Subscribers() != 0 || len(registry.List()) != 0 {
		t.Fatal("expected session to leave bus and registry")
	}
	if _, ok := <-session.Events(); ok {
		t.Fatal("expected events channel closed")
	}
}

func TestHubConnectRollsBackOnRegistryFailure(t *testing.T) {
	hub, bus, registry := newTestHub()
	if err := registry.Register(model.Presence{ConnectionID: "dup"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	hub.newID = func() string { return "dup" }

	if _, err := hub.Connect(context.Background(), Admission{Role: model.RoleAdmin, Module: model.ModuleAdmin}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if bus.Subscribers() != 0 {
		t.Fatal("expected subscription rolled back")
	}
}

func TestHubCloseEndsSessionsAndRefusesNewOnes(t *testing.T) {
	hub, bus, registry := newTestHub()
	ctx := context.Background()

	kitchen, err := hub.Connect(ctx, Admission{StaffID: 1, Role: model.RoleKitchen, Module: model.ModuleKitchen})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	cashier, err := hub.Connect(ctx, Admission{StaffID: 2, Role: model.RoleCashier, Module: model.ModuleCashier})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	hub.Close()

	for _, s := range []*Session{kitchen, cashier} {
		if _, ok := <-s.Events(); ok {
			t.Fatalf("expected event stream of %s to be closed", s.ID())
		}
	}
	if bus.Subscribers() != 0 || len(registry.List()) != 0 {
		t.Fatalf("expected no subscribers or presence after close, got %d and %d", bus.Subscribers(), len(registry.List()))
	}

	kitchen.Close()
	hub.Close()

	if _, err := hub.Connect(ctx, Admission{StaffID: 3, Role: model.RoleKitchen, Module: model.ModuleKitchen}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed hub to refuse connections, got %v", err)
	}
	if bus.Subscribers() != 0 || len(registry.List()) != 0 {
		t.Fatal("refused connection must not stay subscribed")
	}
}
