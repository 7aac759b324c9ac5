package app

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/polkiloo/trattoria/internal/adapter/redisx"
	"github.com/polkiloo/trattoria/internal/config"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/notify"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/server/http/handlers"
	"github.com/polkiloo/trattoria/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/trattoria/internal/test"
	"github.com/polkiloo/trattoria/internal/worker"
)

var discardLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

type blockingSource struct {
	subscribed atomic.Int32
}

func (s *blockingSource) Subscribe(ctx context.Context, _ func(context.Context, model.Event)) error {
	s.subscribed.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	facade, _ := newFacadeFixture()
	server := newHTTPServer(serverParams{Config: cfg, Router: router, Hub: facade.hub})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestHTTPServerShutdownEndsLiveStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	facade, _ := newFacadeFixture()

	router := gin.New()
	router.GET("/events", func(c *gin.Context) {
		c.Set(middleware.ClaimsContextKey, pkgAuth.Claims{StaffID: 4, Role: model.RoleKitchen})
	}, handlers.NewLiveHandler(facade, time.Hour).Stream)
	server := newHTTPServer(serverParams{Config: &config.Config{}, Router: router, Hub: facade.hub})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/events?module=kitchen")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "event:connected") {
		t.Fatalf("expected connected event, got %q err=%v", line, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown with an open stream: %v", err)
	}
	if _, counts := facade.Presence(); counts[model.ModuleKitchen] != 0 {
		t.Fatalf("expected kitchen session to be gone, got %v", counts)
	}
}

func TestNewPublisherSelectsTransport(t *testing.T) {
	bus := notify.NewBus(4, discardLogger)

	local := newPublisher(publisherParams{Bus: bus, Logger: discardLogger})
	if local != notify.Publisher(bus) {
		t.Fatalf("expected local bus without redis, got %T", local)
	}

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	relayed := newPublisher(publisherParams{Bus: bus, PubSub: redisx.NewEventsPubSub(rdb, discardLogger), Logger: discardLogger})
	if _, ok := relayed.(*notify.RelayPublisher); !ok {
		t.Fatalf("expected relay publisher with redis, got %T", relayed)
	}
}

func TestNewRelayRequiresPubSub(t *testing.T) {
	if r := newRelay(relayParams{Bus: notify.NewBus(4, discardLogger), Config: &config.Config{}, Logger: discardLogger}); r != nil {
		t.Fatalf("expected no relay without redis")
	}
}

func lifecycleFixture(t *testing.T, server *http.Server, relay *worker.Relay) (*testhelpers.LifecycleRecorder, *testhelpers.ShutdownerStub, *testhelpers.MemoryStore) {
	t.Helper()
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	facade, store := newFacadeFixture()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger,
		Server:     server,
		Relay:      relay,
		Facade:     facade,
		Config: &config.Config{
			ShutdownTimeout: 100 * time.Millisecond,
			AdminLogin:      "admin",
			AdminPassword:   "admin-secret",
		},
	})
	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}
	return recorder, shutdowner, store
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	source := &blockingSource{}
	relay := worker.NewRelay(source, &testhelpers.PublisherRecorder{}, 10*time.Millisecond, discardLogger)
	recorder, _, store := lifecycleFixture(t, server, relay)

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	admin, err := store.Staff().GetByLogin(context.Background(), "admin")
	if err != nil {
		t.Fatalf("expected bootstrap admin: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}

	deadline := time.Now().Add(time.Second)
	for source.subscribed.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected relay to subscribe")
		}
		time.Sleep(5 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hook.OnStop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	server := &http.Server{Addr: "bad addr"}
	recorder, shutdowner, _ := lifecycleFixture(t, server, nil)

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestRegisterLifecycleFailsWhenAdminCannotBeCreated(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	facade, _ := newFacadeFixture()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger,
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Facade:     facade,
		Config:     &config.Config{AdminLogin: "admin", AdminPassword: ""},
	})

	if err := recorder.Hooks[0].OnStart(context.Background()); err == nil {
		t.Fatal("expected bootstrap failure for empty admin password")
	}
}
