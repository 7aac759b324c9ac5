// Package facades holds controllable stand-ins for the HTTP facades.
package facades

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/live"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/usecase"
)

// StaffFacadeStub provides controllable behaviour for staff endpoints.
type StaffFacadeStub struct {
	AuthenticateFn func(context.Context, string, string) (*model.Staff, string, error)
	CreateFn       func(context.Context, usecase.NewStaff) (*model.Staff, error)
	StaffFn        func(context.Context, int64) (*model.Staff, error)
	ParseFn        func(string) (pkgAuth.Claims, error)
}

// Authenticate delegates to provided function or returns a waiter session.
func (s StaffFacadeStub) Authenticate(ctx context.Context, login, password string) (*model.Staff, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return &model.Staff{ID: 1, Login: login, Role: model.RoleWaiter}, "token", nil
}

// CreateStaff echoes the request as a stored account.
func (s StaffFacadeStub) CreateStaff(ctx context.Context, in usecase.NewStaff) (*model.Staff, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, in)
	}
	return &model.Staff{ID: 2, Login: in.Login, Name: in.Name, Role: in.Role}, nil
}

// Staff returns the configured account.
func (s StaffFacadeStub) Staff(ctx context.Context, id int64) (*model.Staff, error) {
	if s.StaffFn != nil {
		return s.StaffFn(ctx, id)
	}
	return &model.Staff{ID: id, Login: "staff", Role: model.RoleWaiter}, nil
}

// ParseToken accepts any token as an admin session unless overridden.
func (s StaffFacadeStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Claims{StaffID: 1, Role: model.RoleAdmin}, nil
}

// CatalogFacadeStub simulates table and product operations.
type CatalogFacadeStub struct {
	CreateTableFn   func(context.Context, int, int, string) (*model.Table, error)
	TableFn         func(context.Context, int64) (*model.Table, error)
	TablesFn        func(context.Context) ([]model.Table, error)
	CreateProductFn func(context.Context, string, string, decimal.Decimal, bool) (*model.Product, error)
	ProductsFn      func(context.Context) ([]model.Product, error)
	AvailabilityFn  func(context.Context, int64, bool) (*model.Product, error)
}

func (s CatalogFacadeStub) CreateTable(ctx context.Context, number, capacity int, location string) (*model.Table, error) {
	if s.CreateTableFn != nil {
		return s.CreateTableFn(ctx, number, capacity, location)
	}
	return &model.Table{ID: 1, Number: number, Capacity: capacity, Location: location, Status: model.TableStatusFree}, nil
}

func (s CatalogFacadeStub) Table(ctx context.Context, id int64) (*model.Table, error) {
	if s.TableFn != nil {
		return s.TableFn(ctx, id)
	}
	return &model.Table{ID: id, Number: int(id), Capacity: 4, Status: model.TableStatusFree}, nil
}

func (s CatalogFacadeStub) Tables(ctx context.Context) ([]model.Table, error) {
	if s.TablesFn != nil {
		return s.TablesFn(ctx)
	}
	return []model.Table{{ID: 1, Number: 1, Capacity: 2, Status: model.TableStatusFree}}, nil
}

func (s CatalogFacadeStub) CreateProduct(ctx context.Context, name, category string, price decimal.Decimal, available bool) (*model.Product, error) {
	if s.CreateProductFn != nil {
		return s.CreateProductFn(ctx, name, category, price, available)
	}
	return &model.Product{ID: 1, Name: name, Category: category, Price: price, Available: available}, nil
}

func (s CatalogFacadeStub) Products(ctx context.Context) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx)
	}
	return []model.Product{{ID: 1, Name: "Margherita", Price: decimal.NewFromInt(12), Available: true}}, nil
}

func (s CatalogFacadeStub) SetProductAvailability(ctx context.Context, id int64, available bool) (*model.Product, error) {
	if s.AvailabilityFn != nil {
		return s.AvailabilityFn(ctx, id, available)
	}
	return &model.Product{ID: id, Name: "Margherita", Price: decimal.NewFromInt(12), Available: available}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
// It counts submissions so idempotent replays can be asserted.
type OrderFacadeStub struct {
	SubmitFn     func(context.Context, usecase.Actor, usecase.SubmitRequest) (*model.Order, error)
	OrderFn      func(context.Context, int64) (*model.Order, error)
	OrdersFn     func(context.Context, model.OrderFilter) ([]model.Order, error)
	TransitionFn func(context.Context, usecase.Actor, usecase.TransitionRequest) (*model.Order, error)
	DiscountFn   func(context.Context, usecase.Actor, int64, decimal.Decimal, string) (*model.Order, error)

	mu      sync.Mutex
	submits int
}

func (s *OrderFacadeStub) SubmitOrder(ctx context.Context, actor usecase.Actor, req usecase.SubmitRequest) (*model.Order, error) {
	s.mu.Lock()
	s.submits++
	s.mu.Unlock()
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, actor, req)
	}
	return &model.Order{ID: 1, Number: 1, TableID: req.TableID, StaffID: actor.StaffID, Status: model.OrderStatusPending}, nil
}

// Submits reports how many times SubmitOrder ran.
func (s *OrderFacadeStub) Submits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submits
}

func (s *OrderFacadeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, Number: id, Status: model.OrderStatusPending}, nil
}

func (s *OrderFacadeStub) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return []model.Order{{ID: 1, Number: 1, Status: model.OrderStatusPending}}, nil
}

func (s *OrderFacadeStub) TransitionOrder(ctx context.Context, actor usecase.Actor, req usecase.TransitionRequest) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, actor, req)
	}
	return &model.Order{ID: req.OrderID, Status: req.Target}, nil
}

func (s *OrderFacadeStub) ApplyDiscount(ctx context.Context, actor usecase.Actor, orderID int64, percent decimal.Decimal, reason string) (*model.Order, error) {
	if s.DiscountFn != nil {
		return s.DiscountFn(ctx, actor, orderID, percent, reason)
	}
	return &model.Order{ID: orderID, Discount: model.Discount{Kind: model.DiscountKindManual, Percentage: percent, Reason: reason}}, nil
}

// LiveFacadeStub admits connections through a real hub when one is set.
type LiveFacadeStub struct {
	Hub       *live.Hub
	ConnectFn func(context.Context, live.Admission) (*live.Session, error)
	Entries   []model.Presence
	Counts    map[model.Module]int
}

func (s LiveFacadeStub) Connect(ctx context.Context, a live.Admission) (*live.Session, error) {
	if s.ConnectFn != nil {
		return s.ConnectFn(ctx, a)
	}
	return s.Hub.Connect(ctx, a)
}

func (s LiveFacadeStub) Presence() ([]model.Presence, map[model.Module]int) {
	if s.Hub != nil {
		return s.Hub.Snapshot()
	}
	return s.Entries, s.Counts
}

// HealthStub returns Err from HealthCheck.
type HealthStub struct {
	Err error
}

func (s HealthStub) HealthCheck(context.Context) error { return s.Err }

// RestaurantFacadeStub aggregates the individual stubs.
type RestaurantFacadeStub struct {
	StaffFacadeStub
	CatalogFacadeStub
	*OrderFacadeStub
	LiveFacadeStub
	HealthStub
}

// IdempotencyStoreStub is an in-memory Idempotency-Key store.
type IdempotencyStoreStub struct {
	mu      sync.Mutex
	entries map[string]string
	results map[string]bool

	// Err fails AcquireLock; GetErr, SaveErr and ReleaseErr fail the other calls.
	Err        error
	GetErr     error
	SaveErr    error
	ReleaseErr error
}

func (s *IdempotencyStoreStub) init() {
	if s.entries == nil {
		s.entries = make(map[string]string)
		s.results = make(map[string]bool)
	}
}

func (s *IdempotencyStoreStub) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	s.init()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = ""
	return true, nil
}

func (s *IdempotencyStoreStub) SaveResult(_ context.Context, key string, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.init()
	s.entries[key] = payload
	s.results[key] = true
	return nil
}

func (s *IdempotencyStoreStub) GetResult(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	s.init()
	return s.entries[key], s.results[key], nil
}

func (s *IdempotencyStoreStub) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReleaseErr != nil {
		return s.ReleaseErr
	}
	s.init()
	delete(s.entries, key)
	delete(s.results, key)
	return nil
}

// Locked reports whether key is held without a result.
func (s *IdempotencyStoreStub) Locked(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	_, held := s.entries[key]
	return held && !s.results[key]
}
