package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/live"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/usecase"
)

// HealthChecker reports whether storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RestaurantFacade fronts the use cases and the live hub for the transport layer.
type RestaurantFacade struct {
	staff    *usecase.StaffUseCase
	orders   *usecase.OrderUseCase
	tables   *usecase.TableUseCase
	products *usecase.ProductUseCase
	hub      *live.Hub
	health   HealthChecker
}

func NewRestaurantFacade(
	staff *usecase.StaffUseCase,
	orders *usecase.OrderUseCase,
	tables *usecase.TableUseCase,
	products *usecase.ProductUseCase,
	hub *live.Hub,
	health HealthChecker,
) *RestaurantFacade {
	return &RestaurantFacade{
		staff:    staff,
		orders:   orders,
		tables:   tables,
		products: products,
		hub:      hub,
		health:   health,
	}
}

func (f *RestaurantFacade) Authenticate(ctx context.Context, login, password string) (*model.Staff, string, error) {
	return f.staff.Authenticate(ctx, login, password)
}

func (f *RestaurantFacade) CreateStaff(ctx context.Context, in usecase.NewStaff) (*model.Staff, error) {
	return f.staff.Create(ctx, in)
}

func (f *RestaurantFacade) Staff(ctx context.Context, id int64) (*model.Staff, error) {
	return f.staff.GetByID(ctx, id)
}

func (f *RestaurantFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.staff.ParseToken(token)
}

// EnsureAdmin bootstraps the configured administrator account.
func (f *RestaurantFacade) EnsureAdmin(ctx context.Context, login, password string) error {
	return f.staff.EnsureAdmin(ctx, login, password)
}

func (f *RestaurantFacade) CreateTable(ctx context.Context, number, capacity int, location string) (*model.Table, error) {
	return f.tables.Create(ctx, number, capacity, location)
}

func (f *RestaurantFacade) Table(ctx context.Context, id int64) (*model.Table, error) {
	return f.tables.Get(ctx, id)
}

func (f *RestaurantFacade) Tables(ctx context.Context) ([]model.Table, error) {
	return f.tables.List(ctx)
}

func (f *RestaurantFacade) CreateProduct(ctx context.Context, name, category string, price decimal.Decimal, available bool) (*model.Product, error) {
	return f.products.Create(ctx, name, category, price, available)
}

func (f *RestaurantFacade) Products(ctx context.Context) ([]model.Product, error) {
	return f.products.List(ctx)
}

func (f *RestaurantFacade) SetProductAvailability(ctx context.Context, id int64, available bool) (*model.Product, error) {
	return f.products.SetAvailability(ctx, id, available)
}

func (f *RestaurantFacade) SubmitOrder(ctx context.Context, actor usecase.Actor, req usecase.SubmitRequest) (*model.Order, error) {
	return f.orders.Submit(ctx, actor, req)
}

func (f *RestaurantFacade) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

func (f *RestaurantFacade) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return f.orders.List(ctx, filter)
}

func (f *RestaurantFacade) TransitionOrder(ctx context.Context, actor usecase.Actor, req usecase.TransitionRequest) (*model.Order, error) {
	return f.orders.Transition(ctx, actor, req)
}

func (f *RestaurantFacade) ApplyDiscount(ctx context.Context, actor usecase.Actor, orderID int64, percent decimal.Decimal, reason string) (*model.Order, error) {
	return f.orders.ApplyDiscount(ctx, actor, orderID, percent, reason)
}

func (f *RestaurantFacade) Connect(ctx context.Context, a live.Admission) (*live.Session, error) {
	return f.hub.Connect(ctx, a)
}

func (f *RestaurantFacade) Presence() ([]model.Presence, map[model.Module]int) {
	return f.hub.Snapshot()
}

func (f *RestaurantFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
