package handlers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/live"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/usecase"
)

// StaffFacade describes authentication and staff capabilities required by handlers.
type StaffFacade interface {
	Authenticate(ctx context.Context, login, password string) (*model.Staff, string, error)
	CreateStaff(ctx context.Context, in usecase.NewStaff) (*model.Staff, error)
	Staff(ctx context.Context, id int64) (*model.Staff, error)
	ParseToken(token string) (pkgAuth.Claims, error)
}

// TableFacade exposes the dining room layout.
type TableFacade interface {
	CreateTable(ctx context.Context, number, capacity int, location string) (*model.Table, error)
	Table(ctx context.Context, id int64) (*model.Table, error)
	Tables(ctx context.Context) ([]model.Table, error)
}

// ProductFacade exposes the menu.
type ProductFacade interface {
	CreateProduct(ctx context.Context, name, category string, price decimal.Decimal, available bool) (*model.Product, error)
	Products(ctx context.Context) ([]model.Product, error)
	SetProductAvailability(ctx context.Context, id int64, available bool) (*model.Product, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, actor usecase.Actor, req usecase.SubmitRequest) (*model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	TransitionOrder(ctx context.Context, actor usecase.Actor, req usecase.TransitionRequest) (*model.Order, error)
	ApplyDiscount(ctx context.Context, actor usecase.Actor, orderID int64, percent decimal.Decimal, reason string) (*model.Order, error)
}

// LiveFacade admits live-channel connections and reports presence.
type LiveFacade interface {
	Connect(ctx context.Context, a live.Admission) (*live.Session, error)
	Presence() ([]model.Presence, map[model.Module]int)
}

// RestaurantFacade aggregates the full set of operations used across handlers.
type RestaurantFacade interface {
	StaffFacade
	TableFacade
	ProductFacade
	OrderFacade
	LiveFacade
	HealthChecker
}

// IdempotencyStore remembers order submissions by Idempotency-Key.
type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, payload string) error
	GetResult(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}
