package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
)

// MenuCache keeps the product listing close to the readers.
type MenuCache interface {
	Menu(ctx context.Context, load func(ctx context.Context) ([]model.Product, error)) ([]model.Product, error)
	Invalidate(ctx context.Context)
}

// ProductUseCase manages the menu.
type ProductUseCase struct {
	repos repository.Factory
	cache MenuCache
}

// NewProductUseCase constructs ProductUseCase. cache may be nil.
func NewProductUseCase(repos repository.Factory, cache MenuCache) *ProductUseCase {
	return &ProductUseCase{repos: repos, cache: cache}
}

// Create adds a product to the menu.
func (u *ProductUseCase) Create(ctx context.Context, name, category string, price decimal.Decimal, available bool) (*model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", domainErrors.ErrInvalidInput)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domainErrors.ErrInvalidInput)
	}
	product := &model.Product{
		Name:      name,
		Category:  strings.TrimSpace(category),
		Price:     price.Round(2),
		Available: available,
	}
	if err := u.repos.Products().Create(ctx, product); err != nil {
		return nil, err
	}
	u.invalidate(ctx)
	return product, nil
}

// List returns the menu, served from cache when one is configured.
func (u *ProductUseCase) List(ctx context.Context) ([]model.Product, error) {
	if u.cache == nil {
		return u.repos.Products().List(ctx)
	}
	return u.cache.Menu(ctx, u.repos.Products().List)
}

// SetAvailability marks a product orderable or not.
func (u *ProductUseCase) SetAvailability(ctx context.Context, id int64, available bool) (*model.Product, error) {
	product, err := u.repos.Products().SetAvailable(ctx, id, available)
	if err != nil {
		return nil, err
	}
	u.invalidate(ctx)
	return product, nil
}

func (u *ProductUseCase) invalidate(ctx context.Context) {
	if u.cache != nil {
		u.cache.Invalidate(ctx)
	}
}
