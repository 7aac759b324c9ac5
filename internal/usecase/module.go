package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/adapter/redisx"
	"github.com/polkiloo/trattoria/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewStaffUseCase,
	NewOrderUseCase,
	NewTableUseCase,
	newProductUseCase,
)

type productParams struct {
	fx.In

	Repos repository.Factory
	Cache *redisx.MenuCache
}

// newProductUseCase keeps a nil *redisx.MenuCache from becoming a non-nil interface.
func newProductUseCase(p productParams) *ProductUseCase {
	if p.Cache == nil {
		return NewProductUseCase(p.Repos, nil)
	}
	return NewProductUseCase(p.Repos, p.Cache)
}
