package repository

import (
	"context"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// ProductRepository describes persistence operations with menu products.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	SetAvailable(ctx context.Context, id int64, available bool) (*model.Product, error)
}
