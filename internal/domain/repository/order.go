package repository

import (
	"context"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create assigns the next sequential number and persisted id.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetForUpdate locks the order row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (*model.Order, error)
	// Update stores order if the persisted version still equals expectedVersion
	// and bumps order.Version; otherwise it fails with ErrConflict.
	Update(ctx context.Context, order *model.Order, expectedVersion int64) error
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	CountOpenByTable(ctx context.Context, tableID, excludeOrderID int64) (int, error)
}
