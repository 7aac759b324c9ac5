package repository

import (
	"context"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// TableRepository describes persistence operations with dining tables.
type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id int64) (*model.Table, error)
	// GetForUpdate locks the table row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	SetStatus(ctx context.Context, id int64, status model.TableStatus) (*model.Table, error)
}
