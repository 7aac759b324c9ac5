package repository

import (
	"context"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// StaffRepository describes persistence operations with staff accounts.
type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	GetByLogin(ctx context.Context, login string) (*model.Staff, error)
	GetByID(ctx context.Context, id int64) (*model.Staff, error)
}
