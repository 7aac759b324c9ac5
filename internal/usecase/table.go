package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/lifecycle"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
	"github.com/polkiloo/trattoria/internal/notify"
)

// TableUseCase manages the dining room layout. Occupancy is owned by the
// order lifecycle and is not writable here.
type TableUseCase struct {
	repos     repository.Factory
	publisher notify.Publisher
	now       func() time.Time
}

// NewTableUseCase constructs TableUseCase.
func NewTableUseCase(repos repository.Factory, publisher notify.Publisher) *TableUseCase {
	return &TableUseCase{repos: repos, publisher: publisher, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds a free table.
func (u *TableUseCase) Create(ctx context.Context, number, capacity int, location string) (*model.Table, error) {
	if number <= 0 || capacity <= 0 {
		return nil, fmt.Errorf("%w: table number and capacity must be positive", domainErrors.ErrInvalidInput)
	}
	table := &model.Table{
		Number:   number,
		Capacity: capacity,
		Location: strings.TrimSpace(location),
		Status:   model.TableStatusFree,
	}
	if err := u.repos.Tables().Create(ctx, table); err != nil {
		return nil, err
	}
	publishCommitted(ctx, u.publisher, lifecycle.TableEvent(*table, u.now()))
	return table, nil
}

func (u *TableUseCase) Get(ctx context.Context, id int64) (*model.Table, error) {
	return u.repos.Tables().GetByID(ctx, id)
}

func (u *TableUseCase) List(ctx context.Context) ([]model.Table, error) {
	return u.repos.Tables().List(ctx)
}
