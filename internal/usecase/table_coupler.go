package usecase

import (
	"context"
	"time"

	"github.com/polkiloo/trattoria/internal/domain/lifecycle"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
)

// lockTable takes the table row lock. Every occupancy decision for a table
// happens under it, so concurrent submits and closes on one table serialize.
func lockTable(ctx context.Context, tx repository.Factory, tableID int64) (*model.Table, error) {
	return tx.Tables().GetForUpdate(ctx, tableID)
}

// coupleTable is the only writer of table occupancy. It runs inside the
// order's transaction on a table locked by lockTable and returns the
// table-updated event when occupancy flips.
func coupleTable(ctx context.Context, tx repository.Factory, table *model.Table, occupancy model.TableStatus, now time.Time) ([]model.Event, error) {
	if table.Status == occupancy {
		return nil, nil
	}
	updated, err := tx.Tables().SetStatus(ctx, table.ID, occupancy)
	if err != nil {
		return nil, err
	}
	return []model.Event{lifecycle.TableEvent(*updated, now)}, nil
}

// releaseTable frees the table once no other open order holds it. The lock is
// taken before counting so a concurrent submit or close is seen committed.
func releaseTable(ctx context.Context, tx repository.Factory, order model.Order, now time.Time) ([]model.Event, error) {
	table, err := lockTable(ctx, tx, order.TableID)
	if err != nil {
		return nil, err
	}
	open, err := tx.Orders().CountOpenByTable(ctx, order.TableID, order.ID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, nil
	}
	return coupleTable(ctx, tx, table, model.TableStatusFree, now)
}
