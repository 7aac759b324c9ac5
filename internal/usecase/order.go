package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/lifecycle"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
	"github.com/polkiloo/trattoria/internal/notify"
)

// maxTransitionAttempts bounds retries after a lost optimistic update.
const maxTransitionAttempts = 3

// Actor is the authenticated staff member performing an operation.
type Actor struct {
	StaffID int64
	Role    model.Role
}

// ItemRequest references a product in a submitted order.
type ItemRequest struct {
	ProductID int64
	Quantity  int
	Note      string
}

// SubmitRequest carries a new order. StaffID zero means the actor.
type SubmitRequest struct {
	TableID int64
	StaffID int64
	Items   []ItemRequest
	Note    string
}

// TransitionRequest asks to move an order to Target.
type TransitionRequest struct {
	OrderID int64
	Target  model.OrderStatus
	Note    string
	Payment *lifecycle.PaymentInput
}

// OrderUseCase drives orders through the lifecycle and publishes the
// resulting events once the change is committed.
type OrderUseCase struct {
	uow       repository.UnitOfWork
	repos     repository.Factory
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(uow repository.UnitOfWork, repos repository.Factory, publisher notify.Publisher, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		uow:       uow,
		repos:     repos,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the cart, persists a Pending order and occupies its table.
func (u *OrderUseCase) Submit(ctx context.Context, actor Actor, req SubmitRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", domainErrors.ErrInvalidInput)
	}
	staffID := req.StaffID
	if staffID == 0 {
		staffID = actor.StaffID
	}
	if staffID != actor.StaffID && actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: orders can only be taken in your own name", domainErrors.ErrForbidden)
	}

	var (
		created model.Order
		events  []model.Event
	)
	err := u.uow.Do(ctx, func(ctx context.Context, tx repository.Factory) error {
		table, err := lockTable(ctx, tx, req.TableID)
		if err != nil {
			return fmt.Errorf("table %d: %w", req.TableID, err)
		}
		staff, err := tx.Staff().GetByID(ctx, staffID)
		if err != nil {
			return fmt.Errorf("staff %d: %w", staffID, err)
		}
		if !staff.Role.TakesOrders() {
			return fmt.Errorf("%w: %s does not take orders", domainErrors.ErrForbidden, staff.Login)
		}

		items, err := u.lineItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		now := u.now()
		order, err := lifecycle.Open(lifecycle.Draft{
			TableID: req.TableID,
			StaffID: staffID,
			ActorID: actor.StaffID,
			Items:   items,
			Note:    strings.TrimSpace(req.Note),
		}, now)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, &order); err != nil {
			return err
		}

		tableEvents, err := coupleTable(ctx, tx, table, model.TableStatusOccupied, now)
		if err != nil {
			return err
		}

		created = order
		events = append([]model.Event{lifecycle.CreatedEvent(order, now)}, tableEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishCommitted(ctx, u.publisher, events...)
	u.logger.Info("order submitted",
		slog.Int64("order", created.Number),
		slog.Int64("table", created.TableID),
		slog.String("total", created.Total.StringFixed(2)),
	)
	return &created, nil
}

func (u *OrderUseCase) lineItems(ctx context.Context, tx repository.Factory, reqs []ItemRequest) ([]model.LineItem, error) {
	ids := make([]int64, 0, len(reqs))
	for _, it := range reqs {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity of product %d must be at least 1", domainErrors.ErrInvalidInput, it.ProductID)
		}
		ids = append(ids, it.ProductID)
	}

	products, err := tx.Products().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.LineItem, 0, len(reqs))
	for _, it := range reqs {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", it.ProductID, domainErrors.ErrNotFound)
		}
		if !p.Available {
			return nil, fmt.Errorf("product %q: %w", p.Name, domainErrors.ErrUnavailable)
		}
		items = append(items, model.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Note:      strings.TrimSpace(it.Note),
		})
	}
	return items, nil
}

// Transition moves an order to req.Target on behalf of actor.
func (u *OrderUseCase) Transition(ctx context.Context, actor Actor, req TransitionRequest) (*model.Order, error) {
	if !req.Target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidInput, req.Target)
	}

	var (
		updated model.Order
		events  []model.Event
		err     error
	)
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		updated, events, err = u.transitionOnce(ctx, actor, req)
		if !errors.Is(err, domainErrors.ErrConflict) {
			break
		}
		u.logger.Warn("order changed concurrently, retrying",
			slog.Int64("order_id", req.OrderID),
			slog.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	publishCommitted(ctx, u.publisher, events...)
	u.logger.Info("order transitioned",
		slog.Int64("order", updated.Number),
		slog.String("status", string(updated.Status)),
		slog.Int64("actor", actor.StaffID),
	)
	return &updated, nil
}

func (u *OrderUseCase) transitionOnce(ctx context.Context, actor Actor, req TransitionRequest) (model.Order, []model.Event, error) {
	var (
		next   model.Order
		events []model.Event
	)
	err := u.uow.Do(ctx, func(ctx context.Context, tx repository.Factory) error {
		current, err := tx.Orders().GetForUpdate(ctx, req.OrderID)
		if err != nil {
			return fmt.Errorf("order %d: %w", req.OrderID, err)
		}

		now := u.now()
		n, evts, err := lifecycle.Apply(*current, lifecycle.Command{
			Target:    req.Target,
			ActorID:   actor.StaffID,
			ActorRole: actor.Role,
			Note:      strings.TrimSpace(req.Note),
			Payment:   req.Payment,
		}, now)
		if err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, &n, current.Version); err != nil {
			return err
		}

		if n.Status.Terminal() {
			tableEvents, err := releaseTable(ctx, tx, n, now)
			if err != nil {
				return err
			}
			evts = append(evts, tableEvents...)
		}

		next, events = n, evts
		return nil
	})
	return next, events, err
}

// ApplyDiscount sets or clears the manual discount of an open order.
func (u *OrderUseCase) ApplyDiscount(ctx context.Context, actor Actor, orderID int64, percent decimal.Decimal, reason string) (*model.Order, error) {
	var (
		updated model.Order
		events  []model.Event
		err     error
	)
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		err = u.uow.Do(ctx, func(ctx context.Context, tx repository.Factory) error {
			current, err := tx.Orders().GetForUpdate(ctx, orderID)
			if err != nil {
				return fmt.Errorf("order %d: %w", orderID, err)
			}
			next, evts, err := lifecycle.ApplyDiscount(*current, actor.Role, percent, reason, u.now())
			if err != nil {
				return err
			}
			if err := tx.Orders().Update(ctx, &next, current.Version); err != nil {
				return err
			}
			updated, events = next, evts
			return nil
		})
		if !errors.Is(err, domainErrors.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	publishCommitted(ctx, u.publisher, events...)
	return &updated, nil
}

// Get returns one order.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.repos.Orders().GetByID(ctx, id)
}

// List returns orders matching filter; without statuses it lists open orders.
func (u *OrderUseCase) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidInput, s)
		}
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = model.OpenStatuses()
	}
	return u.repos.Orders().List(ctx, filter)
}

// publishCommitted delivers the events of a committed change. The change is
// already durable, so the caller's cancellation must not stop delivery.
func publishCommitted(ctx context.Context, publisher notify.Publisher, events ...model.Event) {
	publisher.Publish(context.WithoutCancel(ctx), events...)
}
