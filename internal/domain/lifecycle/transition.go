// Package lifecycle holds the order state machine as pure functions: they take
// an order snapshot and return the next snapshot plus the events to publish.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
)

var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusPreparing, model.OrderStatusCancelled},
	model.OrderStatusPreparing: {model.OrderStatusReady, model.OrderStatusCancelled},
	model.OrderStatusReady:     {model.OrderStatusServed, model.OrderStatusPaid, model.OrderStatusCancelled},
	model.OrderStatusServed:    {model.OrderStatusPaid, model.OrderStatusCancelled},
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to model.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Draft carries a validated cart ready to become an order.
type Draft struct {
	TableID int64
	StaffID int64
	// ActorID is who submitted the order; zero means StaffID.
	ActorID int64
	Items   []model.LineItem
	Note    string
}

// PaymentInput accompanies a transition to Paid.
type PaymentInput struct {
	Method   model.PaymentMethod
	Tendered decimal.Decimal
}

// Command requests a status change on behalf of an actor.
type Command struct {
	Target    model.OrderStatus
	ActorID   int64
	ActorRole model.Role
	Note      string
	Payment   *PaymentInput
}

// Open builds the initial Pending order from d. Number and ID are assigned on persist.
func Open(d Draft, now time.Time) (model.Order, error) {
	if len(d.Items) == 0 {
		return model.Order{}, fmt.Errorf("%w: order has no items", domainErrors.ErrInvalidInput)
	}
	for _, item := range d.Items {
		if item.Quantity < 1 {
			return model.Order{}, fmt.Errorf("%w: quantity of %q must be at least 1", domainErrors.ErrInvalidInput, item.Name)
		}
	}

	actor := d.ActorID
	if actor == 0 {
		actor = d.StaffID
	}

	order := model.Order{
		TableID:       d.TableID,
		StaffID:       d.StaffID,
		Items:         append([]model.LineItem(nil), d.Items...),
		PaymentMethod: model.PaymentMethodPending,
		Status:        model.OrderStatusPending,
		Note:          d.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
		History: []model.StatusEntry{{
			Status:  model.OrderStatusPending,
			At:      now,
			ActorID: actor,
			Note:    d.Note,
		}},
	}
	Recalculate(&order)
	return order, nil
}

// Apply validates cmd against current and returns the next order state with its events.
// On error the returned order is zero and current is left untouched.
func Apply(current model.Order, cmd Command, now time.Time) (model.Order, []model.Event, error) {
	if !CanTransition(current.Status, cmd.Target) {
		return model.Order{}, nil, fmt.Errorf("%w: order %d is %s and cannot move to %s",
			domainErrors.ErrInvalidTransition, current.Number, current.Status, cmd.Target)
	}
	if !cmd.ActorRole.MayTransitionTo(cmd.Target) {
		return model.Order{}, nil, fmt.Errorf("%w: role %q cannot move orders to %s",
			domainErrors.ErrForbidden, cmd.ActorRole, cmd.Target)
	}

	next := current.Clone()
	stamp := now
	switch cmd.Target {
	case model.OrderStatusPreparing:
		next.StartedAt = &stamp
	case model.OrderStatusReady:
		next.ReadyAt = &stamp
	case model.OrderStatusServed:
		next.ServedAt = &stamp
	case model.OrderStatusPaid:
		if err := settle(&next, cmd, now); err != nil {
			return model.Order{}, nil, err
		}
	case model.OrderStatusCancelled:
		if strings.TrimSpace(cmd.Note) == "" {
			return model.Order{}, nil, fmt.Errorf("%w: cancellation requires a reason", domainErrors.ErrInvalidInput)
		}
		next.CancelledAt = &stamp
	}

	next.Status = cmd.Target
	next.UpdatedAt = now
	next.History = append(next.History, model.StatusEntry{
		Status:  cmd.Target,
		At:      now,
		ActorID: cmd.ActorID,
		Note:    cmd.Note,
	})

	return next, transitionEvents(next, now), nil
}

func settle(o *model.Order, cmd Command, now time.Time) error {
	if cmd.Payment == nil {
		return fmt.Errorf("%w: payment details are required", domainErrors.ErrInvalidInput)
	}
	switch cmd.Payment.Method {
	case model.PaymentMethodCash, model.PaymentMethodTransfer:
	default:
		return fmt.Errorf("%w: unsupported payment method %q", domainErrors.ErrInvalidInput, cmd.Payment.Method)
	}
	if cmd.Payment.Tendered.IsNegative() {
		return fmt.Errorf("%w: tendered amount must not be negative", domainErrors.ErrInvalidInput)
	}

	o.PaymentMethod = cmd.Payment.Method
	Recalculate(o)

	if cmd.Payment.Tendered.LessThan(o.Total) {
		return fmt.Errorf("%w: tendered %s is below total %s",
			domainErrors.ErrInsufficientPayment, cmd.Payment.Tendered.StringFixed(2), o.Total.StringFixed(2))
	}

	paidAt := now
	o.PaidAt = &paidAt
	o.Payment = &model.Payment{
		PaidAt:    now,
		CashierID: cmd.ActorID,
		Tendered:  cmd.Payment.Tendered,
		Change:    cmd.Payment.Tendered.Sub(o.Total),
	}
	return nil
}

// ApplyDiscount sets or clears (percent zero) the manual discount of an open order.
func ApplyDiscount(current model.Order, role model.Role, percent decimal.Decimal, reason string, now time.Time) (model.Order, []model.Event, error) {
	if current.Status.Terminal() {
		return model.Order{}, nil, fmt.Errorf("%w: order %d is %s", domainErrors.ErrInvalidTransition, current.Number, current.Status)
	}
	if role != model.RoleAdmin && role != model.RoleCashier {
		return model.Order{}, nil, fmt.Errorf("%w: role %q cannot set discounts", domainErrors.ErrForbidden, role)
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return model.Order{}, nil, fmt.Errorf("%w: discount must be between 0 and 100 percent", domainErrors.ErrInvalidInput)
	}

	next := current.Clone()
	if percent.IsZero() {
		next.Discount = model.Discount{}
	} else {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return model.Order{}, nil, fmt.Errorf("%w: discount requires a reason", domainErrors.ErrInvalidInput)
		}
		next.Discount = model.Discount{Kind: model.DiscountKindManual, Percentage: percent, Reason: reason}
	}
	Recalculate(&next)
	next.UpdatedAt = now

	return next, []model.Event{newOrderEvent(model.EventOrderUpdated, next, now, model.TopicCashier)}, nil
}
