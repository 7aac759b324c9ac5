package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// OpenStatuses lists statuses of orders that still hold their table.
func OpenStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusServed}
}

// PaymentMethod describes how the bill is settled.
type PaymentMethod string

const (
	PaymentMethodPending  PaymentMethod = "PENDING"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// DiscountKind tells which rule produced a discount.
type DiscountKind string

const (
	DiscountKindNone   DiscountKind = ""
	DiscountKindCash   DiscountKind = "CASH"
	DiscountKindManual DiscountKind = "MANUAL"
)

// LineItem is an ordered product with name and price captured at submit time.
type LineItem struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Note      string
}

// Discount applied to the order subtotal.
type Discount struct {
	Kind       DiscountKind
	Percentage decimal.Decimal
	Amount     decimal.Decimal
	Reason     string
}

// Payment records settlement details.
type Payment struct {
	PaidAt    time.Time
	CashierID int64
	Tendered  decimal.Decimal
	Change    decimal.Decimal
}

// StatusEntry is one record of the append-only status history.
type StatusEntry struct {
	Status  OrderStatus
	At      time.Time
	ActorID int64
	Note    string
}

// Order is a table's request for products tracked through the status lifecycle.
type Order struct {
	ID            int64
	Number        int64
	TableID       int64
	StaffID       int64
	Items         []LineItem
	Subtotal      decimal.Decimal
	Discount      Discount
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Payment       *Payment
	Status        OrderStatus
	History       []StatusEntry
	Note          string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	ReadyAt       *time.Time
	ServedAt      *time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
}

// Clone returns a deep copy so callers can mutate it freely.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = append([]LineItem(nil), o.Items...)
	}
	if o.History != nil {
		out.History = append([]StatusEntry(nil), o.History...)
	}
	if o.Payment != nil {
		p := *o.Payment
		out.Payment = &p
	}
	out.StartedAt = cloneTime(o.StartedAt)
	out.ReadyAt = cloneTime(o.ReadyAt)
	out.ServedAt = cloneTime(o.ServedAt)
	out.PaidAt = cloneTime(o.PaidAt)
	out.CancelledAt = cloneTime(o.CancelledAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Statuses []OrderStatus
	TableID  int64
	Limit    int
}
