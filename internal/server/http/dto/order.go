package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest references a product in a submitted order.
type OrderItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

// SubmitOrderRequest describes a new order. StaffID defaults to the caller.
type SubmitOrderRequest struct {
	TableID int64              `json:"table_id"`
	StaffID int64              `json:"staff_id"`
	Items   []OrderItemRequest `json:"items"`
	Note    string             `json:"note"`
}

// PaymentRequest accompanies a transition to PAID.
type PaymentRequest struct {
	Method   string          `json:"method"`
	Tendered decimal.Decimal `json:"tendered"`
}

// TransitionRequest moves an order to another status.
type TransitionRequest struct {
	Status  string          `json:"status"`
	Note    string          `json:"note"`
	Payment *PaymentRequest `json:"payment,omitempty"`
}

// DiscountRequest sets a manual discount; zero percentage clears it.
type DiscountRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
	Reason     string          `json:"reason"`
}

type LineItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Note      string          `json:"note,omitempty"`
}

type DiscountResponse struct {
	Kind       string          `json:"kind"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
}

type PaymentResponse struct {
	PaidAt    time.Time       `json:"paid_at"`
	CashierID int64           `json:"cashier_id"`
	Tendered  decimal.Decimal `json:"tendered"`
	Change    decimal.Decimal `json:"change"`
}

type StatusEntryResponse struct {
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
	ActorID int64     `json:"actor_id"`
	Note    string    `json:"note,omitempty"`
}

// OrderResponse is the full order snapshot sent to clients.
type OrderResponse struct {
	ID            int64                 `json:"id"`
	Number        int64                 `json:"number"`
	TableID       int64                 `json:"table_id"`
	StaffID       int64                 `json:"staff_id"`
	Status        string                `json:"status"`
	Items         []LineItemResponse    `json:"items"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      *DiscountResponse     `json:"discount,omitempty"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	Payment       *PaymentResponse      `json:"payment,omitempty"`
	History       []StatusEntryResponse `json:"history"`
	Note          string                `json:"note,omitempty"`
	Version       int64                 `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	ReadyAt       *time.Time            `json:"ready_at,omitempty"`
	ServedAt      *time.Time            `json:"served_at,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
}
