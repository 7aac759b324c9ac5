package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
)

const orderColumns = `id, number, table_id, staff_id, status, payment_method, items, history, discount, payment,
       subtotal::text, total::text, note, version, created_at, updated_at,
       started_at, ready_at, served_at, paid_at, cancelled_at`

// JSONB documents stored alongside the order row.
type lineItemDoc struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
	Note      string `json:"note,omitempty"`
}

type statusEntryDoc struct {
	Status  model.OrderStatus `json:"status"`
	At      time.Time         `json:"at"`
	ActorID int64             `json:"actor_id"`
	Note    string            `json:"note,omitempty"`
}

type discountDoc struct {
	Kind       model.DiscountKind `json:"kind,omitempty"`
	Percentage string             `json:"percentage"`
	Amount     string             `json:"amount"`
	Reason     string             `json:"reason,omitempty"`
}

type paymentDoc struct {
	PaidAt    time.Time `json:"paid_at"`
	CashierID int64     `json:"cashier_id"`
	Tendered  string    `json:"tendered"`
	Change    string    `json:"change"`
}

type orderDocs struct {
	items    []byte
	history  []byte
	discount []byte
	payment  []byte
}

func encodeOrder(o *model.Order) (orderDocs, error) {
	items := make([]lineItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
			Subtotal:  it.Subtotal.String(),
			Note:      it.Note,
		})
	}
	history := make([]statusEntryDoc, 0, len(o.History))
	for _, h := range o.History {
		history = append(history, statusEntryDoc(h))
	}

	var (
		docs orderDocs
		err  error
	)
	if docs.items, err = json.Marshal(items); err != nil {
		return docs, fmt.Errorf("encode items: %w", err)
	}
	if docs.history, err = json.Marshal(history); err != nil {
		return docs, fmt.Errorf("encode history: %w", err)
	}
	docs.discount, err = json.Marshal(discountDoc{
		Kind:       o.Discount.Kind,
		Percentage: o.Discount.Percentage.String(),
		Amount:     o.Discount.Amount.String(),
		Reason:     o.Discount.Reason,
	})
	if err != nil {
		return docs, fmt.Errorf("encode discount: %w", err)
	}
	if o.Payment != nil {
		docs.payment, err = json.Marshal(paymentDoc{
			PaidAt:    o.Payment.PaidAt,
			CashierID: o.Payment.CashierID,
			Tendered:  o.Payment.Tendered.String(),
			Change:    o.Payment.Change.String(),
		})
		if err != nil {
			return docs, fmt.Errorf("encode payment: %w", err)
		}
	}
	return docs, nil
}

func decodeOrder(o *model.Order, docs orderDocs) error {
	var items []lineItemDoc
	if err := json.Unmarshal(docs.items, &items); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	o.Items = make([]model.LineItem, 0, len(items))
	for _, it := range items {
		unit, err := parseDecimal(it.UnitPrice)
		if err != nil {
			return err
		}
		sub, err := parseDecimal(it.Subtotal)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, model.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			Subtotal:  sub,
			Note:      it.Note,
		})
	}

	var history []statusEntryDoc
	if err := json.Unmarshal(docs.history, &history); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	o.History = make([]model.StatusEntry, 0, len(history))
	for _, h := range history {
		o.History = append(o.History, model.StatusEntry(h))
	}

	var discount discountDoc
	if err := json.Unmarshal(docs.discount, &discount); err != nil {
		return fmt.Errorf("decode discount: %w", err)
	}
	o.Discount.Kind = discount.Kind
	o.Discount.Reason = discount.Reason
	var err error
	if o.Discount.Percentage, err = parseDecimal(discount.Percentage); err != nil {
		return err
	}
	if o.Discount.Amount, err = parseDecimal(discount.Amount); err != nil {
		return err
	}

	if len(docs.payment) == 0 || string(docs.payment) == "null" {
		o.Payment = nil
		return nil
	}
	var payment paymentDoc
	if err := json.Unmarshal(docs.payment, &payment); err != nil {
		return fmt.Errorf("decode payment: %w", err)
	}
	o.Payment = &model.Payment{PaidAt: payment.PaidAt, CashierID: payment.CashierID}
	if o.Payment.Tendered, err = parseDecimal(payment.Tendered); err != nil {
		return err
	}
	if o.Payment.Change, err = parseDecimal(payment.Change); err != nil {
		return err
	}
	return nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o               model.Order
		docs            orderDocs
		subtotal, total string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.TableID, &o.StaffID, &o.Status, &o.PaymentMethod,
		&docs.items, &docs.history, &docs.discount, &docs.payment,
		&subtotal, &total, &o.Note, &o.Version, &o.CreatedAt, &o.UpdatedAt,
		&o.StartedAt, &o.ReadyAt, &o.ServedAt, &o.PaidAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if err := decodeOrder(&o, docs); err != nil {
		return nil, fmt.Errorf("order %d: %w", o.ID, err)
	}
	if o.Subtotal, err = parseDecimal(subtotal); err != nil {
		return nil, err
	}
	if o.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	docs, err := encodeOrder(order)
	if err != nil {
		return err
	}
	const query = `INSERT INTO orders (table_id, staff_id, status, payment_method, items, history, discount, payment,
                   subtotal, total, note, version, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10::numeric, $11, 1, $12, $13)
                   RETURNING id, number`
	err = r.q.QueryRow(ctx, query,
		order.TableID, order.StaffID, order.Status, order.PaymentMethod,
		docs.items, docs.history, docs.discount, docs.payment,
		order.Subtotal.StringFixed(2), order.Total.StringFixed(2), order.Note,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID, &order.Number)
	if err != nil {
		return mapError(err)
	}
	order.Version = 1
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order, expectedVersion int64) error {
	docs, err := encodeOrder(order)
	if err != nil {
		return err
	}
	const query = `UPDATE orders SET status=$1, payment_method=$2, items=$3, history=$4, discount=$5, payment=$6,
                   subtotal=$7::numeric, total=$8::numeric, note=$9, updated_at=$10,
                   started_at=$11, ready_at=$12, served_at=$13, paid_at=$14, cancelled_at=$15,
                   version=version+1
                   WHERE id=$16 AND version=$17`
	tag, err := r.q.Exec(ctx, query,
		order.Status, order.PaymentMethod, docs.items, docs.history, docs.discount, docs.payment,
		order.Subtotal.StringFixed(2), order.Total.StringFixed(2), order.Note, order.UpdatedAt,
		order.StartedAt, order.ReadyAt, order.ServedAt, order.PaidAt, order.CancelledAt,
		order.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrConflict
	}
	order.Version = expectedVersion + 1
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.TableID > 0 {
		args = append(args, filter.TableID)
		where = append(where, fmt.Sprintf("table_id = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) CountOpenByTable(ctx context.Context, tableID, excludeOrderID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE table_id=$1 AND id<>$2 AND status = ANY($3)`
	open := make([]string, 0, 4)
	for _, s := range model.OpenStatuses() {
		open = append(open, string(s))
	}
	var count int
	if err := r.q.QueryRow(ctx, query, tableID, excludeOrderID, open).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
