package lifecycle

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

const cashDiscountReason = "cash payment"

var (
	cashDiscountPercent = decimal.NewFromInt(10)
	hundred             = decimal.NewFromInt(100)
)

// Recalculate refreshes line subtotals, discount and total of o.
// A manual discount wins over the cash discount; the two never stack.
func Recalculate(o *model.Order) {
	subtotal := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.Subtotal)
	}
	o.Subtotal = subtotal

	switch {
	case o.Discount.Kind == model.DiscountKindManual:
		o.Discount.Amount = percentOf(subtotal, o.Discount.Percentage)
	case o.PaymentMethod == model.PaymentMethodCash:
		o.Discount = model.Discount{
			Kind:       model.DiscountKindCash,
			Percentage: cashDiscountPercent,
			Amount:     percentOf(subtotal, cashDiscountPercent),
			Reason:     cashDiscountReason,
		}
	default:
		o.Discount = model.Discount{Percentage: decimal.Zero, Amount: decimal.Zero}
	}

	total := subtotal.Sub(o.Discount.Amount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total
}

func percentOf(value, percent decimal.Decimal) decimal.Decimal {
	return value.Mul(percent).Div(hundred).Round(2)
}
