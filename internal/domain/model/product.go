package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a menu entry.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Price     decimal.Decimal
	Available bool
	CreatedAt time.Time
}
