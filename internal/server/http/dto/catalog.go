package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTableRequest adds a dining table.
type CreateTableRequest struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

type TableResponse struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProductRequest adds a menu product. Available defaults to true.
type CreateProductRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Available *bool           `json:"available"`
}

// AvailabilityRequest toggles whether a product can be ordered.
type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

type ProductResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}
