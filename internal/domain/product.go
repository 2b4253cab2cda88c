package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency applies when a product is created without one.
const DefaultCurrency = "USD"

// Product is a catalogue entry.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
