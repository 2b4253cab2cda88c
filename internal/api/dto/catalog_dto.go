package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest payload for create and update. Update treats nil as unchanged.
type ProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
	Currency    *string          `json:"currency"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductListResponse is one page of the catalogue.
type ProductListResponse struct {
	Message  string            `json:"message"`
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Pages    int               `json:"pages"`
}

// ExampleRequest payload for create and update.
type ExampleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ExampleResponse is the public view of an example.
type ExampleResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   *string   `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
