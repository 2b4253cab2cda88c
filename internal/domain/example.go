package domain

import "time"

// Example is the demo resource exposed under /examples.
type Example struct {
	ID          string
	Title       string
	Description string
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
