package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserVerified    EventType = "user.verified"
	EventPasswordChanged EventType = "password.changed"
	EventProductCreated  EventType = "product.created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserVerifiedPayload payload.
type UserVerifiedPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Via    string `json:"via"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
}
