package domain

import "time"

// PushSubscription is a browser endpoint registered for web push.
type PushSubscription struct {
	ID        string
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

// PushMessage is the JSON payload delivered to subscribers.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// PushReport summarizes a broadcast.
type PushReport struct {
	Sent    int
	Failed  int
	Removed int
}
