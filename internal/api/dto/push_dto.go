package dto

// PushSubscribeRequest mirrors the browser PushSubscription JSON.
type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// PushUnsubscribeRequest payload.
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// PushSendRequest payload for the test broadcast.
type PushSendRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// ChatTurn is one earlier message in the assistant conversation.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest payload for the shopping assistant.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
}
