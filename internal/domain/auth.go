package domain

import "time"

// PendingAction tags what a stored one-time code unlocks.
type PendingAction string

const (
	PendingActionVerification  PendingAction = "verification"
	PendingActionPasswordReset PendingAction = "password_reset"
)

// OneTimeCode is the single code slot held on an account.
// Issuing a new code of any action replaces the previous one.
type OneTimeCode struct {
	Action    PendingAction
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at now.
func (c OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}
