package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
	"time"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// CodeGenerator produces one-time codes.
type CodeGenerator func() (string, error)

// GenerateCode returns a uniformly random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// IssueCode builds a code slot for action valid for ttl from now.
func IssueCode(gen CodeGenerator, action domain.PendingAction, now time.Time, ttl time.Duration) (domain.OneTimeCode, error) {
	code, err := gen()
	if err != nil {
		return domain.OneTimeCode{}, err
	}
	return domain.OneTimeCode{Action: action, Code: code, ExpiresAt: now.Add(ttl)}, nil
}

// CheckCode validates a submitted code against the pending slot.
// Expiry is checked before the value so a stale code always reports ErrCodeExpired.
func CheckCode(pending *domain.OneTimeCode, action domain.PendingAction, submitted string, now time.Time) error {
	if pending == nil || pending.Action != action {
		return domain.ErrInvalidCode
	}
	if pending.Expired(now) {
		return domain.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(submitted)) != 1 {
		return domain.ErrInvalidCode
	}
	return nil
}
