package auth

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, codeMin)
		assert.LessOrEqual(t, n, codeMax)
	}
}

func TestIssueCode(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	gen := func() (string, error) { return "123456", nil }

	code, err := IssueCode(gen, domain.PendingActionVerification, now, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.OneTimeCode{
		Action:    domain.PendingActionVerification,
		Code:      "123456",
		ExpiresAt: now.Add(10 * time.Minute),
	}, code)

	_, err = IssueCode(func() (string, error) { return "", errors.New("entropy") }, domain.PendingActionVerification, now, time.Minute)
	assert.Error(t, err)
}

func TestCheckCode(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pending := &domain.OneTimeCode{
		Action:    domain.PendingActionVerification,
		Code:      "654321",
		ExpiresAt: issued.Add(10 * time.Minute),
	}

	cases := []struct {
		name    string
		pending *domain.OneTimeCode
		action  domain.PendingAction
		code    string
		now     time.Time
		want    error
	}{
		{"match within window", pending, domain.PendingActionVerification, "654321", issued.Add(time.Minute), nil},
		{"match at expiry instant", pending, domain.PendingActionVerification, "654321", issued.Add(10 * time.Minute), nil},
		{"wrong code", pending, domain.PendingActionVerification, "111111", issued.Add(time.Minute), domain.ErrInvalidCode},
		{"expired correct code", pending, domain.PendingActionVerification, "654321", issued.Add(11 * time.Minute), domain.ErrCodeExpired},
		{"expired wrong code", pending, domain.PendingActionVerification, "111111", issued.Add(11 * time.Minute), domain.ErrCodeExpired},
		{"other action", pending, domain.PendingActionPasswordReset, "654321", issued.Add(time.Minute), domain.ErrInvalidCode},
		{"nothing pending", nil, domain.PendingActionVerification, "654321", issued, domain.ErrInvalidCode},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckCode(tc.pending, tc.action, tc.code, tc.now)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
