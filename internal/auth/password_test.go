package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordMatches(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := PasswordMatches(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PasswordMatches(hash, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = PasswordMatches("not-a-hash", "secret1")
	assert.Error(t, err)
}

func TestPasswordMatchesBeyondBcryptLimit(t *testing.T) {
	long := strings.Repeat("correct horse battery staple ", 4)
	require.Greater(t, len(long), 72)

	hash, err := HashPassword(long, bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := PasswordMatches(hash, long)
	require.NoError(t, err)
	assert.True(t, ok)

	// Differs only past byte 72.
	ok, err = PasswordMatches(hash, long[:len(long)-1]+"!")
	require.NoError(t, err)
	assert.False(t, ok)
}
