package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, hasher.Verify("secret1", digest))
	assert.False(t, hasher.Verify("secret2", digest))
	assert.False(t, hasher.Verify("secret1", "not-a-bcrypt-digest"))

	again, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "each digest carries its own salt")
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}

func TestPasswordHasher_RejectsOverlongPassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	_, err := hasher.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
