package bcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	b := NewWithCost(bcrypt.MinCost)

	hash, err := b.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, b.ComparePassword(hash, "secret1"))
	assert.Error(t, b.ComparePassword(hash, "wrong"))
}

func TestHash_IsSalted(t *testing.T) {
	b := NewWithCost(bcrypt.MinCost)

	h1, err := b.HashPassword("secret1")
	require.NoError(t, err)
	h2, err := b.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestNew_ReadsCostFromEnv(t *testing.T) {
	t.Setenv("BCRYPT_COST", "5")
	b := New().(*bcryptService)
	assert.Equal(t, 5, b.cost)
}

func TestNew_IgnoresBadCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "999")
	b := New().(*bcryptService)
	assert.Equal(t, bcrypt.DefaultCost, b.cost)
}
