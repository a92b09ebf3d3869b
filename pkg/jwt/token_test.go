package jwtPkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")

	token, expiredAt, err := Sign(7, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiredAt, time.Now().Unix())

	accountID, err := ParseAccountID(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), accountID)
}

func TestParse_ExpiredToken(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")

	token, _, err := Sign(7, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccountID(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")
	token, _, err := Sign(7, time.Hour)
	require.NoError(t, err)

	t.Setenv(SecretEnvKey, "other-secret")
	_, err = ParseAccountID(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_Garbage(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")

	_, err := ParseAccountID("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSign_RequiresSecret(t *testing.T) {
	t.Setenv(SecretEnvKey, "")

	_, _, err := Sign(7, time.Hour)
	assert.Error(t, err)
}

func TestWellFormed(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")

	token, _, err := Sign(7, time.Hour)
	require.NoError(t, err)

	assert.True(t, WellFormed(token))
	assert.False(t, WellFormed("garbage"))
	assert.False(t, WellFormed(""))
	assert.False(t, WellFormed("a.b"))
}
