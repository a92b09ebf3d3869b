package authService

import (
	"context"
	"testing"

	"VisageAuth/internal/api/auth"
	"VisageAuth/pkg/descriptor"
	jwtPkg "VisageAuth/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWithPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")

	t.Run("success with email", func(t *testing.T) {
		res, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
			Email:    "alice@example.com",
			Password: "secret1",
		}, "127.0.0.1", "go-test")
		require.NoError(t, err)
		assert.True(t, res.Success)
		require.NotEmpty(t, res.Token)

		accountID, err := jwtPkg.ParseAccountID(res.Token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, accountID)
	})

	t.Run("success with username", func(t *testing.T) {
		res, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
			Username: "alice",
			Password: "secret1",
		}, "127.0.0.1", "go-test")
		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		}, "127.0.0.1", "go-test")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown identity fails the same way", func(t *testing.T) {
		_, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
			Email:    "nobody@example.com",
			Password: "secret1",
		}, "127.0.0.1", "go-test")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("records audit sessions", func(t *testing.T) {
		history, err := env.svc.Session().History(ctx, account.ID, 10)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		assert.Equal(t, "password", history[0].Method)
		assert.Equal(t, "127.0.0.1", history[0].IPAddress)
	})
}

func TestLoginWithPassword_ThrottlesAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerAccount(t, env, "alice@example.com", "alice", "secret1")

	for i := 0; i < maxFailedAttempts; i++ {
		_, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		}, "127.0.0.1", "go-test")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	_, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	}, "127.0.0.1", "go-test")
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts, "even the right password is throttled")
}

func TestLoginWithPassword_SuccessResetsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerAccount(t, env, "alice@example.com", "alice", "secret1")

	for i := 0; i < maxFailedAttempts-1; i++ {
		_, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		}, "127.0.0.1", "go-test")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	res, err := env.svc.Auth().LoginWithPassword(ctx, auth.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	}, "127.0.0.1", "go-test")
	require.NoError(t, err)
	assert.True(t, res.Success)

	count, err := env.redis.FailedAttempts(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLoginWithFace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	enroll(t, env, account.ID, descriptor.Vector{1, 0, 0}, true)

	t.Run("matching probe logs in", func(t *testing.T) {
		res, err := env.svc.Auth().LoginWithFace(ctx, auth.FaceLoginRequest{
			FaceDescriptor: descriptor.Vector{1, 0, 0},
		}, "127.0.0.1", "go-test")
		require.NoError(t, err)
		assert.True(t, res.Success)

		accountID, err := jwtPkg.ParseAccountID(res.Token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, accountID)

		history, err := env.svc.Session().History(ctx, account.ID, 10)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		assert.Equal(t, "face", history[0].Method)
	})

	t.Run("unmatched probe is rejected", func(t *testing.T) {
		_, err := env.svc.Auth().LoginWithFace(ctx, auth.FaceLoginRequest{
			FaceDescriptor: descriptor.Vector{0, 1, 0},
		}, "127.0.0.1", "go-test")
		assert.ErrorIs(t, err, auth.ErrFaceNotRecognized)
	})

	t.Run("invalid probe is rejected", func(t *testing.T) {
		_, err := env.svc.Auth().LoginWithFace(ctx, auth.FaceLoginRequest{
			FaceDescriptor: descriptor.Vector{},
		}, "127.0.0.1", "go-test")
		assert.ErrorIs(t, err, auth.ErrInvalidDescriptor)
	})
}
