package authService

import (
	"context"
	"testing"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
	"VisageAuth/pkg/descriptor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enroll(t *testing.T, env *testEnv, accountID int64, vec descriptor.Vector, primary bool) auth.EnrollmentResponse {
	t.Helper()

	res, err := env.svc.Face().Enroll(context.Background(), accountID, auth.EnrollFaceRequest{
		FaceDescriptor: vec,
		IsPrimary:      primary,
	}, nil)
	require.NoError(t, err)

	return res
}

func TestEnroll_FirstIsPrimary(t *testing.T) {
	env := newTestEnv(t)

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")

	first := enroll(t, env, account.ID, descriptor.Vector{1, 0, 0}, false)
	assert.True(t, first.IsPrimary, "first enrollment becomes primary even when not requested")

	second := enroll(t, env, account.ID, descriptor.Vector{0.9, 0.1, 0}, false)
	assert.False(t, second.IsPrimary)
}

func TestEnroll_PrimaryIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")

	first := enroll(t, env, account.ID, descriptor.Vector{1, 0, 0}, false)
	second := enroll(t, env, account.ID, descriptor.Vector{0, 1, 0}, true)

	enrollments, err := env.svc.Face().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)

	var primaryCount int
	for _, e := range enrollments {
		if e.IsPrimary {
			primaryCount++
			assert.Equal(t, second.ID, e.ID)
		}
	}
	assert.Equal(t, 1, primaryCount, "at most one enrollment carries the primary flag")
	_ = first
}

func TestEnroll_InvalidDescriptorRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")

	_, err := env.svc.Face().Enroll(ctx, account.ID, auth.EnrollFaceRequest{
		FaceDescriptor: descriptor.Vector{},
	}, nil)
	assert.ErrorIs(t, err, auth.ErrInvalidDescriptor)
}

func TestEnroll_UnknownAccountRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Face().Enroll(context.Background(), 99, auth.EnrollFaceRequest{
		FaceDescriptor: descriptor.Vector{1, 0, 0},
	}, nil)
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestEnrollBatch_FirstPrimaryOnlyWhenNoneExisted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")

	res, err := env.svc.Face().EnrollBatch(ctx, account.ID, auth.EnrollFaceBatchRequest{
		FaceDescriptors: []descriptor.Vector{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	})
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.True(t, res[0].IsPrimary)
	assert.False(t, res[1].IsPrimary)
	assert.False(t, res[2].IsPrimary)

	more, err := env.svc.Face().EnrollBatch(ctx, account.ID, auth.EnrollFaceBatchRequest{
		FaceDescriptors: []descriptor.Vector{{0.5, 0.5, 0}},
	})
	require.NoError(t, err)
	assert.False(t, more[0].IsPrimary, "later batches never steal the primary flag")
}

func TestEnrollBatch_SkipsInvalidDescriptors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")

	res, err := env.svc.Face().EnrollBatch(ctx, account.ID, auth.EnrollFaceBatchRequest{
		FaceDescriptors: []descriptor.Vector{{}, {1, 0, 0}, nil, {0, 1, 0}},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.True(t, res[0].IsPrimary)

	_, err = env.svc.Face().EnrollBatch(ctx, account.ID, auth.EnrollFaceBatchRequest{
		FaceDescriptors: []descriptor.Vector{{}, nil},
	})
	assert.ErrorIs(t, err, auth.ErrInvalidDescriptor)
}

func TestSetPrimary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	bob := registerAccount(t, env, "bob@example.com", "bob", "secret1")

	first := enroll(t, env, alice.ID, descriptor.Vector{1, 0, 0}, false)
	second := enroll(t, env, alice.ID, descriptor.Vector{0, 1, 0}, false)

	t.Run("promotes owned enrollment", func(t *testing.T) {
		ok, err := env.svc.Face().SetPrimary(ctx, alice.ID, second.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		enrollments, err := env.svc.Face().ListByAccount(ctx, alice.ID)
		require.NoError(t, err)
		for _, e := range enrollments {
			assert.Equal(t, e.ID == second.ID, e.IsPrimary)
		}
	})

	t.Run("foreign enrollment reports false", func(t *testing.T) {
		ok, err := env.svc.Face().SetPrimary(ctx, bob.ID, first.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing enrollment reports false", func(t *testing.T) {
		ok, err := env.svc.Face().SetPrimary(ctx, alice.ID, 999)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	bob := registerAccount(t, env, "bob@example.com", "bob", "secret1")

	enrollment := enroll(t, env, alice.ID, descriptor.Vector{1, 0, 0}, false)

	t.Run("foreign enrollment reports false", func(t *testing.T) {
		deleted, err := env.svc.Face().Delete(ctx, bob.ID, enrollment.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("owned enrollment is removed", func(t *testing.T) {
		deleted, err := env.svc.Face().Delete(ctx, alice.ID, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("missing enrollment is a no-op", func(t *testing.T) {
		deleted, err := env.svc.Face().Delete(ctx, alice.ID, enrollment.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestDeleteAllForAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	enroll(t, env, alice.ID, descriptor.Vector{1, 0, 0}, false)
	enroll(t, env, alice.ID, descriptor.Vector{0, 1, 0}, false)

	deleted, err := env.svc.Face().DeleteAllForAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	enrollments, err := env.svc.Face().ListByAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	deleted, err = env.svc.Face().DeleteAllForAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	enroll(t, env, account.ID, descriptor.Vector{1, 0, 0}, true)

	t.Run("exact probe matches with full confidence", func(t *testing.T) {
		res, err := env.svc.Face().Match(ctx, descriptor.Vector{1, 0, 0})
		require.NoError(t, err)
		assert.True(t, res.Recognized)
		assert.Equal(t, account.ID, res.AccountID)
		assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	})

	t.Run("distant probe stays below threshold", func(t *testing.T) {
		// similarity = 1 - sqrt(2)/sqrt(3), roughly 0.1835
		res, err := env.svc.Face().Match(ctx, descriptor.Vector{0, 1, 0})
		require.NoError(t, err)
		assert.False(t, res.Recognized)
		assert.Zero(t, res.AccountID)
	})

	t.Run("mismatched dimensionality cannot win", func(t *testing.T) {
		res, err := env.svc.Face().Match(ctx, descriptor.Vector{1, 0, 0, 0})
		require.NoError(t, err)
		assert.False(t, res.Recognized)
	})

	t.Run("invalid probe rejected", func(t *testing.T) {
		_, err := env.svc.Face().Match(ctx, descriptor.Vector{})
		assert.ErrorIs(t, err, auth.ErrInvalidDescriptor)
	})
}

func TestMatch_BestOfSeveralWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	bob := registerAccount(t, env, "bob@example.com", "bob", "secret1")

	enroll(t, env, alice.ID, descriptor.Vector{1, 0, 0}, true)
	enroll(t, env, bob.ID, descriptor.Vector{0.9, 0.1, 0}, true)

	res, err := env.svc.Face().Match(ctx, descriptor.Vector{0.91, 0.09, 0})
	require.NoError(t, err)
	assert.True(t, res.Recognized)
	assert.Equal(t, bob.ID, res.AccountID)
}

func TestMatch_SkipsDeactivatedAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	enroll(t, env, account.ID, descriptor.Vector{1, 0, 0}, true)

	require.NoError(t, env.svc.Account().Deactivate(ctx, account.ID))

	res, err := env.svc.Face().Match(ctx, descriptor.Vector{1, 0, 0})
	require.NoError(t, err)
	assert.False(t, res.Recognized)
}

func TestMatch_SkipsMalformedStoredDescriptor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	enroll(t, env, account.ID, descriptor.Vector{1, 0, 0}, true)

	// Corrupt a second row directly in the store.
	env.repo.store.faces[99] = entity.FaceEnrollment{
		ID:         99,
		AccountID:  account.ID,
		Descriptor: "not-json",
	}

	res, err := env.svc.Face().Match(ctx, descriptor.Vector{1, 0, 0})
	require.NoError(t, err)
	assert.True(t, res.Recognized)
	assert.Equal(t, account.ID, res.AccountID)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerAccount(t, env, "alice@example.com", "alice", "secret1")
	registerAccount(t, env, "bob@example.com", "bob", "secret1")

	enroll(t, env, alice.ID, descriptor.Vector{1, 0, 0}, false)
	enroll(t, env, alice.ID, descriptor.Vector{0, 1, 0}, false)

	stats, err := env.svc.Face().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEnrollments)
	assert.Equal(t, int64(2), stats.ActiveAccounts)
	assert.Equal(t, int64(1), stats.AccountsWithEnrollments)
}
