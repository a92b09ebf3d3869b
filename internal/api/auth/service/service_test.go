package authService

import (
	"context"
	"io"
	"testing"

	"VisageAuth/internal/api/auth"
	"VisageAuth/pkg/bcrypt"
	jwtPkg "VisageAuth/pkg/jwt"
	"VisageAuth/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc   AuthService
	repo  *fakeRepository
	redis *fakeRedis
	s3    *fakeS3
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(jwtPkg.SecretEnvKey, "test-secret")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeRepository()
	redisServer := newFakeRedis()
	s3Client := newFakeS3()

	svc := New(logger, repo, redisServer, s3Client, bcrypt.NewWithCost(4), utils.New())

	return &testEnv{
		svc:   svc,
		repo:  repo,
		redis: redisServer,
		s3:    s3Client,
	}
}

func registerAccount(t *testing.T, env *testEnv, email, username, password string) auth.AccountResponse {
	t.Helper()

	res, err := env.svc.Account().Register(context.Background(), auth.RegisterAccountRequest{
		Email:     email,
		Username:  username,
		Password:  password,
		FirstName: "Test",
		LastName:  "Account",
	})
	require.NoError(t, err)
	require.NotZero(t, res.ID)

	return res
}
