package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"VisageAuth/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const SecretEnvKey = "JWT_ACCESS_TOKEN_SECRET"

// SessionTTL is the validity window of an issued session token.
const SessionTTL = 24 * time.Hour

var (
	ErrTokenInvalid = errors.New("token invalid or expired")
)

// Sign issues a session token for accountID: HS256 over {sub, iat, exp}.
func Sign(accountID int64, ttl time.Duration) (string, int64, error) {
	now := time.Now()
	expiredAt := now.Add(ttl).Unix()

	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		return "", 0, fmt.Errorf("%s not set", SecretEnvKey)
	}

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(accountID, 10),
		"iat": now.Unix(),
		"exp": expiredAt,
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// ParseAccountID validates signature and expiry and returns the subject
// account id. Any failure collapses into ErrTokenInvalid: verification fails
// closed and callers never learn which check broke.
func ParseAccountID(accessToken string) (int64, error) {
	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		return 0, fmt.Errorf("%s not set", SecretEnvKey)
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrTokenInvalid
	}

	accountID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}

	return accountID, nil
}

// WellFormed reports whether the token at least parses as a JWS, without
// checking the signature. Advisory logout accepts any well-formed token.
func WellFormed(accessToken string) bool {
	parts := strings.Split(accessToken, ".")
	return len(parts) == 3 && parts[0] != "" && parts[1] != ""
}

// FromAuthHeader extracts the bearer token from a fiber request.
func FromAuthHeader(c *fiber.Ctx) (string, error) {
	header := c.Get("Authorization")
	if header == "" {
		return "", errors.New("empty Authorization header")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("invalid Authorization format")
	}

	accessToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if accessToken == "" {
		return "", errors.New("empty token")
	}

	return accessToken, nil
}

func GetAccountLoginData(c *fiber.Ctx) (entity.AccountLoginData, error) {
	accountData := c.Locals("account")

	account, ok := accountData.(entity.AccountLoginData)
	if !ok {
		return entity.AccountLoginData{}, fiber.ErrUnauthorized
	}

	return account, nil
}
