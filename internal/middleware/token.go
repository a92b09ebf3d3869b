package middleware

import (
	"time"

	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"
	jwtPkg "VisageAuth/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// NewTokenMiddleware guards protected routes. The token is verified through
// the session domain so a signature that still checks out is rejected once
// its account has been deactivated.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	requestID := m.GetRequestID(ctx)

	accessToken, err := jwtPkg.FromAuthHeader(ctx)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       ctx.Path(),
		}).Warn("Authorization header check failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	verified, err := m.authService.Session().Verify(c, accessToken)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Token verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	if !verified.Valid {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
		}).Warn("Rejected invalid or expired token")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	account := entity.AccountLoginData{
		ID: verified.AccountID,
	}
	if verified.Account != nil {
		account.Email = verified.Account.Email
		account.Username = verified.Account.Username
	}
	ctx.Locals("account", account)

	return ctx.Next()
}
