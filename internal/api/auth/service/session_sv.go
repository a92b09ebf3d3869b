package authService

import (
	"errors"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"
	jwtPkg "VisageAuth/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const defaultHistoryLimit = 10

func (s *sessionDomainImpl) Issue(ctx context.Context, accountID int64) (string, int64, error) {
	requestID := contextPkg.GetRequestID(ctx)

	token, expiredAt, err := jwtPkg.Sign(accountID, jwtPkg.SessionTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign session token")
		return "", 0, err
	}

	return token, expiredAt, nil
}

// Verify checks signature and expiry, then re-resolves the account. A token
// for an account deactivated after issue is invalid even though the signature
// still checks out.
func (s *sessionDomainImpl) Verify(ctx context.Context, token string) (auth.VerifyTokenResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	accountID, err := jwtPkg.ParseAccountID(token)
	if err != nil {
		return auth.VerifyTokenResult{Valid: false}, nil
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.VerifyTokenResult{}, err
	}

	account, err := repo.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"account_id": accountID,
			}).Warn("Token subject no longer active")
			return auth.VerifyTokenResult{Valid: false}, nil
		}
		return auth.VerifyTokenResult{}, err
	}

	res := makeAccountResponse(account)

	return auth.VerifyTokenResult{
		Valid:     true,
		AccountID: accountID,
		Account:   &res,
	}, nil
}

// Refresh exchanges a still-valid token for a fresh one with a full TTL.
func (s *sessionDomainImpl) Refresh(ctx context.Context, token string) (auth.AuthResult, error) {
	verified, err := s.Verify(ctx, token)
	if err != nil {
		return auth.AuthResult{}, err
	}

	if !verified.Valid {
		return auth.AuthResult{
			Success: false,
			Message: "invalid or expired token",
		}, auth.ErrTokenInvalid
	}

	newToken, _, err := s.Issue(ctx, verified.AccountID)
	if err != nil {
		return auth.AuthResult{}, err
	}

	return auth.AuthResult{
		Success: true,
		Token:   newToken,
		Account: verified.Account,
		Message: "token refreshed",
	}, nil
}

// RecordLogin appends to the audit trail. A failed write is logged and
// swallowed, the login itself already succeeded.
func (s *sessionDomainImpl) RecordLogin(ctx context.Context, accountID int64, method entity.LoginMethod, ip, userAgent string) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return
	}

	session := entity.LoginSession{
		AccountID: accountID,
		Method:    string(method),
		IPAddress: ip,
		UserAgent: userAgent,
	}

	if err := repo.Sessions.RecordLogin(ctx, session); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"account_id": accountID,
			"error":      err.Error(),
		}).Warn("Failed to record login session")
	}
}

func (s *sessionDomainImpl) History(ctx context.Context, accountID int64, limit int) ([]auth.LoginHistoryEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if limit < 1 || limit > 100 {
		limit = defaultHistoryLimit
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	sessions, err := repo.Sessions.History(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}

	res := make([]auth.LoginHistoryEntry, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, auth.LoginHistoryEntry{
			Method:    session.Method,
			IPAddress: session.IPAddress,
			UserAgent: session.UserAgent,
			LoginTime: session.LoginTime,
		})
	}

	return res, nil
}

// Logout is advisory: tokens are stateless and stay valid until expiry, the
// endpoint only acknowledges a well-formed token so clients can drop it.
func (s *sessionDomainImpl) Logout(ctx context.Context, token string) error {
	requestID := contextPkg.GetRequestID(ctx)

	if !jwtPkg.WellFormed(token) {
		return auth.ErrTokenInvalid
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
	}).Info("Logout acknowledged")

	return nil
}
