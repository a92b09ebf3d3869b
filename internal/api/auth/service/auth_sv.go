package authService

import (
	"errors"
	"time"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	maxFailedAttempts   = 5
	failedAttemptWindow = 15 * time.Minute
)

// LoginWithPassword resolves the account by email or username, checks the
// password, and issues a session token. Every failure collapses into the same
// error so callers cannot probe which half of the credential was wrong.
func (s *authDomainImpl) LoginWithPassword(ctx context.Context, req auth.LoginRequest, ip, userAgent string) (auth.AuthResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		return auth.AuthResult{}, auth.ErrInvalidCredentials
	}

	attempts, err := s.redisServer.FailedAttempts(ctx, identifier)
	if err != nil {
		// The throttle is protection, not a dependency. When redis is down
		// logins still work.
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to read login attempt counter")
	} else if attempts >= maxFailedAttempts {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"identifier": identifier,
		}).Warn("Login throttled after repeated failures")
		return auth.AuthResult{}, auth.ErrTooManyAttempts
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.AuthResult{}, err
	}

	var account entity.Account
	if req.Email != "" {
		account, err = repo.Accounts.GetByEmail(ctx, req.Email)
	} else {
		account, err = repo.Accounts.GetByUsername(ctx, req.Username)
	}
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			s.registerFailure(ctx, identifier)
			return auth.AuthResult{}, auth.ErrInvalidCredentials
		}
		return auth.AuthResult{}, err
	}

	if err := s.accountDomain.VerifyPassword(ctx, account, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"account_id": account.ID,
		}).Warn("Password mismatch")
		s.registerFailure(ctx, identifier)
		return auth.AuthResult{}, auth.ErrInvalidCredentials
	}

	if err := s.redisServer.ResetFailedAttempts(ctx, identifier); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to reset login attempt counter")
	}

	token, _, err := s.sessionDomain.Issue(ctx, account.ID)
	if err != nil {
		return auth.AuthResult{}, err
	}

	s.sessionDomain.RecordLogin(ctx, account.ID, entity.LoginMethodPassword, ip, userAgent)

	res := makeAccountResponse(account)

	return auth.AuthResult{
		Success: true,
		Token:   token,
		Account: &res,
		Message: "login successful",
	}, nil
}

// LoginWithFace runs the identification scan and, on a match, issues a token
// for the matched account.
func (s *authDomainImpl) LoginWithFace(ctx context.Context, req auth.FaceLoginRequest, ip, userAgent string) (auth.AuthResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	match, err := s.faceDomain.Match(ctx, req.FaceDescriptor)
	if err != nil {
		return auth.AuthResult{}, err
	}

	if !match.Recognized {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Face login failed, no match")
		return auth.AuthResult{}, auth.ErrFaceNotRecognized
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.AuthResult{}, err
	}

	account, err := repo.Accounts.GetByID(ctx, match.AccountID)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			return auth.AuthResult{}, auth.ErrFaceNotRecognized
		}
		return auth.AuthResult{}, err
	}

	token, _, err := s.sessionDomain.Issue(ctx, account.ID)
	if err != nil {
		return auth.AuthResult{}, err
	}

	s.sessionDomain.RecordLogin(ctx, account.ID, entity.LoginMethodFace, ip, userAgent)

	res := makeAccountResponse(account)

	return auth.AuthResult{
		Success: true,
		Token:   token,
		Account: &res,
		Message: match.Message,
	}, nil
}

func (s *authDomainImpl) registerFailure(ctx context.Context, identifier string) {
	requestID := contextPkg.GetRequestID(ctx)

	if _, err := s.redisServer.IncrFailedAttempts(ctx, identifier, failedAttemptWindow); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to increment login attempt counter")
	}
}
