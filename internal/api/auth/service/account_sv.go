package authService

import (
	"errors"
	"math"
	"mime/multipart"
	"time"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *accountDomainImpl) Register(ctx context.Context, req auth.RegisterAccountRequest) (auth.AccountResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.AccountResponse{}, err
	}

	emailTaken, err := repo.Accounts.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return auth.AccountResponse{}, err
	}
	usernameTaken, err := repo.Accounts.UsernameTaken(ctx, req.Username, 0)
	if err != nil {
		return auth.AccountResponse{}, err
	}
	if emailTaken || usernameTaken {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      req.Email,
			"username":   req.Username,
		}).Warn("Registration rejected, identity already in use")
		return auth.AccountResponse{}, auth.ErrDuplicateIdentity
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.AccountResponse{}, err
	}

	account := entity.Account{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Address:      req.Address,
	}

	if req.DateOfBirth != "" {
		birthDate, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return auth.AccountResponse{}, err
		}
		account.DateOfBirth = birthDate
	}

	// A concurrent registration can still slip between the pre-check and the
	// insert; the unique constraint catches it and surfaces the same error.
	id, err := repo.Accounts.CreateAccount(ctx, account)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create account")
		return auth.AccountResponse{}, err
	}

	created, err := repo.Accounts.GetByID(ctx, id)
	if err != nil {
		return auth.AccountResponse{}, err
	}

	return makeAccountResponse(created), nil
}

func (s *accountDomainImpl) GetByID(ctx context.Context, id int64) (auth.AccountResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.AccountResponse{}, err
	}

	account, err := repo.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"account_id": id,
			}).Warn("Account not found")
			return auth.AccountResponse{}, auth.ErrAccountNotFound
		}
		return auth.AccountResponse{}, err
	}

	return makeAccountResponse(account), nil
}

func (s *accountDomainImpl) List(ctx context.Context, page, limit int) (auth.AccountListResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.AccountListResponse{}, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	accounts, err := repo.Accounts.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to list accounts")
		return auth.AccountListResponse{}, err
	}

	total, err := repo.Accounts.CountActive(ctx)
	if err != nil {
		return auth.AccountListResponse{}, err
	}

	res := auth.AccountListResponse{
		Accounts: make([]auth.AccountResponse, 0, len(accounts)),
		Pagination: auth.Pagination{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			Total:       total,
			Limit:       limit,
		},
	}

	for _, account := range accounts {
		res.Accounts = append(res.Accounts, makeAccountResponse(account))
	}

	return res, nil
}

func (s *accountDomainImpl) Update(ctx context.Context, id int64, req auth.UpdateAccountRequest) (auth.AccountResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.AccountResponse{}, err
	}

	dbAccount, err := repo.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"account_id": id,
			}).Warn("Account not found")
			return auth.AccountResponse{}, auth.ErrAccountNotFound
		}
		return auth.AccountResponse{}, err
	}

	if req.Email != "" && req.Email != dbAccount.Email {
		taken, err := repo.Accounts.EmailTaken(ctx, req.Email, id)
		if err != nil {
			return auth.AccountResponse{}, err
		}
		if taken {
			return auth.AccountResponse{}, auth.ErrDuplicateIdentity
		}
	}

	if req.Username != "" && req.Username != dbAccount.Username {
		taken, err := repo.Accounts.UsernameTaken(ctx, req.Username, id)
		if err != nil {
			return auth.AccountResponse{}, err
		}
		if taken {
			return auth.AccountResponse{}, auth.ErrDuplicateIdentity
		}
	}

	merged, err := GetAccountDifferenceData(dbAccount, req)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid account update payload")
		return auth.AccountResponse{}, err
	}

	if err := repo.Accounts.UpdateAccount(ctx, merged); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to update account")
		return auth.AccountResponse{}, err
	}

	updated, err := repo.Accounts.GetByID(ctx, id)
	if err != nil {
		return auth.AccountResponse{}, err
	}

	return makeAccountResponse(updated), nil
}

// Deactivate soft-deletes the account. Enrollments stay in place but stop
// participating in identification scans because those join on is_active.
func (s *accountDomainImpl) Deactivate(ctx context.Context, id int64) error {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	if err := repo.Accounts.Deactivate(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to deactivate account")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"account_id": id,
	}).Info("Account deactivated")

	return nil
}

func (s *accountDomainImpl) UpdateProfilePhoto(ctx context.Context, accountID int64, photoFile *multipart.FileHeader) (*auth.ProfilePhotoResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	if err := s.utils.ValidateImageFile(photoFile); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected profile photo upload")
		return nil, auth.ErrInvalidFileType
	}

	account, err := repo.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	key, err := s.utils.UniqueObjectName("profiles", photoFile.Filename)
	if err != nil {
		return nil, err
	}

	photoURL, err := s.s3Client.UploadFile(photoFile, key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to upload profile photo")
		return nil, auth.ErrFailedToUploadFile
	}

	if err := repo.Accounts.UpdateProfilePhoto(ctx, accountID, photoURL); err != nil {
		return nil, err
	}

	// Old photo is best-effort cleanup; the new record already points away.
	if account.ProfilePhoto != "" {
		if err := s.s3Client.DeleteFile(account.ProfilePhoto); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to delete previous profile photo")
		}
	}

	return &auth.ProfilePhotoResponse{
		ID:           accountID,
		ProfilePhoto: photoURL,
	}, nil
}

func (s *accountDomainImpl) VerifyPassword(ctx context.Context, account entity.Account, password string) error {
	if err := s.bcryptUtils.ComparePassword(account.PasswordHash, password); err != nil {
		return auth.ErrInvalidCredentials
	}
	return nil
}
