package authService

import (
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"
	"VisageAuth/pkg/descriptor"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *faceDomainImpl) Enroll(ctx context.Context, accountID int64, req auth.EnrollFaceRequest, photoFile *multipart.FileHeader) (auth.EnrollmentResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !descriptor.Valid(req.FaceDescriptor) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"account_id": accountID,
		}).Warn("Rejected enrollment with invalid descriptor")
		return auth.EnrollmentResponse{}, auth.ErrInvalidDescriptor
	}

	encoded, err := descriptor.Encode(req.FaceDescriptor)
	if err != nil {
		return auth.EnrollmentResponse{}, err
	}

	var photoURL string
	if photoFile != nil {
		if err := s.utils.ValidateImageFile(photoFile); err != nil {
			return auth.EnrollmentResponse{}, auth.ErrInvalidFileType
		}

		key, err := s.utils.UniqueObjectName("faces", photoFile.Filename)
		if err != nil {
			return auth.EnrollmentResponse{}, err
		}

		photoURL, err = s.s3Client.UploadFile(photoFile, key)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to upload face photo")
			return auth.EnrollmentResponse{}, auth.ErrFailedToUploadFile
		}
	}

	// Primary handling runs in one transaction so at most one enrollment per
	// account ever carries the flag.
	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.EnrollmentResponse{}, err
	}

	if _, err := repo.Accounts.GetByID(ctx, accountID); err != nil {
		_ = repo.Rollback()
		return auth.EnrollmentResponse{}, err
	}

	existing, err := repo.Faces.ListByAccount(ctx, accountID)
	if err != nil {
		_ = repo.Rollback()
		return auth.EnrollmentResponse{}, err
	}

	// The first enrollment of an account is always primary.
	isPrimary := req.IsPrimary || len(existing) == 0

	if isPrimary {
		if err := repo.Faces.ClearPrimary(ctx, accountID); err != nil {
			_ = repo.Rollback()
			return auth.EnrollmentResponse{}, err
		}
	}

	enrollment := entity.FaceEnrollment{
		AccountID:  accountID,
		Descriptor: encoded,
		PhotoPath:  photoURL,
		IsPrimary:  isPrimary,
	}

	id, err := repo.Faces.CreateEnrollment(ctx, enrollment)
	if err != nil {
		_ = repo.Rollback()
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create enrollment")
		return auth.EnrollmentResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		return auth.EnrollmentResponse{}, err
	}

	created, err := s.getEnrollment(ctx, id)
	if err != nil {
		return auth.EnrollmentResponse{}, err
	}

	return makeEnrollmentResponse(created), nil
}

// EnrollBatch stores several descriptors in one transaction. Invalid entries
// are skipped rather than failing the batch; the whole request errors only when
// nothing in it was usable.
func (s *faceDomainImpl) EnrollBatch(ctx context.Context, accountID int64, req auth.EnrollFaceBatchRequest) ([]auth.EnrollmentResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	var valid []descriptor.Vector
	for i, vec := range req.FaceDescriptors {
		if !descriptor.Valid(vec) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"account_id": accountID,
				"index":      i,
			}).Warn("Skipping invalid descriptor in batch enrollment")
			continue
		}
		valid = append(valid, vec)
	}

	if len(valid) == 0 {
		return nil, auth.ErrInvalidDescriptor
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	if _, err := repo.Accounts.GetByID(ctx, accountID); err != nil {
		_ = repo.Rollback()
		return nil, err
	}

	existing, err := repo.Faces.ListByAccount(ctx, accountID)
	if err != nil {
		_ = repo.Rollback()
		return nil, err
	}

	var res []auth.EnrollmentResponse
	for i, vec := range valid {
		encoded, err := descriptor.Encode(vec)
		if err != nil {
			_ = repo.Rollback()
			return nil, err
		}

		enrollment := entity.FaceEnrollment{
			AccountID:  accountID,
			Descriptor: encoded,
			IsPrimary:  i == 0 && len(existing) == 0,
		}

		id, err := repo.Faces.CreateEnrollment(ctx, enrollment)
		if err != nil {
			_ = repo.Rollback()
			return nil, err
		}

		enrollment.ID = id
		res = append(res, makeEnrollmentResponse(enrollment))
	}

	if err := repo.Commit(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"account_id": accountID,
		"count":      len(res),
	}).Info("Batch enrollment completed")

	return res, nil
}

func (s *faceDomainImpl) ListByAccount(ctx context.Context, accountID int64) ([]auth.EnrollmentResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	enrollments, err := repo.Faces.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	res := make([]auth.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		res = append(res, makeEnrollmentResponse(enrollment))
	}

	return res, nil
}

// SetPrimary clears the account's primary flags and marks the named
// enrollment in one transaction. An enrollment that does not exist or belongs
// to someone else reports false without error.
func (s *faceDomainImpl) SetPrimary(ctx context.Context, accountID int64, enrollmentID int64) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return false, err
	}

	if err := repo.Faces.ClearPrimary(ctx, accountID); err != nil {
		_ = repo.Rollback()
		return false, err
	}

	marked, err := repo.Faces.MarkPrimary(ctx, enrollmentID, accountID)
	if err != nil {
		_ = repo.Rollback()
		return false, err
	}

	if !marked {
		// Nothing to promote, leave the previous flags untouched.
		_ = repo.Rollback()
		return false, nil
	}

	if err := repo.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (s *faceDomainImpl) Delete(ctx context.Context, accountID int64, enrollmentID int64) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return false, err
	}

	enrollment, err := repo.Faces.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if enrollment.AccountID != accountID {
		s.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"account_id":    accountID,
			"enrollment_id": enrollmentID,
		}).Warn("Delete refused, enrollment belongs to another account")
		return false, nil
	}

	deleted, err := repo.Faces.Delete(ctx, enrollmentID)
	if err != nil {
		return false, err
	}

	if deleted && enrollment.PhotoPath != "" {
		if err := s.s3Client.DeleteFile(enrollment.PhotoPath); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to delete enrollment photo")
		}
	}

	return deleted, nil
}

func (s *faceDomainImpl) DeleteAllForAccount(ctx context.Context, accountID int64) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return false, err
	}

	enrollments, err := repo.Faces.ListByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}

	deleted, err := repo.Faces.DeleteByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}

	if deleted {
		for _, enrollment := range enrollments {
			if enrollment.PhotoPath == "" {
				continue
			}
			if err := s.s3Client.DeleteFile(enrollment.PhotoPath); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Failed to delete enrollment photo")
			}
		}
	}

	return deleted, nil
}

// Match runs the identification scan: every enrollment of every active
// account is scored against the probe and the single best candidate above the
// threshold wins. Only a strictly greater score displaces the current best, so
// ties go to the earliest row in store order.
func (s *faceDomainImpl) Match(ctx context.Context, probe descriptor.Vector) (auth.RecognitionResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !descriptor.Valid(probe) {
		return auth.RecognitionResult{}, auth.ErrInvalidDescriptor
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.RecognitionResult{}, err
	}

	enrollments, err := repo.Faces.ListAllActive(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to list enrollments for matching")
		return auth.RecognitionResult{}, err
	}

	var bestScore float64
	var bestAccount int64

	for _, enrollment := range enrollments {
		stored, err := descriptor.Decode(enrollment.Descriptor)
		if err != nil {
			// A row that no longer parses must not sink the whole scan.
			s.log.WithFields(logrus.Fields{
				"request_id":    requestID,
				"enrollment_id": enrollment.ID,
			}).Warn("Skipping malformed stored descriptor")
			continue
		}

		if score := descriptor.Similarity(probe, stored); score > bestScore {
			bestScore = score
			bestAccount = enrollment.AccountID
		}
	}

	if bestScore <= s.threshold {
		return auth.RecognitionResult{
			Recognized: false,
			Message:    "no matching face found",
		}, nil
	}

	return auth.RecognitionResult{
		Recognized: true,
		AccountID:  bestAccount,
		Confidence: bestScore,
		Message:    fmt.Sprintf("face recognized with %.2f%% confidence", bestScore*100),
	}, nil
}

func (s *faceDomainImpl) Stats(ctx context.Context) (auth.EnrollmentStats, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.EnrollmentStats{}, err
	}

	total, activeAccounts, enrolledAccounts, err := repo.Faces.Stats(ctx)
	if err != nil {
		return auth.EnrollmentStats{}, err
	}

	return auth.EnrollmentStats{
		TotalEnrollments:        total,
		ActiveAccounts:          activeAccounts,
		AccountsWithEnrollments: enrolledAccounts,
	}, nil
}

func (s *faceDomainImpl) getEnrollment(ctx context.Context, id int64) (entity.FaceEnrollment, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.FaceEnrollment{}, err
	}

	enrollment, err := repo.Faces.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.FaceEnrollment{}, auth.ErrEnrollmentNotFound
		}
		return entity.FaceEnrollment{}, err
	}

	return enrollment, nil
}
