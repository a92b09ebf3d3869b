package authService

import (
	"os"
	"strconv"
	"time"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
)

// defaultMatchThreshold is the acceptance floor for the identification scan.
// A candidate is only returned when its similarity strictly exceeds it.
const defaultMatchThreshold = 0.6

const dateLayout = "2006-01-02"

func matchThreshold() float64 {
	if v := os.Getenv("FACE_MATCH_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed < 1 {
			return parsed
		}
	}
	return defaultMatchThreshold
}

// GetAccountDifferenceData merges a partial update request over the stored
// account: only fields present in the request override the database copy.
func GetAccountDifferenceData(dbAccount entity.Account, req auth.UpdateAccountRequest) (entity.Account, error) {
	result := dbAccount

	if req.Email != "" && req.Email != dbAccount.Email {
		result.Email = req.Email
	}

	if req.Username != "" && req.Username != dbAccount.Username {
		result.Username = req.Username
	}

	if req.FirstName != "" && req.FirstName != dbAccount.FirstName {
		result.FirstName = req.FirstName
	}

	if req.LastName != "" && req.LastName != dbAccount.LastName {
		result.LastName = req.LastName
	}

	if req.Phone != "" && req.Phone != dbAccount.Phone {
		result.Phone = req.Phone
	}

	if req.Address != "" && req.Address != dbAccount.Address {
		result.Address = req.Address
	}

	if req.DateOfBirth != "" {
		birthDate, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return entity.Account{}, err
		}
		if birthDate != dbAccount.DateOfBirth {
			result.DateOfBirth = birthDate
		}
	}

	// Activation status is never writable through a profile update.
	result.IsActive = dbAccount.IsActive

	return result, nil
}

func MakeAccountData(account entity.Account) entity.AccountLoginData {
	return entity.AccountLoginData{
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
	}
}

func makeAccountResponse(account entity.Account) auth.AccountResponse {
	res := auth.AccountResponse{
		ID:           account.ID,
		Email:        account.Email,
		Username:     account.Username,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Phone:        account.Phone,
		Address:      account.Address,
		ProfilePhoto: account.ProfilePhoto,
		IsActive:     account.IsActive,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}

	if !account.DateOfBirth.IsZero() {
		res.DateOfBirth = account.DateOfBirth.Format(dateLayout)
	}

	return res
}

func makeEnrollmentResponse(enrollment entity.FaceEnrollment) auth.EnrollmentResponse {
	return auth.EnrollmentResponse{
		ID:        enrollment.ID,
		AccountID: enrollment.AccountID,
		PhotoURL:  enrollment.PhotoPath,
		IsPrimary: enrollment.IsPrimary,
		CreatedAt: enrollment.CreatedAt,
	}
}
