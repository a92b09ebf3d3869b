package auth

import (
	"time"

	"VisageAuth/pkg/descriptor"
)

type RegisterAccountRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	FirstName   string `json:"first_name" validate:"required,max=255"`
	LastName    string `json:"last_name" validate:"required,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Address     string `json:"address" validate:"omitempty,max=512"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateAccountRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	Username    string `json:"username" validate:"omitempty,min=3,max=64"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// AccountResponse is the public view of an account. It never carries the
// password hash.
type AccountResponse struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	DateOfBirth  string    `json:"date_of_birth,omitempty"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AccountListResponse struct {
	Accounts   []AccountResponse `json:"accounts"`
	Pagination Pagination        `json:"pagination"`
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
}

// LoginRequest needs a password plus either email or username.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,min=3,max=64"`
	Password string `json:"password" validate:"required"`
}

type FaceLoginRequest struct {
	FaceDescriptor descriptor.Vector `json:"face_descriptor" validate:"required"`
}

// AuthResult is the uniform outcome shape of both login flows and the token
// operations. Failures carry only a message; they never say whether the
// identifier or the password was the wrong half.
type AuthResult struct {
	Success bool             `json:"success"`
	Token   string           `json:"token,omitempty"`
	Account *AccountResponse `json:"account,omitempty"`
	Message string           `json:"message"`
}

type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyTokenResult struct {
	Valid     bool             `json:"valid"`
	AccountID int64            `json:"account_id,omitempty"`
	Account   *AccountResponse `json:"account,omitempty"`
}

type EnrollFaceRequest struct {
	FaceDescriptor descriptor.Vector `json:"face_descriptor" validate:"required"`
	IsPrimary      bool              `json:"is_primary"`
}

type EnrollFaceBatchRequest struct {
	FaceDescriptors []descriptor.Vector `json:"face_descriptors" validate:"required,min=1"`
}

type EnrollmentResponse struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

type RecognitionResult struct {
	Recognized bool    `json:"recognized"`
	AccountID  int64   `json:"account_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Message    string  `json:"message"`
}

type EnrollmentStats struct {
	TotalEnrollments        int64 `json:"total_enrollments"`
	ActiveAccounts          int64 `json:"active_accounts"`
	AccountsWithEnrollments int64 `json:"accounts_with_enrollments"`
}

type LoginHistoryEntry struct {
	Method    string    `json:"login_method"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	LoginTime time.Time `json:"login_time"`
}

type ProfilePhotoResponse struct {
	ID           int64  `json:"id"`
	ProfilePhoto string `json:"profile_photo"`
}
