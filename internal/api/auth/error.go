package auth

import (
	"VisageAuth/pkg/response"
	"net/http"
)

var (
	ErrDuplicateIdentity  = response.NewError(http.StatusConflict, "email or username already in use")
	ErrAccountNotFound    = response.NewError(http.StatusNotFound, "account not found")
	ErrInvalidCredentials = response.NewError(http.StatusUnauthorized, "invalid email/username or password")
	ErrInvalidDescriptor  = response.NewError(http.StatusBadRequest, "invalid face descriptor")
	ErrFaceNotRecognized  = response.NewError(http.StatusUnauthorized, "face not recognized")
	ErrTokenInvalid       = response.NewError(http.StatusUnauthorized, "invalid token")
	ErrEnrollmentNotFound = response.NewError(http.StatusNotFound, "face enrollment not found")
	ErrNotOwner           = response.NewError(http.StatusForbidden, "resource does not belong to account")
	ErrTooManyAttempts    = response.NewError(http.StatusTooManyRequests, "too many failed login attempts")
	ErrInvalidFileType    = response.NewError(http.StatusBadRequest, "invalid file type")
	ErrFileTooLarge       = response.NewError(http.StatusBadRequest, "file too large")
	ErrFailedToUploadFile = response.NewError(http.StatusInternalServerError, "failed to upload file")
)
