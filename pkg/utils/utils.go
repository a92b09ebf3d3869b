package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	UniqueObjectName(prefix string, originalName string) (string, error)
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 5 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxFileSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

// UniqueObjectName builds a collision-free storage key like
// "faces/01J8.../capture.jpg".
func (u *utils) UniqueObjectName(prefix string, originalName string) (string, error) {
	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return "", err
	}

	base := filepath.Base(originalName)
	if base == "." || base == "/" || base == "" {
		base = "photo"
	}

	return fmt.Sprintf("%s/%s-%s", strings.Trim(prefix, "/"), id, base), nil
}
