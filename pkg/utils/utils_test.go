package utils

import (
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()

	id, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	assert.Len(t, id, 26)
}

func TestValidateImageFile(t *testing.T) {
	u := New().(*utils)

	header := func(contentType string, size int64) *multipart.FileHeader {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", contentType)
		return &multipart.FileHeader{
			Filename: "photo.jpg",
			Header:   h,
			Size:     size,
		}
	}

	assert.NoError(t, u.ValidateImageFile(header("image/jpeg", 1024)))
	assert.Error(t, u.ValidateImageFile(header("text/plain", 1024)))
	assert.Error(t, u.ValidateImageFile(header("image/jpeg", u.maxFileSize+1)))
	assert.Error(t, u.ValidateImageFile(nil))
}

func TestUniqueObjectName(t *testing.T) {
	u := New()

	name, err := u.UniqueObjectName("faces", "capture.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "faces/"))
	assert.True(t, strings.HasSuffix(name, "-capture.jpg"))

	other, err := u.UniqueObjectName("faces", "capture.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}
