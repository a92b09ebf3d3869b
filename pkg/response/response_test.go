package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	err := NewError(http.StatusConflict, "already exists")
	assert.Equal(t, http.StatusConflict, StatusOf(err))

	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestErrorIs(t *testing.T) {
	a := NewError(http.StatusNotFound, "missing")
	b := NewError(http.StatusNotFound, "missing")
	c := NewError(http.StatusNotFound, "other")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}
