package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "missing")))
	assert.Equal(t, AlreadyExists, KindOf(fmt.Errorf("outer: %w", New(AlreadyExists, "dup"))))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "dup", MessageOf(New(AlreadyExists, "dup")))
	assert.Equal(t, "cause hidden", MessageOf(Wrap(Internal, "cause hidden", errors.New("sensitive detail"))))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("io failure")
	err := Wrap(Internal, "write failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "io failure")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthenticated))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument))
	assert.Equal(t, http.StatusConflict, HTTPStatus(AlreadyExists))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Unavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Internal))
}
