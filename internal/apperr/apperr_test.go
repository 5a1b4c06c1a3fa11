package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("full"), http.StatusConflict},
		{Unavailable("down"), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestWrappedSentinelKeepsIdentity(t *testing.T) {
	sentinel := Conflict("No available slots")
	wrapped := fmt.Errorf("book schedule 3: %w", sentinel)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, http.StatusConflict, StatusCode(wrapped))

	e, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "No available slots", e.Message)
}
