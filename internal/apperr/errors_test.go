package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", Invalid("qty must be positive"), http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"insufficient", fmt.Errorf("record: %w", ErrInsufficientStock), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"duplicate", Duplicate("code %q already exists", "A1"), http.StatusConflict, "DUPLICATE_KEY"},
		{"not found", NotFound("product"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := MapError(tt.err)
			assert.Equal(t, tt.status, he.StatusCode)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestMapErrorHidesInternals(t *testing.T) {
	he := MapError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", he.Message)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "invalid input: qty must be positive", Invalid("qty must be positive").Error())
	assert.Equal(t, "product not found", NotFound("product").Error())
	assert.Nil(t, MapError(nil))
}

func TestIsUserCorrectable(t *testing.T) {
	assert.True(t, IsUserCorrectable(Invalid("x")))
	assert.True(t, IsUserCorrectable(ErrInsufficientStock))
	assert.True(t, IsUserCorrectable(Duplicate("x")))
	assert.False(t, IsUserCorrectable(NotFound("product")))
	assert.False(t, IsUserCorrectable(errors.New("boom")))
}
