package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct{ status int }

func (c codedErr) Error() string { return "coded" }

func (c codedErr) AppError() *Error {
	return New("CODED", c.status, "coded failure")
}

func TestFromErrorPrefersTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrValidation, "bad input"))
	got := FromError(wrapped)
	assert.Equal(t, ErrValidation.Code, got.Code)
	assert.Equal(t, "bad input", got.Message)
}

func TestFromErrorUsesAppErrorMapper(t *testing.T) {
	got := FromError(fmt.Errorf("call: %w", codedErr{status: http.StatusTeapot}))
	assert.Equal(t, "CODED", got.Code)
	assert.Equal(t, http.StatusTeapot, got.Status)
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	got := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestIsComparesCodes(t *testing.T) {
	assert.True(t, Is(Clone(ErrInvalidStage, "nope"), ErrInvalidStage))
	assert.False(t, Is(ErrNotFound, ErrInvalidStage))
	assert.False(t, Is(nil, ErrNotFound))
}
