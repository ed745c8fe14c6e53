package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrappedStillMatches(t *testing.T) {
	base := NewNotFound("invoice", "42")
	wrapped := fmt.Errorf("finalize: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "invoice", appErr.Details["entity"])
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewPersistenceConflict("quote", "1")))
	assert.False(t, IsRetryable(NewIllegalTransition("invoice", "DRAFT", "VALIDATED")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIllegalTransition_Details(t *testing.T) {
	err := NewIllegalTransition("invoice", "DRAFT", "VALIDATED")

	assert.Equal(t, CodeIllegalTransition, err.Code)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Equal(t, "DRAFT", err.Details["from"])
	assert.Equal(t, "VALIDATED", err.Details["to"])
}

func TestWithCause_Unwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(nil).WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("x")))
}
