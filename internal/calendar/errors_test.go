package calendar

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/graphcal/internal/graph"
)

func TestTranslateError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, TranslateError(nil))
	})

	t.Run("404 becomes NotFoundError", func(t *testing.T) {
		apiErr := &graph.APIError{StatusCode: http.StatusNotFound, ReasonPhrase: "Not Found", Code: "ErrorItemNotFound"}

		err := TranslateError(apiErr)

		var notFound *NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "Not Found", notFound.Reason)
		assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
		assert.Equal(t, "not found: Not Found", err.Error())

		var unwrapped *graph.APIError
		assert.True(t, errors.As(err, &unwrapped), "underlying API error stays reachable")
	})

	t.Run("other status passes through", func(t *testing.T) {
		apiErr := &graph.APIError{StatusCode: http.StatusForbidden, ReasonPhrase: "Forbidden"}
		assert.Same(t, apiErr, TranslateError(apiErr))
	})

	t.Run("transport error passes through", func(t *testing.T) {
		transportErr := errors.New("dial tcp: connection refused")
		assert.Same(t, transportErr, TranslateError(transportErr))
	})
}

func TestInputError(t *testing.T) {
	err := &InputError{Reason: ReasonAttendeeEmail, Detail: `malformed email address "x"`}

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, `invalid input: malformed email address "x"`, err.Error())
}

func TestInvalidStateError(t *testing.T) {
	err := &InvalidStateError{Message: "event id is empty"}
	assert.Equal(t, "invalid state: event id is empty", err.Error())
}
