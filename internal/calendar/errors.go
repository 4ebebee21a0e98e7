package calendar

import (
	"errors"
	"net/http"

	"github.com/teemow/graphcal/internal/graph"
)

// ErrInvalidInput is matched by every error caused by a malformed request.
// Such requests never reach the network.
var ErrInvalidInput = errors.New("invalid input")

// Validation failure reasons, used as metric labels.
const (
	ReasonAttendeeEmail = "attendee_email"
	ReasonAttendeeRole  = "attendee_role"
	ReasonTimeRange     = "time_range"
	ReasonMissingUser   = "missing_user"
	ReasonMissingEvent  = "missing_event_id"
)

// InputError describes why a request was rejected. It matches ErrInvalidInput.
type InputError struct {
	Reason string
	Detail string
}

// Error implements the error interface
func (e *InputError) Error() string {
	return ErrInvalidInput.Error() + ": " + e.Detail
}

// Unwrap returns ErrInvalidInput
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError is returned when the target user or event does not exist.
type NotFoundError struct {
	// Reason is the reason phrase reported by the server
	Reason     string
	StatusCode int

	// Err is the underlying gateway error
	Err error
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return "not found: " + e.Reason
}

// Unwrap returns the underlying gateway error
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// InvalidStateError is returned when the server reports success but leaves
// out data it must return.
type InvalidStateError struct {
	Message string
}

// Error implements the error interface
func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Message
}

// TranslateError maps gateway failures to the calendar error taxonomy.
// A 404 becomes *NotFoundError; everything else is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *graph.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return &NotFoundError{
			Reason:     apiErr.ReasonPhrase,
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}
	return err
}
