package graph

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// maxErrorBodySize bounds how much of an error response is read.
const maxErrorBodySize = 64 << 10

// APIError is a non-2xx response from Graph.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// ReasonPhrase is the reason phrase of the status line (e.g. "Not Found")
	ReasonPhrase string

	// Code and Message come from the OData error envelope, when present
	Code    string
	Message string

	// RequestID is the client-request-id sent with the failed request
	RequestID string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("graph: %d %s: %s: %s", e.StatusCode, e.ReasonPhrase, e.Code, e.Message)
	}
	return fmt.Sprintf("graph: %d %s", e.StatusCode, e.ReasonPhrase)
}

type odataErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newAPIError builds an APIError from a failed response. The body is consumed.
func newAPIError(resp *http.Response, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode:   resp.StatusCode,
		ReasonPhrase: reasonPhrase(resp),
		RequestID:    requestID,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var envelope odataErrorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// reasonPhrase extracts the reason phrase from the status line, falling back to
// the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}
