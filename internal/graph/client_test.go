package graph

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method    string
	Path      string
	RequestID string
	Body      map[string]interface{}
}

// fakeGraph records every request and replies with the configured handler.
type fakeGraph struct {
	mu       sync.Mutex
	requests []recordedRequest
	reply    func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method:    r.Method,
		Path:      r.URL.EscapedPath(),
		RequestID: r.Header.Get("client-request-id"),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	f.reply(w, r)
}

func newTestGateway(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*HTTPGateway, *fakeGraph) {
	t.Helper()

	fake := &fakeGraph{reply: reply}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	return NewHTTPGateway(server.Client(), WithBaseURL(server.URL+"/v1.0/")), fake
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPGateway_CreateEvent(t *testing.T) {
	gw, fake := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":            "AAMkADnew",
			"webLink":       "https://outlook.office365.com/owa/?itemid=AAMkADnew",
			"onlineMeeting": map[string]string{"joinUrl": "https://teams.microsoft.com/l/meetup-join/1"},
		})
	})

	created, err := gw.CreateEvent(context.Background(), "jane@example.com", &Event{
		Subject:   "Planning",
		Start:     &DateTimeTimeZone{DateTime: "2024-06-01T09:00", TimeZone: "Europe/Berlin"},
		End:       &DateTimeTimeZone{DateTime: "2024-06-01T10:00", TimeZone: "Europe/Berlin"},
		Attendees: []Attendee{},
	})
	require.NoError(t, err)

	assert.Equal(t, "AAMkADnew", created.ID)
	assert.Equal(t, "https://outlook.office365.com/owa/?itemid=AAMkADnew", created.WebLink)
	require.NotNil(t, created.OnlineMeeting)
	assert.Equal(t, "https://teams.microsoft.com/l/meetup-join/1", created.OnlineMeeting.JoinURL)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1.0/users/jane@example.com/calendar/events", req.Path)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, "Planning", req.Body["subject"])
	assert.NotEmpty(t, req.Body["transactionId"], "create must carry a transaction id")
	assert.Equal(t, false, req.Body["isAllDay"])
}

func TestHTTPGateway_CreateEvent_KeepsTransactionID(t *testing.T) {
	gw, fake := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{"id": "x"})
	})

	event := &Event{Subject: "Retry", TransactionID: "fixed-txn"}
	_, err := gw.CreateEvent(context.Background(), "jane@example.com", event)
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "fixed-txn", fake.requests[0].Body["transactionId"])
}

func TestHTTPGateway_CreateEvent_DoesNotMutateInput(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{"id": "x"})
	})

	event := &Event{Subject: "Planning"}
	_, err := gw.CreateEvent(context.Background(), "jane@example.com", event)
	require.NoError(t, err)
	assert.Empty(t, event.TransactionID)
}

func TestHTTPGateway_UpdateEvent(t *testing.T) {
	gw, fake := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": "AAMk/AD=="})
	})

	updated, err := gw.UpdateEvent(context.Background(), "jane@example.com", "AAMk/AD==", &Event{Subject: "Moved"})
	require.NoError(t, err)
	assert.Equal(t, "AAMk/AD==", updated.ID)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/v1.0/users/jane@example.com/calendar/events/AAMk%2FAD==", req.Path)
	assert.NotContains(t, req.Body, "transactionId")
}

func TestHTTPGateway_DeleteEvent(t *testing.T) {
	gw, fake := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	err := gw.DeleteEvent(context.Background(), "jane@example.com", "AAMkADold")
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/v1.0/users/jane@example.com/calendar/events/AAMkADold", fake.requests[0].Path)
	assert.Nil(t, fake.requests[0].Body)
}

func TestHTTPGateway_APIError(t *testing.T) {
	tests := []struct {
		name        string
		reply       func(w http.ResponseWriter, r *http.Request)
		wantStatus  int
		wantReason  string
		wantCode    string
		wantMessage string
	}{
		{
			name: "odata envelope",
			reply: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]interface{}{
					"error": map[string]string{
						"code":    "ErrorItemNotFound",
						"message": "The specified object was not found in the store.",
					},
				})
			},
			wantStatus:  http.StatusNotFound,
			wantReason:  "Not Found",
			wantCode:    "ErrorItemNotFound",
			wantMessage: "The specified object was not found in the store.",
		},
		{
			name: "plain text body",
			reply: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, "nope")
			},
			wantStatus: http.StatusForbidden,
			wantReason: "Forbidden",
		},
		{
			name: "empty body",
			reply: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, fake := newTestGateway(t, tt.reply)

			err := gw.DeleteEvent(context.Background(), "jane@example.com", "AAMkADold")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "expected *APIError, got %T", err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantReason, apiErr.ReasonPhrase)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, fake.requests[0].RequestID, apiErr.RequestID)
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	withCode := &APIError{StatusCode: 404, ReasonPhrase: "Not Found", Code: "ErrorItemNotFound", Message: "gone"}
	assert.Equal(t, "graph: 404 Not Found: ErrorItemNotFound: gone", withCode.Error())

	bare := &APIError{StatusCode: 502, ReasonPhrase: "Bad Gateway"}
	assert.Equal(t, "graph: 502 Bad Gateway", bare.Error())
}

func TestHTTPGateway_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	gw := NewHTTPGateway(http.DefaultClient, WithBaseURL(baseURL))
	_, err := gw.CreateEvent(context.Background(), "jane@example.com", &Event{Subject: "x"})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}

func TestHTTPGateway_EmptySuccessBody(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	updated, err := gw.UpdateEvent(context.Background(), "jane@example.com", "AAMkAD", &Event{})
	require.NoError(t, err)
	assert.Empty(t, updated.ID)
}
