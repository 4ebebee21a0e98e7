package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/teemow/graphcal/internal/instrumentation"
	"github.com/teemow/graphcal/internal/logging"
)

// HTTPGateway talks to the Graph REST API.
type HTTPGateway struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	newID      func() string
}

// GatewayOption configures an HTTPGateway.
type GatewayOption func(*HTTPGateway)

// WithBaseURL points the gateway at a different service root.
func WithBaseURL(baseURL string) GatewayOption {
	return func(g *HTTPGateway) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *HTTPGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records every call in the given metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) GatewayOption {
	return func(g *HTTPGateway) {
		g.metrics = metrics
	}
}

// NewHTTPGateway creates a gateway using httpClient, which is expected to
// authenticate requests (see NewClientCredentialsHTTPClient).
func NewHTTPGateway(httpClient *http.Client, opts ...GatewayOption) *HTTPGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	g := &HTTPGateway{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		logger:     slog.Default(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateEvent creates an event in the user's default calendar.
func (g *HTTPGateway) CreateEvent(ctx context.Context, userID string, event *Event) (*Event, error) {
	body := *event
	if body.TransactionID == "" {
		body.TransactionID = g.newID()
	}

	var created Event
	if err := g.do(ctx, instrumentation.OperationCreate, http.MethodPost, g.eventsURL(userID), "", &body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvent patches an existing event.
func (g *HTTPGateway) UpdateEvent(ctx context.Context, userID, eventID string, event *Event) (*Event, error) {
	var updated Event
	if err := g.do(ctx, instrumentation.OperationUpdate, http.MethodPatch, g.eventURL(userID, eventID), eventID, event, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEvent deletes an event.
func (g *HTTPGateway) DeleteEvent(ctx context.Context, userID, eventID string) error {
	return g.do(ctx, instrumentation.OperationDelete, http.MethodDelete, g.eventURL(userID, eventID), eventID, nil, nil)
}

func (g *HTTPGateway) eventsURL(userID string) string {
	return g.baseURL + "/users/" + url.PathEscape(userID) + "/calendar/events"
}

func (g *HTTPGateway) eventURL(userID, eventID string) string {
	return g.eventsURL(userID) + "/" + url.PathEscape(eventID)
}

// do performs a single request. Non-2xx responses are returned as *APIError.
// out may be nil when no response body is expected.
func (g *HTTPGateway) do(ctx context.Context, operation, method, endpoint, eventID string, in, out interface{}) (err error) {
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithResource("event", eventID).
		Build()
	ctx, span := instrumentation.StartGraphSpan(ctx, operation, attrs...)
	defer span.End()

	requestID := g.newID()
	logger := logging.WithOperation(g.logger, "graph."+operation).With(slog.String("request_id", requestID))
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
			logger.Debug("graph request failed", logging.Duration(duration), logging.Err(err))
		} else {
			instrumentation.SetSpanSuccess(span)
			logger.Debug("graph request completed", logging.Duration(duration))
		}
		g.metrics.RecordGraphOperation(ctx, operation, status, duration)
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s event: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var _ Gateway = (*HTTPGateway)(nil)
