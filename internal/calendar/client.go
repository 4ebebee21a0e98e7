package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/graphcal/internal/graph"
	"github.com/teemow/graphcal/internal/instrumentation"
	"github.com/teemow/graphcal/internal/logging"
)

// GatewayFactory constructs the gateway on first use.
type GatewayFactory func(ctx context.Context) (graph.Gateway, error)

// Client creates, updates and deletes events in a user's calendar.
// It is safe for concurrent use.
type Client struct {
	creds      graph.Credentials
	baseURL    string
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger
	newGateway GatewayFactory

	mu      sync.Mutex
	gateway graph.Gateway
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records Graph calls, token fetches and validation failures.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithAuditLogger logs every mutation to the audit logger.
func WithAuditLogger(audit *instrumentation.AuditLogger) Option {
	return func(c *Client) {
		c.audit = audit
	}
}

// WithGraphBaseURL overrides the Graph service root.
func WithGraphBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTokenURL overrides the token endpoint derived from the tenant id.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		c.creds.TokenURL = tokenURL
	}
}

// WithGatewayFactory replaces the default client-credentials gateway.
func WithGatewayFactory(factory GatewayFactory) Option {
	return func(c *Client) {
		if factory != nil {
			c.newGateway = factory
		}
	}
}

// WithGateway uses gateway as is.
func WithGateway(gateway graph.Gateway) Option {
	return WithGatewayFactory(func(context.Context) (graph.Gateway, error) {
		return gateway, nil
	})
}

// NewClient returns a client for the given Azure AD application. Nothing is
// contacted until the first call.
func NewClient(tenantID, clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		creds: graph.Credentials{
			TenantID:     tenantID,
			ClientID:     clientID,
			ClientSecret: clientSecret,
		},
		logger: slog.Default(),
	}
	c.newGateway = c.defaultGateway
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) defaultGateway(ctx context.Context) (graph.Gateway, error) {
	httpClient, err := graph.NewClientCredentialsHTTPClient(ctx, c.creds, c.metrics)
	if err != nil {
		return nil, err
	}
	return graph.NewHTTPGateway(httpClient,
		graph.WithBaseURL(c.baseURL),
		graph.WithLogger(logging.WithService(c.logger, "graph")),
		graph.WithMetrics(c.metrics),
	), nil
}

// gatewayFor returns the gateway, constructing it on first use. A failed
// construction is retried on the next call.
func (c *Client) gatewayFor(ctx context.Context) (graph.Gateway, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gateway != nil {
		return c.gateway, nil
	}

	gw, err := c.newGateway(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize graph gateway: %w", err)
	}
	c.gateway = gw
	return gw, nil
}

// CreateOrUpdateEvent updates the event named by req.EventID, or creates a new
// event when it is nil.
func (c *Client) CreateOrUpdateEvent(ctx context.Context, userID string, req EventRequest) (result *EventResult, err error) {
	operation := instrumentation.OperationCreate
	eventID := ""
	if req.EventID != nil {
		operation = instrumentation.OperationUpdate
		eventID = *req.EventID
	}

	mutation := instrumentation.NewMutation(operation, userID).WithEventID(eventID)
	defer func() {
		if result != nil {
			mutation.WithEventID(result.ID)
		}
		c.finish(ctx, mutation, err)
	}()

	if err := c.checkTarget(ctx, userID, eventID, req.EventID != nil); err != nil {
		return nil, err
	}

	event, err := BuildEvent(req)
	if err != nil {
		c.recordValidationFailure(ctx, err)
		return nil, err
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithUserHash(logging.AnonymizeEmail(userID)).
		WithResource("event", eventID).
		WithAllDay(req.AllDay).
		Build()
	ctx, span := instrumentation.StartSpan(ctx, "calendar."+operation, attrs...)
	defer span.End()
	mutation.WithSpanContext(ctx)

	gw, err := c.gatewayFor(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	var resp *graph.Event
	if req.EventID != nil {
		resp, err = gw.UpdateEvent(ctx, userID, eventID, event)
	} else {
		resp, err = gw.CreateEvent(ctx, userID, event)
	}
	if err != nil {
		err = TranslateError(err)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	if resp == nil || resp.ID == "" {
		err = &InvalidStateError{Message: "event id is empty"}
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)

	result = &EventResult{ID: resp.ID, WebLink: resp.WebLink}
	if resp.OnlineMeeting != nil {
		result.JoinURL = resp.OnlineMeeting.JoinURL
	}
	return result, nil
}

// DeleteEvent deletes an event. A missing user or event yields *NotFoundError.
func (c *Client) DeleteEvent(ctx context.Context, userID, eventID string) (err error) {
	mutation := instrumentation.NewMutation(instrumentation.OperationDelete, userID).WithEventID(eventID)
	defer func() { c.finish(ctx, mutation, err) }()

	if err := c.checkTarget(ctx, userID, eventID, true); err != nil {
		return err
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithUserHash(logging.AnonymizeEmail(userID)).
		WithResource("event", eventID).
		Build()
	ctx, span := instrumentation.StartSpan(ctx, "calendar."+instrumentation.OperationDelete, attrs...)
	defer span.End()
	mutation.WithSpanContext(ctx)

	gw, err := c.gatewayFor(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return err
	}

	if err = TranslateError(gw.DeleteEvent(ctx, userID, eventID)); err != nil {
		instrumentation.SetSpanError(span, err)
		return err
	}
	instrumentation.SetSpanSuccess(span)
	return nil
}

// checkTarget rejects requests that cannot name a calendar or event.
func (c *Client) checkTarget(ctx context.Context, userID, eventID string, needEvent bool) error {
	var err error
	switch {
	case userID == "":
		err = &InputError{Reason: ReasonMissingUser, Detail: "user id is empty"}
	case needEvent && eventID == "":
		err = &InputError{Reason: ReasonMissingEvent, Detail: "event id is empty"}
	}
	if err != nil {
		c.recordValidationFailure(ctx, err)
	}
	return err
}

func (c *Client) recordValidationFailure(ctx context.Context, err error) {
	reason := "unknown"
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		reason = inputErr.Reason
	}
	c.metrics.RecordValidationFailure(ctx, reason)
}

// finish logs the outcome of a mutation and hands it to the audit logger.
func (c *Client) finish(ctx context.Context, m *instrumentation.Mutation, err error) {
	if err != nil {
		m.CompleteWithError(err)
	} else {
		m.CompleteSuccess()
	}

	logger := logging.WithOperation(c.logger, "calendar."+m.Operation)
	attrs := []any{logging.UserHash(m.UserID), logging.Duration(m.Duration)}
	if logging.ExtractDomain(m.UserID) != "" {
		attrs = append(attrs, logging.Domain(m.UserID))
	}
	if m.EventID != "" {
		attrs = append(attrs, logging.EventID(m.EventID))
	}
	if err != nil {
		logger.DebugContext(ctx, "calendar operation failed", append(attrs, logging.Err(err))...)
	} else {
		logger.InfoContext(ctx, "calendar operation completed", attrs...)
	}

	c.audit.LogMutation(m)
}
