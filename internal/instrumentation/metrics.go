package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrOperation = "operation"
	attrStatus    = "status"
	attrResult    = "result"
	attrReason    = "reason"
)

// Metrics provides methods for recording observability metrics.
// A nil or zero Metrics is a valid no-op recorder.
type Metrics struct {
	graphOperationsTotal   metric.Int64Counter
	graphOperationDuration metric.Float64Histogram

	tokenRequestsTotal metric.Int64Counter

	validationFailuresTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.graphOperationsTotal, err = meter.Int64Counter(
		"graph_api_operations_total",
		metric.WithDescription("Total number of Microsoft Graph calendar operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_api_operations_total counter: %w", err)
	}

	m.graphOperationDuration, err = meter.Float64Histogram(
		"graph_api_operation_duration_seconds",
		metric.WithDescription("Microsoft Graph operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_api_operation_duration_seconds histogram: %w", err)
	}

	m.tokenRequestsTotal, err = meter.Int64Counter(
		"oauth_token_requests_total",
		metric.WithDescription("Total number of client-credentials token requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_requests_total counter: %w", err)
	}

	m.validationFailuresTotal, err = meter.Int64Counter(
		"event_validation_failures_total",
		metric.WithDescription("Total number of event requests rejected before reaching Graph"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event_validation_failures_total counter: %w", err)
	}

	return m, nil
}

// RecordGraphOperation records a Graph call.
//
// Parameters:
//   - operation: OperationCreate, OperationUpdate or OperationDelete
//   - status: StatusSuccess or StatusError
//   - duration: Time taken for the call
func (m *Metrics) RecordGraphOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.graphOperationsTotal == nil || m.graphOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)

	m.graphOperationsTotal.Add(ctx, 1, attrs)
	m.graphOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRequest records a request to the token endpoint.
// Result should be one of: TokenResultSuccess, TokenResultFailure
func (m *Metrics) RecordTokenRequest(ctx context.Context, result string) {
	if m == nil || m.tokenRequestsTotal == nil {
		return
	}

	m.tokenRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordValidationFailure records an event request rejected locally.
// reason should be a short, fixed string such as "attendee_email".
func (m *Metrics) RecordValidationFailure(ctx context.Context, reason string) {
	if m == nil || m.validationFailuresTotal == nil {
		return
	}

	m.validationFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}
