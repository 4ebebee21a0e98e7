package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/graphcal/internal/logging"
)

// Mutation captures a single create, update or delete against a user's calendar
// for audit logging.
//
// # Privacy Considerations
//
// UserID is usually a user principal name (an email address) and therefore PII.
// LogAttrs only emits an anonymized hash and the domain; LogAuditAttrs emits the
// full id and is reserved for audit streams with access controls.
type Mutation struct {
	Operation string
	UserID    string
	EventID   string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewMutation creates a new Mutation with timing started.
// Call Complete() when the operation finishes.
func NewMutation(operation, userID string) *Mutation {
	return &Mutation{
		Operation: operation,
		UserID:    userID,
		StartTime: time.Now(),
	}
}

// WithEventID sets the affected event id.
func (m *Mutation) WithEventID(eventID string) *Mutation {
	m.EventID = eventID
	return m
}

// WithSpanContext extracts trace context from the current span.
func (m *Mutation) WithSpanContext(ctx context.Context) *Mutation {
	m.TraceID = GetTraceID(ctx)
	m.SpanID = GetSpanID(ctx)
	return m
}

// Complete marks the mutation as completed and calculates duration.
func (m *Mutation) Complete(success bool, err error) *Mutation {
	m.Duration = time.Since(m.StartTime)
	m.Success = success
	if err != nil {
		m.Error = err.Error()
	}
	return m
}

// CompleteWithError marks the mutation as failed with the given error.
func (m *Mutation) CompleteWithError(err error) *Mutation {
	return m.Complete(false, err)
}

// CompleteSuccess marks the mutation as successful.
func (m *Mutation) CompleteSuccess() *Mutation {
	return m.Complete(true, nil)
}

// Status returns StatusSuccess or StatusError.
func (m *Mutation) Status() string {
	if m.Success {
		return StatusSuccess
	}
	return StatusError
}

// UserDomain returns the domain portion of the user id.
func (m *Mutation) UserDomain() string {
	return ExtractUserDomain(m.UserID)
}

// LogAttrs returns slog attributes with the user anonymized.
func (m *Mutation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", m.Operation),
		logging.UserHash(m.UserID),
		slog.String("user_domain", m.UserDomain()),
		slog.Duration("duration", m.Duration),
		slog.Bool("success", m.Success),
	}
	return m.appendOptional(attrs)
}

// LogAuditAttrs returns slog attributes including the full user id.
func (m *Mutation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", m.Operation),
		slog.String("user", m.UserID),
		slog.Duration("duration", m.Duration),
		slog.Bool("success", m.Success),
	}
	if m.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", m.SpanID))
	}
	return m.appendOptional(attrs)
}

func (m *Mutation) appendOptional(attrs []slog.Attr) []slog.Attr {
	if m.EventID != "" {
		attrs = append(attrs, slog.String("event_id", m.EventID))
	}
	if m.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", m.TraceID))
	}
	if m.Error != "" {
		attrs = append(attrs, slog.String("error", m.Error))
	}
	return attrs
}

// AuditLogger writes one structured record per calendar mutation.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogMutation logs a completed mutation. A nil AuditLogger logs nothing.
func (al *AuditLogger) LogMutation(m *Mutation) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = m.LogAuditAttrs()
	} else {
		attrs = m.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if m.Success {
		al.logger.Info("calendar_mutation", args...)
	} else {
		al.logger.Warn("calendar_mutation_failed", args...)
	}
}
