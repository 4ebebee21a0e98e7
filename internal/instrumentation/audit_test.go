package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	testUser    = "jane@example.com"
	testEventID = "AAMkADevent"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestMutation_CompleteSuccess(t *testing.T) {
	m := NewMutation(OperationCreate, testUser).WithEventID(testEventID)

	if m.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	m.CompleteSuccess()

	if !m.Success {
		t.Error("Success should be true")
	}
	if m.Status() != StatusSuccess {
		t.Errorf("Status = %q, want %q", m.Status(), StatusSuccess)
	}
	if m.Duration < 0 {
		t.Error("Duration should not be negative")
	}
}

func TestMutation_CompleteWithError(t *testing.T) {
	m := NewMutation(OperationDelete, testUser).CompleteWithError(errors.New("not found"))

	if m.Success {
		t.Error("Success should be false")
	}
	if m.Error != "not found" {
		t.Errorf("Error = %q, want %q", m.Error, "not found")
	}
	if m.Status() != StatusError {
		t.Errorf("Status = %q, want %q", m.Status(), StatusError)
	}
}

func TestMutation_WithSpanContext_NoSpan(t *testing.T) {
	m := NewMutation(OperationUpdate, testUser).WithSpanContext(context.Background())
	if m.TraceID != "" || m.SpanID != "" {
		t.Errorf("expected empty trace context, got %q/%q", m.TraceID, m.SpanID)
	}
}

func TestMutation_WithSpanContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "calendar.create")
	defer span.End()

	m := NewMutation(OperationCreate, testUser).WithSpanContext(ctx)
	if m.TraceID != span.SpanContext().TraceID().String() {
		t.Errorf("TraceID = %q, want %q", m.TraceID, span.SpanContext().TraceID())
	}
	if m.SpanID != span.SpanContext().SpanID().String() {
		t.Errorf("SpanID = %q, want %q", m.SpanID, span.SpanContext().SpanID())
	}
}

func TestMutation_UserDomain(t *testing.T) {
	tests := []struct {
		userID string
		want   string
	}{
		{"jane@example.com", "example.com"},
		{"3f2504e0-4f89-11d3-9a0c-0305e82c3301", "unknown"},
		{"", "unknown"},
		{"user@", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			m := NewMutation(OperationCreate, tt.userID)
			if got := m.UserDomain(); got != tt.want {
				t.Errorf("UserDomain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuditLogger_AnonymizesByDefault(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})

	al.LogMutation(NewMutation(OperationCreate, testUser).WithEventID(testEventID).CompleteSuccess())

	out := buf.String()
	if strings.Contains(out, testUser) {
		t.Errorf("audit log leaked user id: %s", out)
	}
	if !strings.Contains(out, "calendar_mutation") {
		t.Errorf("expected calendar_mutation message, got %s", out)
	}
	if !strings.Contains(out, "user_domain=example.com") {
		t.Errorf("expected user_domain attribute, got %s", out)
	}
	if !strings.Contains(out, testEventID) {
		t.Errorf("expected event id, got %s", out)
	}
}

func TestAuditLogger_IncludePII(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludePII: true})

	al.LogMutation(NewMutation(OperationDelete, testUser).CompleteWithError(errors.New("gone")))

	out := buf.String()
	if !strings.Contains(out, testUser) {
		t.Errorf("expected full user id, got %s", out)
	}
	if !strings.Contains(out, "calendar_mutation_failed") {
		t.Errorf("expected failure message, got %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level for failures, got %s", out)
	}
}

func TestAuditLogger_DisabledAndNil(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})
	al.LogMutation(NewMutation(OperationCreate, testUser).CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %s", buf.String())
	}

	var nilLogger *AuditLogger
	nilLogger.LogMutation(NewMutation(OperationCreate, testUser).CompleteSuccess())
}
