package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithUserHash("user:0123456789abcdef").
		WithResource("event", "AAMkAD123").
		WithAllDay(true).
		Build()

	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrUserHash] != "user:0123456789abcdef" {
		t.Errorf("unexpected user hash %v", attrMap[SpanAttrUserHash])
	}
	if attrMap[SpanAttrResourceType] != "event" {
		t.Errorf("expected resource type 'event', got %v", attrMap[SpanAttrResourceType])
	}
	if attrMap[SpanAttrResourceID] != "AAMkAD123" {
		t.Errorf("expected resource id 'AAMkAD123', got %v", attrMap[SpanAttrResourceID])
	}
	if attrMap[SpanAttrAllDay] != true {
		t.Errorf("expected all_day true, got %v", attrMap[SpanAttrAllDay])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithUserHash("").
		WithResource("", "").
		Build()

	if len(attrs) != 0 {
		t.Errorf("expected no attributes for empty values, got %d", len(attrs))
	}
}

func TestStartGraphSpan(t *testing.T) {
	ctx, span := StartGraphSpan(context.Background(), OperationCreate)
	defer span.End()

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	// Must not panic on either outcome.
	SetSpanError(span, errors.New("boom"))
	SetSpanError(span, nil)
	SetSpanSuccess(span)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span id, got %q", id)
	}
}
