package logger_i

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromContext_AddsTraceId(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	NewLogger("test").FromContext(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "trace-123") {
		t.Errorf("expected trace id in log line, got %q", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected component in log line, got %q", out)
	}
}

func TestTraceID_Missing(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID = %q, want empty", got)
	}
	if got := TraceID(nil); got != "" { //nolint:staticcheck
		t.Errorf("TraceID(nil) = %q, want empty", got)
	}
}
