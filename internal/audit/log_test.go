package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"orderdesk.dev/internal/auth"
	"orderdesk.dev/internal/authz"
	"orderdesk.dev/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	logger.SetFlags(0)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = auth.ContextWithSubject(ctx, authz.Subject{ID: "AcmeSales1", Org: "Acme", Role: authz.RoleSales})

	if err := LogEvent(ctx, "order.create", map[string]any{"order_id": "1"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "order.create" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["user_id"] != "AcmeSales1" || entry["org"] != "Acme" {
		t.Fatalf("subject not recorded: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["order_id"] != "1" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}
