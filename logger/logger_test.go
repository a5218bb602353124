package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newJSON(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("got service %q, want %q", l.service, "test-svc")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "loud")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "debug").WithComponent("xmlrpc.client")
	l.Debug("call sent", Fields(FieldMethod, "add", FieldStatus, 200))

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "xmlrpc.client" {
		t.Errorf("got component %v", m[FieldComponent])
	}
	if m[FieldMethod] != "add" {
		t.Errorf("got method %v", m[FieldMethod])
	}
	if m[FieldStatus] != float64(200) {
		t.Errorf("got status %v", m[FieldStatus])
	}
	if m[FieldService] != "test-svc" {
		t.Errorf("got service %v", m[FieldService])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSON(&buf, "info").WithError(errors.New("boom")).Error("failed")
	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("got error field %v", m["error"])
	}
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	newJSON(&buf, "info").WithContext(ctx).Info("handled")
	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("got request id %v", m[FieldRequestID])
	}
	if _, ok := m[FieldTraceID]; ok {
		t.Error("trace id should be absent without a span")
	}
}

func TestFieldsOddArgs(t *testing.T) {
	m := Fields("a", 1, "b")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("got %v", m)
	}
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "info")
	Register("custom", l)
	if Get("custom") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered") == nil {
		t.Error("expected fallback logger")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
}
