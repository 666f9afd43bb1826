package utils

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerBasicFunctions(t *testing.T) {
	User("test user message")
	Info("test info message")
	Warn("test warn message")
	Error("test error message")
	Debug("test debug message")

	if err := Errorf("test error with format: %s", "formatted"); err == nil {
		t.Error("Errorf should return an error value")
	}
}

func TestLoggerModes(t *testing.T) {
	mode := getMode()
	if mode == "" {
		t.Error("Expected non-empty mode")
	}
}

func TestLoggerOutputs(t *testing.T) {
	var userBuf bytes.Buffer
	SetUserOutput(&userBuf)
	defer SetUserOutput(nil)
	User("test user output")
	if !strings.Contains(userBuf.String(), "test user output") {
		t.Error("User output not captured correctly")
	}

	var internalBuf bytes.Buffer
	SetInternalOutput(&internalBuf)
	defer SetInternalOutput(nil)
	Info("captured info line")
	if !strings.Contains(internalBuf.String(), "captured info line") {
		t.Error("Internal output not captured correctly")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Error("expected no request ID on fresh context")
	}

	ctx = WithRequestID(ctx, "req-123")
	id, ok := RequestIDFromContext(ctx)
	if !ok || id != "req-123" {
		t.Errorf("expected req-123, got %q (ok=%v)", id, ok)
	}

	var buf bytes.Buffer
	SetInternalOutput(&buf)
	defer SetInternalOutput(nil)
	InfoCtx(ctx, "with request id")
	if !strings.Contains(buf.String(), "req-123") {
		t.Error("request_id field missing from context log line")
	}
}

func TestErrorWrapper(t *testing.T) {
	w := NewErrorWrapper("storage")

	if w.Wrapf(nil, "ignored") != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("boom")
	err := w.Wrapf(base, "saving record %s", "r1")
	if err == nil || !errors.Is(err, base) {
		t.Errorf("wrapped error should unwrap to base, got %v", err)
	}
	if !strings.Contains(err.Error(), "storage") {
		t.Errorf("wrapped error missing context: %v", err)
	}

	if err := w.Failf("bad driver %q", "bolt"); err == nil {
		t.Error("Failf should return an error")
	}
}

func TestMarshalJSONHelpers(t *testing.T) {
	res := MarshalJSON(map[string]string{"a": "b"})
	if res.Err != nil {
		t.Fatalf("MarshalJSON failed: %v", res.Err)
	}
	if string(res.Data) != `{"a":"b"}` {
		t.Errorf("unexpected JSON: %s", res.Data)
	}

	res = MarshalJSONIndent([]int{1, 2}, "")
	if res.Err != nil || !strings.Contains(string(res.Data), "\n") {
		t.Errorf("expected indented JSON, got %s (err=%v)", res.Data, res.Err)
	}

	res = MarshalJSON(make(chan int))
	if res.Err == nil {
		t.Error("expected error marshaling a channel")
	}

	if string(MustMarshalJSON([]string{"x"})) != `["x"]` {
		t.Error("MustMarshalJSON returned unexpected JSON")
	}
}

func TestWriteHTTPJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteHTTPJSON(rec, map[string]bool{"ok": true}); err != nil {
		t.Fatalf("WriteHTTPJSON failed: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestValidateRequired(t *testing.T) {
	if err := ValidateRequired("text", ""); err == nil {
		t.Error("empty string should fail")
	}
	if err := ValidateRequired("text", nil); err == nil {
		t.Error("nil should fail")
	}
	if err := ValidateRequired("text", "ok"); err != nil {
		t.Errorf("non-empty string should pass: %v", err)
	}
	if err := ValidateRequired("tags", []any{}); err == nil {
		t.Error("empty slice should fail")
	}
}

func TestSafeAsserts(t *testing.T) {
	if s, ok := SafeStringAssert("x"); !ok || s != "x" {
		t.Error("SafeStringAssert failed for string")
	}
	if _, ok := SafeStringAssert(1); ok {
		t.Error("SafeStringAssert should fail for int")
	}
	if m, ok := SafeMapAssert(map[string]any{"k": 1}); !ok || m["k"] != 1 {
		t.Error("SafeMapAssert failed")
	}
	if s, ok := SafeSliceAssert([]any{"a"}); !ok || len(s) != 1 {
		t.Error("SafeSliceAssert failed")
	}
}

func TestLoggerWriter(t *testing.T) {
	var lines []string
	w := &LoggerWriter{Fn: func(format string, v ...any) {
		lines = append(lines, strings.TrimSpace(strings.ReplaceAll(format, "%s", "")+join(v)))
	}, Prefix: "pg: "}

	n, err := w.Write([]byte("line one\nline two\n\n"))
	if err != nil || n == 0 {
		t.Fatalf("Write failed: n=%d err=%v", n, err)
	}
	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(lines))
	}
}

func join(v []any) string {
	var b strings.Builder
	for _, x := range v {
		if s, ok := x.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}
