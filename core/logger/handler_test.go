package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// emit writes one event through a fresh handler and returns the flushed line.
func emit(t *testing.T, format logFormat, ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	Log(ctx, slog.New(handler).With("component", component), level, event, attrs...)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := emit(t, formatKV, ctx, "app", slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	line := emit(t, formatJSON, ctx, "fanout", slog.LevelError, "fanout.send",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.Int64("admin_id", 5),
	)
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"fanout"`, `"event":"fanout.send"`, `"status":"fail"`, `"rid":"rid-json"`, `"admin_id":5`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)

	kv := emit(t, formatKV, ctx, "app", slog.LevelInfo, "rid.test", slog.String("status", "ok"))
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := emit(t, formatJSON, ctx, "app", slog.LevelInfo, "rid.test", slog.String("status", "ok"))
	if !strings.Contains(js, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", js)
	}
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", js)
	}
	if !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano to be present in JSON output, got %s", js)
	}
}

func TestStructuredHandlerMasksPhone(t *testing.T) {
	line := emit(t, formatKV, context.Background(), "review", slog.LevelInfo, "review.registered",
		slog.String("phone", "+7 (916) 123-45-67"),
	)
	if strings.Contains(line, "123-45") {
		t.Fatalf("phone leaked: %s", line)
	}
	if !strings.Contains(line, "phone=*******4567") {
		t.Fatalf("expected masked phone, got %s", line)
	}
}

func TestStructuredHandlerReviewIDFromContext(t *testing.T) {
	ctx := WithReviewID(context.Background(), "rev-1")
	line := emit(t, formatKV, ctx, "fanout", slog.LevelInfo, "fanout.send", slog.String("status", "ok"))
	if !strings.Contains(line, "review_id=rev-1") {
		t.Fatalf("expected review_id, got %s", line)
	}

	explicit := emit(t, formatKV, ctx, "fanout", slog.LevelInfo, "fanout.send", slog.String("review_id", "rev-2"))
	if !strings.Contains(explicit, "review_id=rev-2") || strings.Contains(explicit, "rev-1") {
		t.Fatalf("explicit review_id must win, got %s", explicit)
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"1234":         "****",
		"+79161234567": "*******4567",
		"89161234567":  "*******4567",
	}
	for in, want := range cases {
		if got := MaskPhone(in); got != want {
			t.Fatalf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
