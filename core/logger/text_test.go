package logger

import (
	"errors"
	"log/slog"
	"testing"
)

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"35:36:1":        "z.10.1",
		" 123:456:789 ":  "3f.co.lx",
		"1:2":            "1:2",
		"a:b:c":          "a:b:c",
		"10:-100:100000": "a.-2s.255s",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Fatalf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := Sanitize("a\x00b\u200bc\td\ne\x7f"); got != "abc\td\ne" {
		t.Fatalf("Sanitize = %q", got)
	}
	if got := SanitizeLimit("отзыв", 3); got != "отз" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("SanitizeLimit with zero limit = %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(2, 5)
	var passed []bool
	for i := 0; i < 10; i++ {
		passed = append(passed, s.Allow())
	}
	want := []bool{true, true, false, false, false, true, true, false, false, false}
	for i := range want {
		if passed[i] != want[i] {
			t.Fatalf("event %d: got %v, want %v", i, passed[i], want[i])
		}
	}

	s.Set(0, 0)
	for i := 0; i < 3; i++ {
		if !s.Allow() {
			t.Fatal("disabled sampler must let everything through")
		}
	}
}

func TestParseDebugSample(t *testing.T) {
	cases := []struct {
		in          string
		keep, every int
	}{
		{"", 1, 50},
		{"off", 0, 0},
		{"0", 0, 0},
		{"10", 1, 10},
		{"3/4", 3, 4},
		{" 1 / 2 ", 1, 2},
		{"x/4", 1, 50},
		{"-1", 1, 50},
	}
	for _, tc := range cases {
		keep, every := parseDebugSample(tc.in)
		if keep != tc.keep || every != tc.every {
			t.Fatalf("parseDebugSample(%q) = %d/%d, want %d/%d", tc.in, keep, every, tc.keep, tc.every)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPreview(t *testing.T) {
	files := []string{"1_a.up.sql", "2_b.up.sql", "3_c.up.sql"}
	cases := []struct {
		limit int
		want  string
		rest  int
	}{
		{0, "", 3},
		{-1, "", 3},
		{2, "1_a.up.sql, 2_b.up.sql", 1},
		{5, "1_a.up.sql, 2_b.up.sql, 3_c.up.sql", 0},
	}
	for _, tc := range cases {
		got, rest := Preview(files, tc.limit)
		if got != tc.want || rest != tc.rest {
			t.Fatalf("Preview(limit=%d) = %q, %d; want %q, %d", tc.limit, got, rest, tc.want, tc.rest)
		}
	}
	if got, rest := Preview(nil, 3); got != "" || rest != 0 {
		t.Fatalf("Preview(nil) = %q, %d", got, rest)
	}
}

func TestStatus(t *testing.T) {
	if Status(nil) != "ok" || Status(errors.New("x")) != "fail" {
		t.Fatal("unexpected status mapping")
	}
}
