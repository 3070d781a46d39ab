package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"":        Info,
		"WARNING": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLogger_WritesFieldsAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "pet-adoption", Out: &buf})

	l.Debug("hidden", nil)
	l.With(map[string]any{"request_id": "r-1"}).Info("hello", map[string]any{
		"pet_id": "p-1",
		"err":    errors.New("boom"),
		"":       "ignored",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["message"] != "hello" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["app"] != "pet-adoption" || entry["request_id"] != "r-1" || entry["pet_id"] != "p-1" {
		t.Fatalf("missing fields: %v", entry)
	}
	if entry["err"] != "boom" {
		t.Fatalf("expected error as string, got %v", entry["err"])
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.With(map[string]any{"a": 1}).Error("x", map[string]any{"b": 2})
}
