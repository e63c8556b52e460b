package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_LevelsAndFormats(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"json debug", Config{Level: "debug", Format: "json"}, false},
		{"text warn", Config{Level: "warn", Format: "text"}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedaction_SensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: FormatJSON, RedactSensitive: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("generation request",
		"prompt", "patient presents with chest pain",
		"provider", "anthropic",
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line not JSON: %v", err)
	}
	if entry["prompt"] != redactedValue {
		t.Errorf("prompt = %v, want redacted", entry["prompt"])
	}
	if entry["provider"] != "anthropic" {
		t.Errorf("provider = %v, want untouched", entry["provider"])
	}
}

func TestRedaction_ValuePatterns(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: FormatJSON, RedactSensitive: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("upstream error",
		"detail", "request for user jane@example.com with ssn 123-45-6789 failed",
	)

	out := buf.String()
	if strings.Contains(out, "jane@example.com") {
		t.Error("email leaked into log output")
	}
	if strings.Contains(out, "123-45-6789") {
		t.Error("ssn leaked into log output")
	}
	if !strings.Contains(out, redactedValue) {
		t.Error("redaction marker missing from log output")
	}
}
