package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"arclight-hq/meridian/pkg/policy"
	"arclight-hq/meridian/pkg/providers"
)

func TestParsePartitionDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "valid date",
			value: "2026-08-25",
			want:  time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "wrong format",
			value:   "25-08-2026",
			wantErr: true,
		},
		{
			name:    "not a date",
			value:   "yesterday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePartitionDate(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePartitionDate(%q): %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parsePartitionDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParsePartitionDate_EmptyDefaultsToToday(t *testing.T) {
	got, err := parsePartitionDate("")
	if err != nil {
		t.Fatalf("parsePartitionDate(\"\"): %v", err)
	}
	if got.UTC().Format("2006-01-02") != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("empty date = %v, want today UTC", got)
	}
}

func TestLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.json")
	content := `[
		{"output": "Consult your physician.", "context": {"industry": "healthcare"}},
		{"output": "Studies show that results vary."}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write samples: %v", err)
	}

	samples, err := loadSamples(path)
	if err != nil {
		t.Fatalf("loadSamples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Context.Industry != policy.IndustryHealthcare {
		t.Errorf("sample context industry = %q", samples[0].Context.Industry)
	}
	if samples[1].Output == "" {
		t.Error("second sample output lost")
	}
}

func TestLoadSamples_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	malformed := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(malformed, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{empty, malformed, filepath.Join(dir, "absent.json")} {
		if _, err := loadSamples(path); err == nil {
			t.Errorf("loadSamples(%q) should fail", path)
		}
	}
}

func TestSummarizeActions(t *testing.T) {
	tests := []struct {
		name    string
		actions policy.Actions
		want    string
	}{
		{
			name:    "empty",
			actions: policy.Actions{},
			want:    "-",
		},
		{
			name: "forbid and review",
			actions: policy.Actions{
				ForbiddenProviders:  []providers.ID{providers.OpenAI},
				RequiresHumanReview: true,
			},
			want: "forbid=[openai] review",
		},
		{
			name: "allow with models",
			actions: policy.Actions{
				AllowedProviders: []providers.ID{providers.Anthropic},
				AllowedModels:    []string{"a", "b"},
			},
			want: "allow=[anthropic] models=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarizeActions(tt.actions); got != tt.want {
				t.Errorf("summarizeActions() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, use := range []string{"run", "verify", "rules", "benchmark", "report", "version"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Use == use {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered", use)
		}
	}
}
