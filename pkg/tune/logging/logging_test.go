package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Fatalf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGet_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "warn", Output: &buf}); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	logger := Get("pipeline")
	logger.Info("should be filtered")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Errorf("info line leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn line missing from output: %q", out)
	}
}

func TestGet_ComponentOverride(t *testing.T) {
	var buf bytes.Buffer
	err := Init(Config{
		Level:      "error",
		Components: map[string]string{"calc": "debug"},
		Output:     &buf,
	})
	if err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	Get("calc").Debug("calc detail")
	Get("writer").Info("writer chatter")

	out := buf.String()
	if !strings.Contains(out, "calc detail") {
		t.Errorf("component override did not lower calc level: %q", out)
	}
	if strings.Contains(out, "writer chatter") {
		t.Errorf("default level did not filter writer info: %q", out)
	}
}

func TestGet_SameLoggerReturned(t *testing.T) {
	if err := Init(Config{Level: "info"}); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	if Get("calc") != Get("calc") {
		t.Error("Get returned different loggers for the same component")
	}
}

func TestInit_InvalidLevels(t *testing.T) {
	if err := Init(Config{Level: "bogus"}); err == nil {
		t.Error("Init accepted an invalid default level")
	}
	if err := Init(Config{Level: "info", Components: map[string]string{"calc": "bogus"}}); err == nil {
		t.Error("Init accepted an invalid component level")
	}
}
