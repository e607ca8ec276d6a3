package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"invalid", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for input %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("expected %v, got %v for input %q", tt.expected, got, tt.input)
			}
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below WARN should be dropped, got %q", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("WARN and ERROR should be written, got %q", output)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	child := l.Named("wizard").Named("save")
	child.Info("created %s", "hall-a")

	output := buf.String()
	if !strings.Contains(output, "[INFO] wizard.save: created hall-a") {
		t.Errorf("unexpected output %q", output)
	}

	// Level changes on the child apply to the parent too
	child.SetLevel(LevelError)
	buf.Reset()
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected parent to share level, got %q", buf.String())
	}
}

func TestLogger_Configure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wizard.log")

	l := New()
	defer l.Close()

	if err := l.Configure("debug", path); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	l.Debug("written to file")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "written to file") {
		t.Error("log file should contain the debug message")
	}

	if err := l.Configure("loud", ""); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestLogger_EnvVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv(envLevel, "debug")
	t.Setenv(envFile, path)

	l := New()
	if l.sink.level != LevelDebug {
		t.Errorf("expected debug level from env var, got %v", l.sink.level)
	}

	l.Debug("from env")
	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error closing logger: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "from env") {
		t.Error("log file should contain the message")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	defer Default.SetLevel(LevelInfo)

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	Named("cli").Info("named")

	output := buf.String()
	for _, want := range []string{"[DEBUG] d", "[INFO] i", "[WARN] w", "[ERROR] e", "[INFO] cli: named"} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in %q", want, output)
		}
	}
}
