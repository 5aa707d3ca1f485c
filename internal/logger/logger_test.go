package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// resetLogger resets the logger to default state for test isolation
func resetLogger() {
	Init(Options{})
}

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		logged  []string
		dropped []string
	}{
		{
			name:    "default is info",
			opts:    Options{},
			logged:  []string{"info msg", "warn msg", "error msg"},
			dropped: []string{"debug msg"},
		},
		{
			name:   "debug",
			opts:   Options{Debug: true},
			logged: []string{"debug msg", "info msg", "warn msg", "error msg"},
		},
		{
			name:    "quiet only shows errors",
			opts:    Options{Quiet: true},
			logged:  []string{"error msg"},
			dropped: []string{"debug msg", "info msg", "warn msg"},
		},
		{
			name:    "quiet overrides debug",
			opts:    Options{Debug: true, Quiet: true},
			logged:  []string{"error msg"},
			dropped: []string{"debug msg", "info msg"},
		},
		{
			name:    "named warn level",
			opts:    Options{Level: "WARN"},
			logged:  []string{"warn msg", "error msg"},
			dropped: []string{"debug msg", "info msg"},
		},
		{
			name:    "unknown level name falls back to info",
			opts:    Options{Level: "loud"},
			logged:  []string{"info msg"},
			dropped: []string{"debug msg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.opts.Output = buf
			Init(tt.opts)
			defer resetLogger()

			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			output := buf.String()
			for _, msg := range tt.logged {
				if !strings.Contains(output, msg) {
					t.Errorf("expected %q to be logged", msg)
				}
			}
			for _, msg := range tt.dropped {
				if strings.Contains(output, msg) {
					t.Errorf("expected %q to be dropped", msg)
				}
			}
		})
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Info("test message", "generator", "dify")

	output := buf.String()
	if !strings.HasPrefix(output, "{") {
		t.Errorf("expected JSON output, got %q", output)
	}
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Error("JSON output should contain the message")
	}
	if !strings.Contains(output, `"generator":"dify"`) {
		t.Error("JSON output should contain attributes")
	}
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Logger: slog.New(slog.NewTextHandler(buf, nil)), Quiet: true})
	defer resetLogger()

	Info("from custom logger")

	if !strings.Contains(buf.String(), "from custom logger") {
		t.Error("custom logger should override other options")
	}
}

func TestSetLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(slog.New(slog.NewTextHandler(buf, nil)))
	defer resetLogger()

	Warn("set logger")

	if !strings.Contains(buf.String(), "set logger") {
		t.Error("SetLogger should replace the default logger")
	}
}

func TestWith_ReturnsLoggerWithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("run_id", "abc").Info("test with attrs")

	output := buf.String()
	if !strings.Contains(output, "test with attrs") || !strings.Contains(output, "run_id=abc") {
		t.Errorf("expected message with attributes, got %q", output)
	}
}

func TestContextFunctions(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	ctx := context.Background()
	DebugContext(ctx, "debug with context")
	InfoContext(ctx, "info with context")
	WarnContext(ctx, "warn with context")
	ErrorContext(ctx, "error with context")

	for _, msg := range []string{"debug with context", "info with context", "warn with context", "error with context"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("expected %q to be logged", msg)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: " Info ", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "ERROR", want: slog.LevelError},
		{in: "trace", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSecret(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("config", "api_key", Secret("app-1234567890abcd"), "short", Secret("abc"), "empty", Secret(""))

	output := buf.String()
	if strings.Contains(output, "1234567890") {
		t.Errorf("secret leaked: %q", output)
	}
	if !strings.Contains(output, "api_key=****abcd") {
		t.Errorf("expected masked key, got %q", output)
	}
	if !strings.Contains(output, "short=****") {
		t.Errorf("expected short secret fully masked, got %q", output)
	}
}
