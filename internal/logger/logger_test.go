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
		visible []string
		hidden  []string
	}{
		{
			name:    "default is info",
			visible: []string{"info msg", "warn msg", "error msg"},
			hidden:  []string{"debug msg"},
		},
		{
			name:    "debug",
			opts:    Options{Debug: true},
			visible: []string{"debug msg", "info msg"},
		},
		{
			name:    "quiet shows only errors",
			opts:    Options{Quiet: true},
			visible: []string{"error msg"},
			hidden:  []string{"info msg", "warn msg"},
		},
		{
			name:    "quiet overrides debug",
			opts:    Options{Debug: true, Quiet: true},
			visible: []string{"error msg"},
			hidden:  []string{"debug msg", "info msg"},
		},
		{
			name:    "named level",
			opts:    Options{Level: "warn"},
			visible: []string{"warn msg", "error msg"},
			hidden:  []string{"info msg", "debug msg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			opts := tt.opts
			opts.Output = buf
			Init(opts)
			defer resetLogger()

			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			out := buf.String()
			for _, v := range tt.visible {
				if !strings.Contains(out, v) {
					t.Errorf("expected %q in output:\n%s", v, out)
				}
			}
			for _, h := range tt.hidden {
				if strings.Contains(out, h) {
					t.Errorf("did not expect %q in output:\n%s", h, out)
				}
			}
		})
	}
}

func TestInit_InvalidLevelWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Level: "loud", Output: buf})
	defer resetLogger()

	if !strings.Contains(buf.String(), "invalid log level") {
		t.Errorf("expected warning, got %q", buf.String())
	}
	Info("still info")
	if !strings.Contains(buf.String(), "still info") {
		t.Error("logger should fall back to info")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Warn("source failed", "source", "catalog_3.txt", "error", "empty input")

	out := buf.String()
	for _, want := range []string{`"msg":"source failed"`, `"source":"catalog_3.txt"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestWith_ReturnsLoggerWithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("component", "sanitize").Info("pass complete")

	out := buf.String()
	if !strings.Contains(out, "pass complete") || !strings.Contains(out, "component=sanitize") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestContextVariants(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	ctx := context.Background()
	DebugContext(ctx, "debug ctx")
	InfoContext(ctx, "info ctx")
	WarnContext(ctx, "warn ctx")
	ErrorContext(ctx, "error ctx")

	for _, want := range []string{"debug ctx", "info ctx", "warn ctx", "error ctx"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestSetLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(slog.New(slog.NewJSONHandler(buf, nil)))
	defer resetLogger()

	Info("custom")
	if !strings.Contains(buf.String(), `"msg":"custom"`) {
		t.Errorf("custom logger not used: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "": slog.LevelInfo, "WARNING": slog.LevelWarn, "error": slog.LevelError} {
		if got, err := ParseLevel(in); err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error")
	}
}
