package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatByEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantJSON bool
	}{
		{"production defaults to json", Config{Environment: "production"}, true},
		{"development defaults to pretty", Config{Environment: "development"}, false},
		{"explicit pretty in production", Config{Environment: "production", Format: "pretty"}, false},
		{"explicit json in development", Config{Environment: "development", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Writer = &buf

			New(tt.cfg).Info("hello")

			var record map[string]any
			err := json.Unmarshal(buf.Bytes(), &record)
			if tt.wantJSON {
				require.NoError(t, err)
				assert.Equal(t, "hello", record["msg"])
			} else {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "INF")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"trace":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithComponent("typeface").Info("loaded", "source", "local")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "typeface", record["component"])
	assert.Equal(t, "local", record["source"])
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelWarn})

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("careful")
	log.Error("broken")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "ERR")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestPrettyHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelDebug})

	log.With("profile", "auth0|alice").
		WithGroup("req").
		Debug("render", "bytes", 512, "title", "A story", slog.Group("font", "source", "cdn"))

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "render")
	assert.Contains(t, out, "profile=auth0|alice")
	assert.Contains(t, out, "req.bytes=512")
	assert.Contains(t, out, `req.title="A story"`)
	assert.Contains(t, out, "req.font.source=cdn")
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", AddSource: true})

	log.Info("where")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestPrettyHandler_WithGroupEmptyName(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
}
