package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		format      string
		wantJSON    bool
	}{
		{name: "production defaults to json", environment: "production", wantJSON: true},
		{name: "development defaults to console", environment: "development"},
		{name: "explicit json wins", environment: "development", format: FormatJSON, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: tt.environment, Format: tt.format})
			log.Info("hello", "cigar", "Robusto X")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
				assert.Contains(t, buf.String(), `"cigar":"Robusto X"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), `cigar=`+ansiReset+`"Robusto X"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestConsoleHandler_Enabled(t *testing.T) {
	h := NewConsoleHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestConsoleHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(&buf, nil)

	log := slog.New(h).With("user_id", "u1").WithGroup("tasting")
	log.Info("finished", "duration_min", 30)

	out := buf.String()
	assert.Contains(t, out, "finished")
	assert.Contains(t, out, "user_id="+ansiReset+"u1")
	assert.Contains(t, out, "tasting.duration_min="+ansiReset+"30")
}

func TestConsoleHandler_EmptyGroupIsNoop(t *testing.T) {
	h := NewConsoleHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
}

func TestLevelLabel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
		{slog.LevelError + 4, "ERR"},
	}
	for _, tt := range tests {
		got, _ := levelLabel(tt.level)
		assert.Equal(t, tt.want, got)
	}
}
