package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "upload started", "file_id", 1)
	log.Info(ctx, "link minted", "file_id", 2)
	log.Warn(ctx, "link rejected", "file_id", 3)
	log.Error(ctx, "storage failure", "file_id", 4)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	want := []struct {
		level, msg string
		id         float64
	}{
		{"DEBUG", "upload started", 1},
		{"INFO", "link minted", 2},
		{"WARN", "link rejected", 3},
		{"ERROR", "storage failure", 4},
	}
	for i, w := range want {
		assert.Equal(t, w.level, lines[i]["level"])
		assert.Equal(t, w.msg, lines[i]["msg"])
		assert.Equal(t, w.id, lines[i]["file_id"])
	}
}

func TestNewJSONLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelInfo)
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.With("module", "links").Warn(ctx, "link redemption rejected", "reason", "forbidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "links", lines[0]["module"])
	assert.Equal(t, "forbidden", lines[0]["reason"])
}

func TestNewJSONLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelInfo)

	log.With("Token", "eyJhbGci").Info(context.Background(), "login",
		"email", "a@b.c", "password", "hunter2", "refresh_token", "r1", "storage_path", "/srv/up/x.docx")

	out := buf.String()
	for _, secret := range []string{"eyJhbGci", "hunter2", "r1\"", "/srv/up"} {
		assert.NotContains(t, out, secret)
	}
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "a@b.c", lines[0]["email"])
	assert.Equal(t, redacted, lines[0]["password"])
	assert.Equal(t, redacted, lines[0]["Token"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"WARN":     slog.LevelWarn,
		" error ":  slog.LevelError,
		"info":     slog.LevelInfo,
		"nonsense": slog.LevelInfo,
		"":         slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestNop_SatisfiesLogger(t *testing.T) {
	var l Logger = Nop{}
	l.With("a", 1).Info(context.Background(), "ignored")
}
