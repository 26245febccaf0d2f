package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONLinesInUTC(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", false)
	l.Info().Msg("hidden")
	l.Warn().Str("player", "1").Msg("spawn refused")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "spawn refused", m["message"])
	assert.Equal(t, "1", m["player"])

	ts, err := time.Parse(time.RFC3339, m["time"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 0, offset)
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(&buf, "debug", true), "runner")
	l.Debug().Msg("control")
	out := buf.String()
	assert.Contains(t, out, "control")
	assert.Contains(t, out, "component=runner")
	assert.False(t, strings.HasPrefix(out, "{"))
}

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "server.20260102_030405.log"), LogFilePath("logs", "server", start))
}
