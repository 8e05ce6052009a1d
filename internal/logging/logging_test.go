package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(Config{Level: "debug", Format: "json"}, &buf), "cache")
	l.Debug().Str("key", "courses").Msg("evicted")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	require.Equal(t, "cache", event["component"])
	require.Equal(t, "courses", event["key"])
	require.Equal(t, "debug", event["level"])
	require.Contains(t, event, "time")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "chatty"}, &buf)
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	l, closer, err := Open(Config{Level: "info", File: path})
	require.NoError(t, err)
	l.Info().Msg("hello")
	require.NoError(t, closer.Close())
	require.FileExists(t, path)
}
