package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLogFormat(t *testing.T) {
	require.Equal(t, "pretty", resolveLogFormat(nil))
	require.Equal(t, "pretty", resolveLogFormat(&Config{AppEnv: "development", LogFormat: "pretty"}))
	require.Equal(t, "json", resolveLogFormat(&Config{AppEnv: "development", LogFormat: "json"}))
	// Production always logs json, whatever LOG_FORMAT says.
	require.Equal(t, "json", resolveLogFormat(&Config{AppEnv: "production", LogFormat: "pretty"}))
}

func TestLogHandlerFormats(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newLogHandler("json", &buf)).Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "hello", record["msg"])

	buf.Reset()
	slog.New(newLogHandler("pretty", &buf)).Info("hello")
	require.True(t, strings.Contains(buf.String(), "msg=hello"))
}
