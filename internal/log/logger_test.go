package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	l := WithComponent("reconciler")
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reconciler", entry["component"])
	assert.Equal(t, "sentry-console", entry["service"])
	assert.Equal(t, "hello", entry["message"])
}

func TestConfigureIgnoresBadLevel(t *testing.T) {
	Configure(Config{Level: "shouting", Output: &bytes.Buffer{}})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
