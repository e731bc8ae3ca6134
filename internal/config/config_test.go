package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SURVIVAL_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("SURVIVAL_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SURVIVAL_TEST_UNSET", "fallback"))

	// Set but empty is still set.
	t.Setenv("SURVIVAL_TEST_EMPTY", "")
	assert.Equal(t, "", GetEnv("SURVIVAL_TEST_EMPTY", "fallback"))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SURVIVAL_TEST_DUR", "250ms")
	t.Setenv("SURVIVAL_TEST_BAD_DUR", "soon")

	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("SURVIVAL_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("SURVIVAL_TEST_BAD_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("SURVIVAL_TEST_UNSET", time.Second))
}

func TestNewLoggerJSON(t *testing.T) {
	defer log.SetDefault(log.Default())
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "test")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.Debug("hello", "score", 10)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(10), entry["score"])
}

func TestNewLoggerBadLevel(t *testing.T) {
	defer log.SetDefault(log.Default())
	t.Setenv("LOG_LEVEL", "loud")

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "")
	require.Error(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}
