package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Out: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "loud", Out: &buf})

	logger.Debug().Msg("debug line")
	logger.Info().Msg("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestGinWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Out: &buf})
	w := NewGinWriter(logger, zerolog.WarnLevel)

	n, err := w.Write([]byte("[GIN-debug] route registered\n"))
	assert.NoError(t, err)
	assert.Equal(t, len("[GIN-debug] route registered\n"), n)
	assert.Contains(t, buf.String(), "route registered")
	assert.Contains(t, buf.String(), "WRN")
}
