package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/sanse-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("desconocido"))
}

func TestComponent_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "sanse-api", Out: &buf})
	log := l.Component("pricesync")
	log.Info().Str("supplier", "Otro").Msg("hola")
	log.Debug().Msg("no se escribe")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "una sola línea JSON")
	assert.Equal(t, "sanse-api", entry["service"])
	assert.Equal(t, "pricesync", entry["component"])
	assert.Equal(t, "hola", entry["message"])
}
