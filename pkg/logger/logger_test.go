package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Output: &buf})

	zl := l.Component("sales")
	zl.Info().Int64("sale_id", 7).Msg("venta creada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sales", entry["component"])
	assert.Equal(t, "venta creada", entry["message"])
	assert.EqualValues(t, 7, entry["sale_id"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Output: &buf})
	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
}

func TestParseLevel_Desconocido(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
}
