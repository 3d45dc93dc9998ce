package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_TransferFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "stock-ledger", Output: &buf})

	log.Named(logger.ComponentTransfers).WithTransfer("tr-1").Warn().Msg("salida aplicada")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "stock-ledger", entry["service"])
	assert.Equal(t, logger.ComponentTransfers, entry["component"])
	assert.Equal(t, "tr-1", entry["transfer_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestLogger_EventFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Output: &buf})

	log.WithEvent("ev-1", "").Info().Msg("sin clave")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "ev-1", entry["event_id"])
	assert.NotContains(t, entry, "idempotency_key")
	assert.NotContains(t, entry, "service")

	buf.Reset()
	log.WithEvent("ev-2", "k-1").Debug().Msg("con clave")
	entry = decodeLine(t, &buf)
	assert.Equal(t, "k-1", entry["idempotency_key"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	log.Error().Msg("registrado")
	assert.NotZero(t, buf.Len())
}
