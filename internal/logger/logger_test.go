package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesFile(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	path := filepath.Join(t.TempDir(), "sentinel.log")
	require.NoError(t, Setup("debug", path))
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())

	log.Info().Str("symbol", "AAAUSDT").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"symbol":"AAAUSDT"`)
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup("loud", ""))
}
