package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaffoldlab/scaffbox/config"
)

func TestNew(t *testing.T) {
	t.Run("ProductionMode", func(t *testing.T) {
		log, err := New("production", "info")
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("DevelopmentMode", func(t *testing.T) {
		log, err := New("development", "debug")
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("InvalidMode", func(t *testing.T) {
		log, err := New("staging", "info")
		require.Error(t, err)
		assert.Nil(t, log)
		assert.Contains(t, err.Error(), "invalid logging mode")
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		log, err := New("production", "verbose")
		require.Error(t, err)
		assert.Nil(t, log)
		assert.Contains(t, err.Error(), "invalid logging level")
	})
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		Logging: config.LoggingConfig{Mode: "production", Level: "warn"},
	}

	log, err := NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, log)
}
