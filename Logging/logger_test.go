package Logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitReplacesGlobalLogger(t *testing.T) {
	require.NoError(t, Init("development", "debug"))

	logger := zap.L()
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestInitProductionLevels(t *testing.T) {
	require.NoError(t, Init("production", "warn"))

	core := zap.L().Core()
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	require.NoError(t, Init("development", "chatty"))

	core := zap.L().Core()
	assert.False(t, core.Enabled(zapcore.DebugLevel))
	assert.True(t, core.Enabled(zapcore.InfoLevel))
}
