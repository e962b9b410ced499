package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { level.SetLevel(zap.InfoLevel) })

	require.NoError(t, SetLevel(""))
	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zap.WarnLevel, level.Level())

	require.NoError(t, SetLevel("DEBUG"))
	assert.Equal(t, zap.DebugLevel, level.Level())

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zap.DebugLevel, level.Level())
}

func TestGetWithoutInit(t *testing.T) {
	assert.NotNil(t, Get())
	assert.NotNil(t, Named("component"))
}
