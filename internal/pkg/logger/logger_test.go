package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	prod, err := New("prod", "")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))
	assert.True(t, prod.Core().Enabled(zap.InfoLevel))

	dev, err := New("dev", "")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))

	quiet, err := New("dev", "WARN")
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))

	_, err = New("prod", "loud")
	assert.Error(t, err)
}
