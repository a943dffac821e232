package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_SetsLevelAndGlobal(t *testing.T) {
	lgr, err := New("warn", "json")
	require.NoError(t, err)

	assert.False(t, lgr.Core().Enabled(zap.InfoLevel))
	assert.True(t, lgr.Core().Enabled(zap.WarnLevel))
	assert.Same(t, lgr, zap.L())

	dbg, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, dbg.Core().Enabled(zap.DebugLevel))
}
