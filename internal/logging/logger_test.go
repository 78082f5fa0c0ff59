package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultIsQuiet(t *testing.T) {
	logger, closeFn, err := New(Options{})
	require.NoError(t, err)
	defer closeFn()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	logger, closeFn, err := New(Options{Verbose: true})
	require.NoError(t, err)
	defer closeFn()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_VerboseWritesFile(t *testing.T) {
	dir := t.TempDir()

	logger, closeFn, err := New(Options{Verbose: true, Dir: dir})
	require.NoError(t, err)

	logger.Debug("probe entry")
	_ = logger.Sync()
	closeFn()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "probe entry")
}

func TestNew_NoDirSkipsFile(t *testing.T) {
	logger, closeFn, err := New(Options{Verbose: true})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("nowhere")
	assert.NoError(t, logger.Sync())
}
