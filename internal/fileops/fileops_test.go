package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileOps(t *testing.T) *DefaultFileOps {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	fileOps, err := NewDefaultFileOps()
	require.NoError(t, err)
	require.NoError(t, fileOps.EnsureDirectories())
	return fileOps
}

func TestConfigRoundTrip(t *testing.T) {
	fileOps := newTestFileOps(t)

	_, err := fileOps.LoadConfig("wakeful.yaml")
	assert.ErrorIs(t, err, ErrConfigNotFound)

	require.NoError(t, fileOps.SaveConfig("wakeful.yaml", []byte("inhibit:\n  strategy: auto\n")))

	data, err := fileOps.LoadConfig("wakeful.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "strategy: auto")
}

func TestEnsureDirectories(t *testing.T) {
	fileOps := newTestFileOps(t)

	info, err := os.Stat(fileOps.GetConfigDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = os.Stat(fileOps.GetLogDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPIDLifecycle(t *testing.T) {
	fileOps := newTestFileOps(t)

	// No PID file yet
	require.NoError(t, fileOps.CheckPID())

	// Our own live PID counts as a running instance
	require.NoError(t, fileOps.SavePID())
	assert.ErrorIs(t, fileOps.CheckPID(), ErrProcessAlreadyRunning)

	require.NoError(t, fileOps.CleanupPID())
	require.NoError(t, fileOps.CheckPID())
}

func TestStalePIDFileIsIgnored(t *testing.T) {
	fileOps := newTestFileOps(t)

	// Write a PID that almost certainly does not exist
	pidFile := filepath.Join(fileOps.GetConfigDir(), "wakeful.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("999999"), 0o644))

	assert.NoError(t, fileOps.CheckPID())
}
