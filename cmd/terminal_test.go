package cmd

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProgramOptionsPipedUsesTTYAndCleansUp(t *testing.T) {
	origIsPiped, origOpenTTY := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origIsPiped, origOpenTTY })
	stdinIsPiped = func() bool { return true }

	inFile, err := os.CreateTemp(t.TempDir(), "tty-in-*")
	require.NoError(t, err)
	outFile, err := os.CreateTemp(t.TempDir(), "tty-out-*")
	require.NoError(t, err)
	openTerminalIOFn = func() (*os.File, *os.File, error) { return inFile, outFile, nil }

	opts, cleanup := getProgramOptions()
	require.NotNil(t, cleanup)
	require.GreaterOrEqual(t, len(opts), 2)

	cleanup()
	require.Error(t, inFile.Close(), "already closed")
	require.Error(t, outFile.Close(), "already closed")
}

func TestGetProgramOptionsNotPipedUsesDefaults(t *testing.T) {
	origIsPiped, origOpenTTY := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origIsPiped, origOpenTTY })
	stdinIsPiped = func() bool { return false }
	openTerminalIOFn = func() (*os.File, *os.File, error) { return nil, nil, errors.New("should not be called") }

	opts, cleanup := getProgramOptions()
	require.Nil(t, opts)
	require.NotPanics(t, cleanup)
}

func TestGetProgramOptionsWithoutTTY(t *testing.T) {
	origIsPiped, origOpenTTY := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origIsPiped, origOpenTTY })
	stdinIsPiped = func() bool { return true }
	openTerminalIOFn = func() (*os.File, *os.File, error) { return nil, nil, errors.New("no tty") }

	opts, cleanup := getProgramOptions()
	assert.Nil(t, opts)
	assert.NotPanics(t, cleanup)
}

func TestTerminalDeviceNames(t *testing.T) {
	in, out := terminalDeviceNames("windows")
	assert.Equal(t, "CONIN$", in)
	assert.Equal(t, "CONOUT$", out)
	in, out = terminalDeviceNames("linux")
	assert.Equal(t, "/dev/tty", in)
	assert.Equal(t, "/dev/tty", out)
}
