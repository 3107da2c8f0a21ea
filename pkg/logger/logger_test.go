package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONLines(t *testing.T) {
	t.Cleanup(Close)
	var buf bytes.Buffer
	log, err := Setup(Options{Level: -2, Writer: &buf})
	require.NoError(t, err)

	ForWidget(log, "fruit").V(2).Info("props synced", "options", 3)
	Sync()

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "props synced", entry[MessageKey])
	assert.Equal(t, "fruit", entry[WidgetKey])
	assert.EqualValues(t, 3, entry["options"])
	assert.Contains(t, entry, VersionKey)
	assert.Contains(t, entry, TimeStampKey)
}

func TestSetupRespectsLevel(t *testing.T) {
	t.Cleanup(Close)
	var buf bytes.Buffer
	log, err := Setup(Options{Level: 0, Writer: &buf})
	require.NoError(t, err)

	log.V(1).Info("hidden")
	log.Info("shown")
	Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetupToFile(t *testing.T) {
	t.Cleanup(Close)
	path := filepath.Join(t.TempDir(), "logs", "rtex.log")
	log, err := Setup(Options{Path: path})
	require.NoError(t, err)
	log.Info("hello")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestSetupWithoutSinkIsNoop(t *testing.T) {
	t.Cleanup(Close)
	log, err := Setup(Options{})
	require.NoError(t, err)
	assert.Same(t, Noop(), log)
	assert.Same(t, Noop(), Global())
}

func TestContextLogger(t *testing.T) {
	t.Cleanup(Close)
	var buf bytes.Buffer
	log, err := Setup(Options{Writer: &buf})
	require.NoError(t, err)

	ctx := context.Background()
	assert.Same(t, log, FromContext(ctx), "falls back to the global logger")

	ctx2 := WithLogger(ctx, log)
	assert.Same(t, log, FromContext(ctx2))
	assert.Equal(t, ctx2, WithLogger(ctx2, log), "same logger keeps the context")

	other := Noop()
	assert.Same(t, other, FromContext(WithLogger(ctx2, other)))
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Err: syscall.EINVAL}))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}
