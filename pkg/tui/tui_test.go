package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/rtex/internal/config"
)

func TestDetectTerminalSizeFallsBack(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	w, _ := DetectTerminalSize()
	assert.Positive(t, w)
}

func TestNewModel(t *testing.T) {
	s, err := config.Defaults()
	require.NoError(t, err)
	s.Instances = 2

	m, err := NewModel(Config{Settings: s, Records: []map[string]any{{"name": "Go"}}})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	assert.Len(t, m.Widgets(), 2)
}

func TestNewModelValidates(t *testing.T) {
	s, err := config.Defaults()
	require.NoError(t, err)
	s.Theme = "neon"
	_, err = NewModel(Config{Settings: s})
	require.ErrorIs(t, err, config.ErrUnknownTheme)

	s.Theme = "dark"
	s.Where = "_.name +"
	_, err = NewModel(Config{Settings: s})
	require.Error(t, err)
}
