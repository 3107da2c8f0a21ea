package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/rtex/pkg/settings"
	"github.com/oakwood-commons/rtex/pkg/tui"
)

// execute runs the root command with args, capturing stdout and the
// config handed to the TUI.
func execute(t *testing.T, args ...string) (string, *tui.Config, error) {
	t.Helper()
	origRun, origPiped, origFile := runTUI, stdinIsPiped, configFile
	var got *tui.Config
	runTUI = func(_ context.Context, cfg tui.Config, _ ...tea.ProgramOption) error {
		got = &cfg
		return nil
	}
	stdinIsPiped = func() bool { return false }
	configFile = ""
	run = settings.NewCliParams()
	t.Cleanup(func() {
		runTUI, stdinIsPiped, configFile = origRun, origPiped, origFile
		resetFlags(rootCmd.PersistentFlags())
	})

	t.Chdir(t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), got, err
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestRootUsesSampleRecords(t *testing.T) {
	_, got, err := execute(t)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Greater(t, len(got.Records), 40)
	assert.Equal(t, "rtex · languages", got.Title)
	assert.Equal(t, "name", got.Settings.DisplayKey)
	assert.Equal(t, 1, got.Settings.Instances)
}

func TestRootFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("instances = 3\nmin_length = 2\n"), 0o600))
	data := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(data, []byte(`[{"login":"ada"},{"login":"grace"}]`), 0o600))

	_, got, err := execute(t, "--config", cfgPath, "--min-length", "1", "--display-key", "login", data)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Settings.Instances)
	assert.Equal(t, 1, got.Settings.MinLength)
	assert.Len(t, got.Records, 2)
	assert.Equal(t, "rtex · users.json", got.Title)
}

func TestRootRejectsBadFlags(t *testing.T) {
	_, got, err := execute(t, "--rate-limit-by", "hourly")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "hourly")
}

func TestRootRequiresDisplayField(t *testing.T) {
	_, _, err := execute(t, "--display-key", "title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"title"`)
}

func TestConfigCommandPrintsEffectiveYAML(t *testing.T) {
	out, got, err := execute(t, "config", "--theme", "warm", "--fetch-latency", "150ms")
	require.NoError(t, err)
	assert.Nil(t, got, "config does not start the TUI")
	assert.Contains(t, out, "theme: warm")
	assert.Contains(t, out, "fetch_latency: 150ms")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rtex "))
}

func TestLoadRecordsFromPipe(t *testing.T) {
	recs, title, err := loadRecords(settings.SourceSettings{FromPipe: true}, "name", strings.NewReader("alpha\nbeta\n"))
	require.NoError(t, err)
	assert.Equal(t, "stdin", title)
	assert.Equal(t, []map[string]any{{"name": "alpha"}, {"name": "beta"}}, recs)
}

func TestResolveConfigDiscoversWorkingDirFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rtex.yaml"), []byte("placeholder: Find a language\n"), 0o600))
	t.Chdir(dir)
	cfg, err := resolveConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "Find a language", cfg.Placeholder)
}
