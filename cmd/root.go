// Package cmd holds the rtex command line.
package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/rtex/internal/config"
	"github.com/oakwood-commons/rtex/pkg/loader"
	"github.com/oakwood-commons/rtex/pkg/logger"
	"github.com/oakwood-commons/rtex/pkg/settings"
	"github.com/oakwood-commons/rtex/pkg/tui"
	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

//go:embed sample.yaml
var sampleRecords string

var (
	configFile string
	effective  config.Config
	run        = settings.NewCliParams()

	// runTUI is swapped in tests.
	runTUI = tui.Run
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [options-file]",
	Short: "Typeahead search over a list of records in the terminal",
	Long: `rtex loads records from a JSON, NDJSON, YAML, TOML or plain text file
(or stdin) and opens one or more typeahead fields over them.

Configuration is read from --config, or .rtex.yaml / .rtex.toml in the
working directory, and flags given on the command line override it.`,
	Example: "\n  rtex languages.yaml\n  rtex --instances 3 --rate-limit-by debounce --rate-limit-wait 200 users.json\n  cat names.txt | rtex --min-length 2\n  rtex --where '_.typed && _.year > 2000'\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		effective = cfg
		run.MinLogLevel = cfg.LogLevel
		run.LogFile = cfg.LogFile
		run.NoColor = cfg.NoColor

		lgr, err := logger.Setup(logger.Options{Level: cfg.LogLevel, Path: cfg.LogFile})
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		l := lgr.WithValues("command", cmd.Name())
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.WithLogger(ctx, &l)
		cmd.SetContext(settings.IntoContext(ctx, run))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lgr := logger.FromContext(ctx)

		if len(args) == 1 {
			run.Source.Path = args[0]
		}
		run.Source.FromPipe = (len(args) == 0 && stdinIsPiped()) || run.Source.Path == "-"

		records, title, err := loadRecords(run.Source, effective.DisplayKey, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if countDisplayable(records, effective.DisplayKey) == 0 {
			return fmt.Errorf("%s: no records with a %q field", title, effective.DisplayKey)
		}
		lgr.Info("starting", "records", len(records), "source", title, "instances", effective.Instances)

		opts, cleanup := getProgramOptions()
		defer cleanup()
		return runTUI(ctx, tui.Config{
			Settings: effective,
			Records:  records,
			Title:    "rtex · " + title,
			Logger:   *lgr,
		}, opts...)
	},
}

// resolveConfig layers the config file under every changed flag.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Discover(wd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cfg, err = config.ApplyFlags(cfg, cmd.Flags()); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// loadRecords reads the options file, stdin, or the built-in sample. The
// returned title names the source for the header.
func loadRecords(src settings.SourceSettings, displayKey string, stdin io.Reader) ([]map[string]any, string, error) {
	switch {
	case src.FromPipe:
		recs, err := loader.LoadReader(stdin, displayKey)
		if err != nil {
			return nil, "stdin", fmt.Errorf("read stdin: %w", err)
		}
		return recs, "stdin", nil
	case src.Path != "":
		recs, err := loader.LoadFile(src.Path, displayKey)
		if err != nil {
			return nil, src.Path, err
		}
		return recs, filepath.Base(src.Path), nil
	default:
		recs, err := loader.Load(sampleRecords, displayKey)
		return recs, "languages", err
	}
}

func countDisplayable(records []map[string]any, key string) int {
	n := 0
	for _, r := range records {
		if _, ok := typeahead.DisplayValue(r, key); ok {
			n++
		}
	}
	return n
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print rtex version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := effective.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func cliVersionString() string {
	v := settings.VersionInformation
	return strings.TrimSpace(fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime))
}

func init() { //nolint:gochecknoinits
	defaults, err := config.Defaults()
	if err != nil {
		panic(err)
	}
	config.RegisterFlags(rootCmd.PersistentFlags(), defaults)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML or TOML config file (default .rtex.yaml or .rtex.toml)")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, configCmd)
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
