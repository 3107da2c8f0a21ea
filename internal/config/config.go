// Package config resolves the effective rtex configuration from the embedded
// defaults, an optional YAML or TOML file, and command-line flags.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

//go:embed default.yaml
var defaultYAML []byte

// DiscoveryNames are tried in order in the working directory when no
// --config is given.
var DiscoveryNames = []string{".rtex.yaml", ".rtex.yml", ".rtex.toml"}

var (
	ErrUnknownTheme     = errors.New("config: unknown theme")
	ErrInvalidInstances = errors.New("config: instances must be at least 1")
	ErrUnsupportedFile  = errors.New("config: unsupported file extension")
)

// Theme is a palette of 256-color codes or hex values.
type Theme struct {
	Accent     string `yaml:"accent" toml:"accent"`
	Text       string `yaml:"text" toml:"text"`
	Muted      string `yaml:"muted" toml:"muted"`
	SelectedFG string `yaml:"selected_fg" toml:"selected_fg"`
	SelectedBG string `yaml:"selected_bg" toml:"selected_bg"`
	Ghost      string `yaml:"ghost" toml:"ghost"`
	StatusFG   string `yaml:"status_fg" toml:"status_fg"`
	StatusBG   string `yaml:"status_bg" toml:"status_bg"`
}

// Config is the fully resolved configuration.
type Config struct {
	DisplayKey    string           `yaml:"display_key" toml:"display_key"`
	RateLimitBy   string           `yaml:"rate_limit_by" toml:"rate_limit_by"`
	RateLimitWait int              `yaml:"rate_limit_wait" toml:"rate_limit_wait"`
	MinLength     int              `yaml:"min_length" toml:"min_length"`
	Hint          bool             `yaml:"hint" toml:"hint"`
	ShowEmpty     bool             `yaml:"show_empty" toml:"show_empty"`
	Placeholder   string           `yaml:"placeholder" toml:"placeholder"`
	MaxVisible    int              `yaml:"max_visible" toml:"max_visible"`
	Where         string           `yaml:"where" toml:"where"`
	Fuzzy         bool             `yaml:"fuzzy" toml:"fuzzy"`
	Instances     int              `yaml:"instances" toml:"instances"`
	FetchLatency  Duration         `yaml:"fetch_latency" toml:"fetch_latency"`
	Theme         string           `yaml:"theme" toml:"theme"`
	NoColor       bool             `yaml:"no_color" toml:"no_color"`
	LogLevel      int8             `yaml:"log_level" toml:"log_level"`
	LogFile       string           `yaml:"log_file" toml:"log_file"`
	Themes        map[string]Theme `yaml:"themes" toml:"themes"`
}

// Duration is a time.Duration spelled as "250ms" in files.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML keeps yaml.v3 from emitting the raw integer.
func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

// UnmarshalYAML accepts both "250ms" and a bare integer of milliseconds.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var ms int64
	if n.Tag == "!!int" {
		if err := n.Decode(&ms); err != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	return d.UnmarshalText([]byte(n.Value))
}

// Defaults returns the embedded defaults.
func Defaults() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Discover returns the first discovery name present in dir, or "".
func Discover(dir string) string {
	for _, name := range DiscoveryNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Load merges the file at path over the defaults. An empty path yields the
// defaults alone.
func Load(path string) (Config, error) {
	cfg, err := Defaults()
	if err != nil || path == "" {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decodeInto(&cfg, path, data); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decodeInto overlays data onto cfg. Keys absent from the file keep their
// current values; named themes are merged field by field.
func decodeInto(cfg *Config, path string, data []byte) error {
	base := maps.Clone(cfg.Themes)
	if base == nil {
		base = map[string]Theme{}
	}
	cfg.Themes = nil

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	for name, th := range cfg.Themes {
		base[name] = mergeTheme(base[name], th)
	}
	cfg.Themes = base
	return nil
}

func mergeTheme(base, over Theme) Theme {
	pick := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	pick(&base.Accent, over.Accent)
	pick(&base.Text, over.Text)
	pick(&base.Muted, over.Muted)
	pick(&base.SelectedFG, over.SelectedFG)
	pick(&base.SelectedBG, over.SelectedBG)
	pick(&base.Ghost, over.Ghost)
	pick(&base.StatusFG, over.StatusFG)
	pick(&base.StatusBG, over.StatusBG)
	return base
}

// Flag names shared by RegisterFlags and ApplyFlags.
const (
	FlagDisplayKey    = "display-key"
	FlagRateLimitBy   = "rate-limit-by"
	FlagRateLimitWait = "rate-limit-wait"
	FlagMinLength     = "min-length"
	FlagHint          = "hint"
	FlagShowEmpty     = "show-empty"
	FlagPlaceholder   = "placeholder"
	FlagMaxVisible    = "max-visible"
	FlagWhere         = "where"
	FlagFuzzy         = "fuzzy"
	FlagInstances     = "instances"
	FlagFetchLatency  = "fetch-latency"
	FlagTheme         = "theme"
	FlagNoColor       = "no-color"
	FlagLogLevel      = "log-level"
	FlagLogFile       = "log-file"
)

// RegisterFlags declares the configuration flags on fs. Defaults shown in
// help come from cfg; ApplyFlags only honours flags the user changed.
func RegisterFlags(fs *pflag.FlagSet, cfg Config) {
	fs.String(FlagDisplayKey, cfg.DisplayKey, "record field shown in the input and the hint")
	fs.String(FlagRateLimitBy, cfg.RateLimitBy, "fetch rate limiting: none|throttle|debounce")
	fs.Int(FlagRateLimitWait, cfg.RateLimitWait, "rate limit wait in milliseconds")
	fs.Int(FlagMinLength, cfg.MinLength, "minimum text length before fetching")
	fs.Bool(FlagHint, cfg.Hint, "show the inline completion hint")
	fs.Bool(FlagShowEmpty, cfg.ShowEmpty, "show a panel when no options match")
	fs.String(FlagPlaceholder, cfg.Placeholder, "input placeholder text")
	fs.Int(FlagMaxVisible, cfg.MaxVisible, "dropdown rows painted at once (0 = all)")
	fs.String(FlagWhere, cfg.Where, "CEL predicate over each record, bound to '_'")
	fs.Bool(FlagFuzzy, cfg.Fuzzy, "rank by edit distance when no prefix matches")
	fs.Int(FlagInstances, cfg.Instances, "number of typeahead widgets")
	fs.Duration(FlagFetchLatency, time.Duration(cfg.FetchLatency), "simulated fetch latency")
	fs.String(FlagTheme, cfg.Theme, "theme name (see 'rtex config')")
	fs.Bool(FlagNoColor, cfg.NoColor, "disable color output")
	fs.Int8(FlagLogLevel, cfg.LogLevel, "log level: -1 debug, 0 info, higher is quieter")
	fs.String(FlagLogFile, cfg.LogFile, "write JSON logs to this file")
}

// ApplyFlags copies every changed flag in fs over cfg.
func ApplyFlags(cfg Config, fs *pflag.FlagSet) (Config, error) {
	var errs []error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}
	str := func(name string, dst *string) {
		if changed(name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if changed(name) {
			v, err := fs.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	flag := func(name string, dst *bool) {
		if changed(name) {
			v, err := fs.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	str(FlagDisplayKey, &cfg.DisplayKey)
	str(FlagRateLimitBy, &cfg.RateLimitBy)
	num(FlagRateLimitWait, &cfg.RateLimitWait)
	num(FlagMinLength, &cfg.MinLength)
	flag(FlagHint, &cfg.Hint)
	flag(FlagShowEmpty, &cfg.ShowEmpty)
	str(FlagPlaceholder, &cfg.Placeholder)
	num(FlagMaxVisible, &cfg.MaxVisible)
	str(FlagWhere, &cfg.Where)
	flag(FlagFuzzy, &cfg.Fuzzy)
	num(FlagInstances, &cfg.Instances)
	str(FlagTheme, &cfg.Theme)
	flag(FlagNoColor, &cfg.NoColor)
	str(FlagLogFile, &cfg.LogFile)
	if changed(FlagFetchLatency) {
		v, err := fs.GetDuration(FlagFetchLatency)
		errs = append(errs, err)
		cfg.FetchLatency = Duration(v)
	}
	if changed(FlagLogLevel) {
		v, err := fs.GetInt8(FlagLogLevel)
		errs = append(errs, err)
		cfg.LogLevel = v
	}
	return cfg, errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := typeahead.ParseRateLimitBy(c.RateLimitBy); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimitWait < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", typeahead.ErrInvalidRateLimitWait, c.RateLimitWait))
	}
	if c.MinLength < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", typeahead.ErrInvalidMinLength, c.MinLength))
	}
	if strings.TrimSpace(c.DisplayKey) == "" {
		errs = append(errs, typeahead.ErrMissingDisplayKey)
	}
	if c.Instances < 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidInstances, c.Instances))
	}
	if _, ok := c.Themes[c.Theme]; !ok {
		errs = append(errs, fmt.Errorf("%w %q (available: %s)", ErrUnknownTheme, c.Theme, strings.Join(c.ThemeNames(), ", ")))
	}
	return errors.Join(errs...)
}

// ThemeNames lists the configured themes alphabetically.
func (c Config) ThemeNames() []string {
	return slices.Sorted(maps.Keys(c.Themes))
}

// ActiveTheme returns the palette named by Theme.
func (c Config) ActiveTheme() (Theme, bool) {
	th, ok := c.Themes[c.Theme]
	return th, ok
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
