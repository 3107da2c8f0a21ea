// Package settings provides build metadata, run options, and context
// helpers shared by the rtex CLI and demo host.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "rtex"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// SourceSettings says where option records come from.
type SourceSettings struct {
	// Path is the options file, "-" for stdin, or empty for the built-in list.
	Path     string
	FromPipe bool
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	// LogFile receives logs while the TUI owns the terminal. Empty disables
	// logging.
	LogFile string
	Source  SourceSettings
	NoColor bool
	// ExitOnError makes the CLI exit non-zero on the first failure.
	ExitOnError bool
}

// NewCliParams returns the defaults used by the CLI.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Source: SourceSettings{
			Path: "",
		},
		NoColor:     false,
		ExitOnError: true,
	}
}

// LoggingEnabled reports whether a log sink was configured.
func (r *Run) LoggingEnabled() bool {
	return r != nil && r.LogFile != ""
}
