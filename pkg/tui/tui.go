// Package tui runs the rtex demo host as a full-screen bubbletea program.
package tui

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"golang.org/x/term"

	"github.com/oakwood-commons/rtex/internal/config"
	"github.com/oakwood-commons/rtex/internal/source"
	"github.com/oakwood-commons/rtex/internal/ui"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr and stdin, then the COLUMNS environment variable.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Config holds what the host needs to run.
type Config struct {
	Settings config.Config
	Records  []map[string]any
	Title    string
	Logger   logr.Logger
}

// NewModel builds the host model without starting a program, for callers
// that embed it or drive it in tests.
func NewModel(cfg Config) (*ui.RootModel, error) {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	s := cfg.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	src, err := source.New(cfg.Records, source.Options{
		DisplayKey: s.DisplayKey,
		Where:      s.Where,
		Fuzzy:      s.Fuzzy,
	}, log)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = "rtex"
	}
	w, h := DetectTerminalSize()
	return ui.NewRootModel(ui.Options{
		Config: s,
		Source: src,
		Theme:  ui.ResolveTheme(s),
		Logger: log,
		Title:  title,
		Width:  w,
		Height: h,
	})
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		return err
	}
	return nil
}
