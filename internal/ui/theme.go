package ui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/rtex/internal/config"
	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

// Theme holds every style used by the host and its widgets.
type Theme struct {
	Name         string
	Widget       typeahead.Styles
	Title        lipgloss.Style
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Status       lipgloss.Style
	StatusError  lipgloss.Style
	Help         lipgloss.Style
}

// ThemeFromConfig maps a configured palette onto lipgloss styles. Empty
// entries leave the terminal default in place.
func ThemeFromConfig(name string, c config.Theme) Theme {
	fg := func(s lipgloss.Style, v string) lipgloss.Style {
		if v = strings.TrimSpace(v); v != "" {
			s = s.Foreground(lipgloss.Color(v))
		}
		return s
	}
	bg := func(s lipgloss.Style, v string) lipgloss.Style {
		if v = strings.TrimSpace(v); v != "" {
			s = s.Background(lipgloss.Color(v))
		}
		return s
	}
	base := lipgloss.NewStyle()
	status := bg(fg(base, c.StatusFG), c.StatusBG)

	return Theme{
		Name: name,
		Widget: typeahead.Styles{
			Input:          fg(base, c.Text),
			Spinner:        fg(base, c.Accent),
			Option:         fg(base, c.Text),
			SelectedOption: bg(fg(base, c.SelectedFG), c.SelectedBG).Bold(true),
			Empty:          fg(base, c.Muted).Italic(true),
		},
		Title:        fg(base, c.Accent).Bold(true),
		Label:        fg(base, c.Muted),
		LabelFocused: fg(base, c.Accent).Bold(true),
		Status:       status,
		StatusError:  status.Foreground(lipgloss.Color("203")),
		Help:         fg(base, c.Ghost),
	}
}

// PlainTheme adds no color.
func PlainTheme() Theme {
	base := lipgloss.NewStyle()
	return Theme{
		Name:         "plain",
		Widget:       typeahead.PlainStyles(),
		Title:        base.Bold(true),
		Label:        base,
		LabelFocused: base.Bold(true),
		Status:       base,
		StatusError:  base,
		Help:         base,
	}
}

// ResolveTheme picks the active palette from cfg, honouring NoColor.
func ResolveTheme(cfg config.Config) Theme {
	if cfg.NoColor {
		return PlainTheme()
	}
	th, ok := cfg.ActiveTheme()
	if !ok {
		return Theme{Name: cfg.Theme, Widget: typeahead.DefaultStyles()}
	}
	return ThemeFromConfig(cfg.Theme, th)
}
