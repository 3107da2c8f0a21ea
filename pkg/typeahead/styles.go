package typeahead

import "charm.land/lipgloss/v2"

// Styles controls how the widget paints itself.
type Styles struct {
	Input          lipgloss.Style
	Spinner        lipgloss.Style
	Option         lipgloss.Style
	SelectedOption lipgloss.Style
	Empty          lipgloss.Style
}

// DefaultStyles returns the 256-color palette.
func DefaultStyles() Styles {
	return Styles{
		Input:          lipgloss.NewStyle(),
		Spinner:        lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Option:         lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		SelectedOption: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24")).Bold(true),
		Empty:          lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// PlainStyles returns styles that add no color, for --no-color output.
func PlainStyles() Styles {
	return Styles{
		SelectedOption: lipgloss.NewStyle().Reverse(true),
	}
}
