package typeahead

import "github.com/oakwood-commons/rtex/internal/limiter"

// Phase is the dropdown visibility phase.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseEmptyOpen
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseEmptyOpen:
		return "empty"
	default:
		return "closed"
	}
}

// WidgetState is a snapshot of the derived widget state.
type WidgetState struct {
	Value   string
	Options Sequence
	// SelectedIndex is -1 when no row is selected.
	SelectedIndex   int
	DropdownVisible bool
	EmptyVisible    bool
	HintEnabled     bool
	HintValue       string
	Direction       Direction
	RateLimit       limiter.Config
	MinLength       int
	ShowLoading     bool
	ShowEmpty       bool
	Placeholder     string
	Focused         bool
}

// OptionCount returns the number of options.
func (s WidgetState) OptionCount() int {
	return seqLen(s.Options)
}

// DropdownShown reports whether option rows are painted.
func (s WidgetState) DropdownShown() bool {
	return s.DropdownVisible && s.OptionCount() > 0
}

// EmptyShown reports whether the empty panel is painted. It never shows
// together with the option rows.
func (s WidgetState) EmptyShown() bool {
	return s.EmptyVisible && s.ShowEmpty && !s.DropdownShown()
}

// Phase derives the visibility phase.
func (s WidgetState) Phase() Phase {
	switch {
	case s.DropdownShown():
		return PhaseOpen
	case s.EmptyShown():
		return PhaseEmptyOpen
	default:
		return PhaseClosed
	}
}
