package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

// debugLimit is how many events the debug bar remembers.
const debugLimit = 50

// FieldStatus is the per-widget summary shown in the status bar.
type FieldStatus struct {
	Label    string
	Phase    typeahead.Phase
	Options  int
	Selected int
	Loading  bool
	Focused  bool
}

func (f FieldStatus) String() string {
	s := fmt.Sprintf("%s:%s", f.Label, f.Phase)
	if f.Options > 0 {
		s += fmt.Sprintf(" %d/%d", f.Selected+1, f.Options)
	}
	if f.Loading {
		s += " …"
	}
	if f.Focused {
		s = "[" + s + "]"
	}
	return s
}

// StatusModel is the status bar plus the optional debug log below it.
type StatusModel struct {
	Fields     []FieldStatus
	Message    string
	IsError    bool
	Width      int
	DebugShown bool
	events     []string
}

// SetMessage replaces the transient message.
func (m *StatusModel) SetMessage(msg string, isErr bool) {
	m.Message, m.IsError = msg, isErr
}

// Record appends a debug event, dropping the oldest past debugLimit.
func (m *StatusModel) Record(format string, args ...any) {
	m.events = append(m.events, fmt.Sprintf(format, args...))
	if over := len(m.events) - debugLimit; over > 0 {
		m.events = m.events[over:]
	}
}

// Events returns the remembered debug events, oldest first.
func (m *StatusModel) Events() []string { return m.events }

// View renders the bar. Lines are cut to Width cells.
func (m StatusModel) View(th Theme, debugRows int) string {
	parts := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = f.String()
	}
	line := strings.Join(parts, "  ")
	if m.Message != "" {
		line += " | " + m.Message
	}
	style := th.Status
	if m.IsError {
		style = th.StatusError
	}
	out := []string{style.Render(fit(line, m.Width))}

	if m.DebugShown && debugRows > 0 {
		start := max(0, len(m.events)-debugRows)
		for _, ev := range m.events[start:] {
			out = append(out, th.Help.Render(fit("DBG "+ev, m.Width)))
		}
	}
	return strings.Join(out, "\n")
}

// fit truncates or pads s to exactly w cells. Non-positive widths leave s
// alone.
func fit(s string, w int) string {
	if w <= 0 {
		return s
	}
	s = runewidth.Truncate(s, w, "…")
	return runewidth.FillRight(s, w)
}
