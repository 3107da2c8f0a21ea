package typeahead

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/rtex/internal/limiter"
)

// handleTextChange re-derives state after the user edited the text, then
// either requests data or reports the change. Never both.
func (m *Model) handleTextChange(prev string) tea.Cmd {
	value := m.input.Value()
	dir := m.direction(value)

	m.state.Value = value
	m.state.SelectedIndex = -1
	m.state.DropdownVisible = m.state.OptionCount() > 0
	m.state.HintEnabled = m.props.Hint && dir != RTL
	m.state.Direction = dir
	m.state.HintValue = m.hintFor(-1)
	m.offset = 0

	if m.longEnough(value) {
		return m.dispatch(value)
	}
	if m.props.OnChange != nil {
		m.props.OnChange(ChangeEvent{ID: m.id, Value: value, Previous: prev})
	}
	return nil
}

func (m *Model) dispatch(value string) tea.Cmd {
	return m.apply(m.dispatcher.Submit(value))
}

func (m *Model) apply(dec limiter.Decision) tea.Cmd {
	if dec.Fire {
		m.log.V(2).Info("fetch", "value", dec.Value, "mode", m.dispatcher.Config().Mode)
		if m.props.OnFetchData != nil {
			m.props.OnFetchData(dec.Value)
		}
	}
	if dec.Schedule == nil {
		return nil
	}
	id, seq := m.id, dec.Schedule.Seq
	wait := max(dec.Schedule.Deadline.Sub(m.now()), 0)
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return fetchTimerMsg{id: id, seq: seq}
	})
}
