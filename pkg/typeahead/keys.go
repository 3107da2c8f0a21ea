package typeahead

import (
	tea "charm.land/bubbletea/v2"
)

// handleKey runs the navigation keys. It returns false when the key should
// fall through to the text input.
func (m *Model) handleKey(msg tea.KeyPressMsg) (bool, tea.Cmd) {
	k := msg.Key()
	shift := k.Mod&tea.ModShift != 0

	switch k.Code {
	case tea.KeyEscape:
		m.state.DropdownVisible = false
		m.state.EmptyVisible = false
		m.state.HintValue = ""
		return true, nil

	case tea.KeyUp:
		m.navigate(-1)
		return true, nil

	case tea.KeyDown:
		m.navigate(1)
		return true, nil

	case tea.KeyEnter:
		idx := m.state.SelectedIndex
		if m.state.DropdownShown() && idx >= 0 && idx < m.state.OptionCount() {
			m.commit(idx)
			if m.props.OnOptionChange != nil {
				opt, _ := seqAt(m.state.Options, idx)
				m.props.OnOptionChange(opt, idx)
			}
			return true, nil
		}
		m.state.DropdownVisible = false
		return true, nil

	case tea.KeyTab, tea.KeyEnd:
		if !shift {
			if hint := m.state.HintValue; m.state.HintEnabled && hint != "" && hint != m.state.Value {
				m.acceptHint(hint)
				return true, nil
			}
			m.state.DropdownVisible = false
		}
		if k.Code == tea.KeyTab {
			id := m.id
			return true, func() tea.Msg { return TabOutMsg{ID: id, Reverse: shift} }
		}
		return false, nil
	}
	return false, nil
}

func (m *Model) navigate(step int) {
	n := m.state.OptionCount()
	switch {
	case n > 0 && !m.state.DropdownVisible:
		m.state.DropdownVisible = true
		m.state.HintValue = m.hintFor(m.state.SelectedIndex)
	case n > 0:
		idx := wrapIndex(m.state.SelectedIndex+step, n)
		m.state.SelectedIndex = idx
		m.state.HintValue = m.hintFor(idx)
		m.scrollToSelection()
	case m.state.ShowEmpty:
		m.state.EmptyVisible = true
	}
	m.input.CursorEnd()
}

// commit writes the display text of option idx into the input and closes
// the dropdown. Options without a display field leave the text unchanged.
func (m *Model) commit(idx int) {
	opt, _ := seqAt(m.state.Options, idx)
	if display, ok := DisplayValue(opt, m.props.DisplayKey); ok {
		m.setValue(display)
	}
	m.state.SelectedIndex = idx
	m.state.DropdownVisible = false
	m.state.HintValue = ""
	m.log.V(1).Info("option committed", "index", idx, "value", m.state.Value)
}

func (m *Model) acceptHint(hint string) {
	m.setValue(hint)
	m.state.DropdownVisible = false
	m.state.HintValue = ""
	m.log.V(1).Info("hint accepted", "value", hint)
}

func (m *Model) setValue(v string) {
	m.state.Value = v
	m.input.SetValue(v)
	m.input.CursorEnd()
}

// selectOption handles a click on option row idx.
func (m *Model) selectOption(idx int) {
	opt, ok := seqAt(m.state.Options, idx)
	if !ok {
		return
	}
	m.commit(idx)
	if m.props.OnOptionClick != nil {
		m.props.OnOptionClick(opt, idx)
	}
	if m.props.OnOptionChange != nil {
		m.props.OnOptionChange(opt, idx)
	}
}
