package typeahead

import (
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Render builds the node tree for the current state.
func (m *Model) Render() *Node {
	s := m.props.Styles
	cls := m.props.ClassName
	dir := m.state.Direction
	width := m.props.Width

	placeholder := m.props.Placeholder
	if m.state.HintValue != "" {
		placeholder = ""
	}
	in := m.input
	in.Placeholder = placeholder
	if m.state.HintEnabled && m.state.HintValue != "" {
		in.SetSuggestions([]string{m.state.HintValue})
	} else {
		in.SetSuggestions(nil)
	}

	hint := &Node{
		Class:  classList(ClassHint, cls),
		Attrs:  map[string]string{"value": m.state.HintValue},
		Hidden: true,
	}
	input := &Node{
		Class: classList(ClassInput, cls),
		Attrs: map[string]string{
			"value":       m.state.Value,
			"placeholder": placeholder,
			"dir":         string(dir),
		},
		Content: s.Input.Render(in.View()),
	}
	row := []*Node{hint, input}
	if m.state.ShowLoading {
		frame := s.Spinner.Render(m.spinner.View())
		spin := &Node{
			Class: ClassSpinner,
			Content: m.props.LoadingTemplate.Render(RenderContext{
				Index:     -1,
				Value:     m.state.Value,
				Direction: dir,
				Height:    1,
				ClassName: ClassSpinner,
				Frame:     frame,
			}),
		}
		if dir == RTL {
			spin.Content += " "
			row = []*Node{spin, hint, input}
		} else {
			spin.Content = " " + spin.Content
			row = append(row, spin)
		}
	}

	root := &Node{
		Class:    classList(ClassContainer, cls),
		Attrs:    map[string]string{"dir": string(dir)},
		Children: []*Node{{Class: ClassInputContainer, Inline: true, Children: row}},
	}

	if m.state.EmptyShown() {
		root.Children = append(root.Children, &Node{
			Class: classList(ClassOptionContainer, ClassIsOpen, ClassEmpty),
			Content: s.Empty.Render(m.props.EmptyTemplate.Render(RenderContext{
				Index:     -1,
				Value:     m.state.Value,
				Direction: dir,
				Width:     width,
				Height:    1,
			})),
		})
	}

	root.Children = append(root.Children, m.renderOptions())

	view := root.String()
	m.lastWidth = lipgloss.Width(view)
	m.lastHeight = lipgloss.Height(view)
	return root
}

func (m *Model) renderOptions() *Node {
	s := m.props.Styles
	open := m.state.DropdownShown()
	list := &Node{Hidden: !open}
	if open {
		list.Class = classList(ClassOptionContainer, ClassIsOpen)
	} else {
		list.Class = ClassOptionContainer
	}

	n := m.state.OptionCount()
	first, last := m.window()
	for i := 0; i < n; i++ {
		opt, _ := seqAt(m.state.Options, i)
		selected := i == m.state.SelectedIndex
		row := &Node{
			Class: ClassOption,
			Attrs: map[string]string{
				"index":    strconv.Itoa(i),
				"selected": strconv.FormatBool(selected),
			},
			Hidden: i < first || i >= last,
		}
		if open && !row.Hidden {
			st := s.Option
			if selected {
				st = s.SelectedOption
			}
			// Rows are one line tall so clicks map to indices.
			st = st.MaxHeight(1)
			if w := m.props.Width; w > 0 {
				st = st.Width(w).MaxWidth(w)
			}
			row.Content = st.Render(m.props.OptionTemplate.Render(RenderContext{
				Data:      opt,
				Index:     i,
				Value:     m.state.Value,
				Selected:  selected,
				Direction: m.state.Direction,
				Width:     m.props.Width,
				Height:    1,
				ClassName: m.props.ClassName,
			}))
		}
		list.Children = append(list.Children, row)
	}
	return list
}

// View paints the widget.
func (m *Model) View() string {
	return m.Render().String()
}

// window returns the half-open range of option rows that are painted.
func (m *Model) window() (int, int) {
	n := m.state.OptionCount()
	limit := m.props.MaxVisible
	if limit <= 0 || limit >= n {
		return 0, n
	}
	return m.offset, min(m.offset+limit, n)
}

func (m *Model) scrollToSelection() {
	n := m.state.OptionCount()
	limit := m.props.MaxVisible
	if limit <= 0 || limit >= n {
		m.offset = 0
		return
	}
	idx := m.state.SelectedIndex
	switch {
	case idx < 0:
		m.offset = 0
	case idx < m.offset:
		m.offset = idx
	case idx >= m.offset+limit:
		m.offset = idx - limit + 1
	}
	m.offset = max(0, min(m.offset, n-limit))
}

// HandleClick runs the target phase of a document click. Clicks on the
// input or an option row stop propagation so the document listener does
// not close the dropdown.
func (m *Model) HandleClick(ev *ClickEvent) {
	row := ev.Y - m.originY
	if row == 0 {
		ev.StopPropagation()
		m.placeCursor(ev.X - m.originX)
		if m.props.OnClick != nil {
			m.props.OnClick(ev)
		}
		return
	}
	if !m.state.DropdownShown() {
		return
	}
	first, last := m.window()
	if idx := first + row - 1; idx >= first && idx < last {
		ev.StopPropagation()
		m.selectOption(idx)
	}
}

// placeCursor moves the caret to the rune under column col.
func (m *Model) placeCursor(col int) {
	col -= runewidth.StringWidth(m.input.Prompt)
	if m.state.ShowLoading && m.state.Direction == RTL {
		col -= 2
	}
	if col <= 0 {
		m.input.SetCursor(0)
		return
	}
	pos, cells := 0, 0
	for _, r := range m.state.Value {
		w := runewidth.RuneWidth(r)
		if cells+w > col {
			break
		}
		cells += w
		pos++
	}
	m.input.SetCursor(pos)
}
