// Package typeahead provides an autocomplete input for bubbletea programs.
//
// A Model owns a text input, a dropdown of host-supplied options and an
// optional inline hint. The host owns the data: it receives OnFetchData
// callbacks, looks up options and pushes them back with SetProps, which
// re-derives the widget state from scratch.
package typeahead

import (
	"sync/atomic"
	"time"
	"unicode/utf8"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/rtex/internal/limiter"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// fetchTimerMsg fires when a held-back fetch comes due.
type fetchTimerMsg struct {
	id  int
	seq uint64
}

// TabOutMsg asks the host to move focus to the next (or previous) field.
type TabOutMsg struct {
	ID      int
	Reverse bool
}

// Model is a typeahead widget.
type Model struct {
	id    int
	props Props
	state WidgetState

	input   textinput.Model
	spinner spinner.Model

	dispatcher *limiter.Dispatcher
	log        logr.Logger

	sub     *Subscription
	mounted bool

	originX, originY int
	// offset is the first option row painted when MaxVisible caps the list.
	offset     int
	lastWidth  int
	lastHeight int
}

// New validates props and builds a widget. The widget starts unfocused
// with the dropdown closed and no selection.
func New(props Props) (*Model, error) {
	props = props.withDefaults()
	if err := props.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		id:    nextID(),
		props: props,
		log:   props.Logger.WithName("typeahead"),
	}
	m.log = m.log.WithValues("id", m.id)

	m.input = textinput.New()
	m.input.ShowSuggestions = true
	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.dispatcher = limiter.NewDispatcher(props.rateLimit(), m.now)

	value := Stringify(props.Value)
	m.applyInputProps()
	m.input.SetValue(value)

	dir := m.direction(value)
	m.state = WidgetState{
		Value:         value,
		Options:       props.Options,
		SelectedIndex: -1,
		HintEnabled:   props.Hint && dir != RTL,
		Direction:     dir,
		RateLimit:     props.rateLimit(),
		MinLength:     props.MinLength,
		ShowLoading:   props.ShowLoading,
		ShowEmpty:     props.ShowEmpty,
		Placeholder:   props.Placeholder,
	}
	// An empty starting value shows the placeholder rather than a hint.
	if value != "" {
		m.state.HintValue = m.hintFor(-1)
	}
	m.log.V(1).Info("created", "value", value, "options", m.state.OptionCount(), "rateLimit", m.state.RateLimit.Mode)
	return m, nil
}

// ID returns the unique widget id carried by its messages.
func (m *Model) ID() int { return m.id }

// Init starts the cursor blink and, when loading is shown, the spinner.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.props.ShowLoading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Mount attaches the widget to doc and issues the initial fetch when the
// starting value is long enough. Mounting twice is a no-op.
func (m *Model) Mount(doc *Document) tea.Cmd {
	if m.mounted {
		return nil
	}
	m.mounted = true
	if doc != nil {
		m.sub = doc.Register(m, m.onDocumentClick)
	}
	value := m.state.Value
	if value != "" && m.longEnough(value) {
		m.log.V(1).Info("initial fetch", "value", value)
		return m.dispatch(value)
	}
	return nil
}

// Unmount detaches the document listener and drops any held-back fetch.
func (m *Model) Unmount() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.mounted = false
	m.dispatcher.Cancel()
}

// Mounted reports whether Mount was called without a later Unmount.
func (m *Model) Mounted() bool { return m.mounted }

// Props returns the current props.
func (m *Model) Props() Props { return m.props }

// State returns a snapshot of the derived state.
func (m *Model) State() WidgetState { return m.state }

// Phase returns the visibility phase.
func (m *Model) Phase() Phase { return m.state.Phase() }

// Value returns the input text.
func (m *Model) Value() string { return m.state.Value }

// Focused reports whether the input has focus.
func (m *Model) Focused() bool { return m.state.Focused }

// SetProps replaces the props and re-derives state. Text edits made since
// the last sync are overwritten by props.Value, so hosts that track the
// value elsewhere should copy Value() into the new props first.
func (m *Model) SetProps(props Props) (tea.Cmd, error) {
	props = props.withDefaults()
	if err := props.Validate(); err != nil {
		m.log.Error(err, "rejected props")
		return nil, err
	}
	prev := m.props
	m.props = props
	m.log = props.Logger.WithName("typeahead").WithValues("id", m.id)

	var cmds []tea.Cmd
	if cfg := props.rateLimit(); cfg != m.dispatcher.Config() {
		m.log.V(1).Info("rate limit changed", "mode", cfg.Mode, "wait", cfg.Wait)
		m.dispatcher.Reset(cfg)
	}
	if props.ShowLoading && !prev.ShowLoading {
		cmds = append(cmds, m.spinner.Tick)
	}

	value := Stringify(props.Value)
	m.applyInputProps()
	if m.input.Value() != value {
		m.input.SetValue(value)
	}

	n := seqLen(props.Options)
	dir := m.direction(value)
	s := m.state
	s.Value = value
	s.Options = props.Options
	s.SelectedIndex = firstIndex(n)
	s.DropdownVisible = n > 0
	s.EmptyVisible = s.EmptyVisible && props.ShowEmpty && n == 0
	s.HintEnabled = props.Hint && dir != RTL
	s.Direction = dir
	s.RateLimit = props.rateLimit()
	s.MinLength = props.MinLength
	s.ShowLoading = props.ShowLoading
	s.ShowEmpty = props.ShowEmpty
	s.Placeholder = props.Placeholder
	m.state = s
	m.state.HintValue = m.hintFor(s.SelectedIndex)
	m.scrollToSelection()

	m.log.V(2).Info("props synced", "value", value, "options", n, "selected", s.SelectedIndex, "hint", m.state.HintValue)
	return tea.Batch(cmds...), nil
}

// Focus focuses the input and opens the dropdown, or the empty panel when
// there is nothing to show.
func (m *Model) Focus() tea.Cmd {
	n := m.state.OptionCount()
	m.state.Focused = true
	m.state.DropdownVisible = n > 0
	m.state.EmptyVisible = m.state.ShowEmpty && n == 0
	return m.input.Focus()
}

// Blur removes focus. The dropdown keeps its visibility.
func (m *Model) Blur() {
	m.input.Blur()
	m.state.Focused = false
	if m.props.OnBlur != nil {
		m.props.OnBlur(BlurEvent{ID: m.id, Value: m.state.Value})
	}
}

// Update handles keys, pastes and the widget's own timers.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case fetchTimerMsg:
		if msg.id != m.id {
			return m, nil
		}
		return m, m.apply(m.dispatcher.Expire(msg.seq))

	case spinner.TickMsg:
		if !m.props.ShowLoading || msg.ID != m.spinner.ID() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		if !m.state.Focused {
			return m, nil
		}
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.PasteMsg:
		if !m.state.Focused {
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.input.Value() != prev {
		cmds = append(cmds, m.handleTextChange(prev))
	}
	return m, tea.Batch(cmds...)
}

// SetOrigin records where the host paints the widget, for hit testing.
func (m *Model) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// Rect is a screen region.
type Rect struct {
	X, Y, W, H int
}

// Bounds returns the region painted by the last View or Render.
func (m *Model) Bounds() Rect {
	w := m.props.Width
	if w <= 0 {
		w = m.lastWidth
	}
	return Rect{X: m.originX, Y: m.originY, W: w, H: m.lastHeight}
}

// Contains reports whether the cell lies inside the widget.
func (m *Model) Contains(x, y int) bool {
	b := m.Bounds()
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

func (m *Model) now() time.Time {
	if m.props.Clock != nil {
		return m.props.Clock()
	}
	return time.Now()
}

func (m *Model) applyInputProps() {
	m.input.Prompt = m.props.Prompt
	m.input.CharLimit = 0
	if m.props.Width > 0 {
		w := m.props.Width - utf8.RuneCountInString(m.props.Prompt) - 1
		if m.props.ShowLoading {
			w -= 2
		}
		m.input.SetWidth(max(w, 1))
	}
}

func (m *Model) direction(value string) Direction {
	if src := m.props.StyleSource; src != nil {
		d, err := src.ComputedDirection()
		if err != nil || !d.IsValid() {
			m.log.V(1).Info("direction unavailable, assuming ltr", "error", err, "direction", d)
			return LTR
		}
		return d
	}
	return DetectDirection(value, m.props.Placeholder)
}

func (m *Model) longEnough(value string) bool {
	return utf8.RuneCountInString(value) >= m.state.MinLength
}

// hintFor computes the hint against the option at idx, or the first option
// when nothing is selected.
func (m *Model) hintFor(idx int) string {
	if !m.state.HintEnabled {
		return ""
	}
	if idx < 0 {
		idx = 0
	}
	opt, ok := seqAt(m.state.Options, idx)
	if !ok {
		return ""
	}
	return ComputeHint(m.state.Value, opt, m.props.DisplayKey)
}

// firstIndex is the selection derived for a fresh option list: the first
// row, or none when the list is empty.
func firstIndex(n int) int {
	if n == 0 {
		return -1
	}
	return 0
}

// wrapIndex keeps i inside [0, n).
func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}

func (m *Model) onDocumentClick(*ClickEvent) {
	m.state.DropdownVisible = false
	m.state.EmptyVisible = false
}
