// Package ui is the demo host for the typeahead widget: a column of
// labelled fields sharing one record source, a focus ring and a status bar.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/rtex/internal/config"
	"github.com/oakwood-commons/rtex/internal/source"
	"github.com/oakwood-commons/rtex/pkg/logger"
	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

const (
	headerRows        = 2
	fieldGap          = 1
	labelWidth        = 10
	defaultFieldWidth = 48
	minFieldWidth     = 16
	resultLimit       = 50
	debugRows         = 6
)

// Options configures the host.
type Options struct {
	Config config.Config
	// Source answers fetches; nil leaves every dropdown empty.
	Source *source.Index
	Theme  Theme
	Logger logr.Logger
	Title  string
	Width  int
	Height int
	// Clock feeds widget rate limiting; nil means time.Now.
	Clock func() time.Time
}

type eventKind int

const (
	evFetch eventKind = iota
	evChange
	evCommit
	evClick
	evBlur
)

// hostEvent is queued by widget callbacks and handled once the widget has
// returned from Update, so SetProps never runs re-entrantly.
type hostEvent struct {
	kind  eventKind
	field int
	value string
	index int
}

// resultsMsg carries a finished query back to the Update loop.
type resultsMsg struct {
	field   int
	seq     uint64
	query   string
	records []map[string]any
	err     error
}

type field struct {
	label  string
	w      *typeahead.Model
	seq    uint64
	cancel context.CancelFunc
}

// RootModel is the top-level bubbletea model.
type RootModel struct {
	cfg   config.Config
	src   *source.Index
	theme Theme
	log   logr.Logger
	title string

	ctx    context.Context
	stop   context.CancelFunc
	doc    *typeahead.Document
	fields []*field
	focus  int
	events []hostEvent
	status StatusModel

	width, height int
	quitting      bool
}

// NewRootModel builds one widget per configured instance.
func NewRootModel(opts Options) (*RootModel, error) {
	cfg := opts.Config
	if cfg.Instances < 1 {
		cfg.Instances = 1
	}
	mode, err := typeahead.ParseRateLimitBy(cfg.RateLimitBy)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "rtex"
	}

	ctx, stop := context.WithCancel(context.Background())
	m := &RootModel{
		cfg:    cfg,
		src:    opts.Source,
		theme:  opts.Theme,
		log:    log.WithName("host"),
		title:  title,
		ctx:    ctx,
		stop:   stop,
		doc:    typeahead.NewDocument(),
		width:  opts.Width,
		height: opts.Height,
	}
	m.status.Width = opts.Width

	for i := range cfg.Instances {
		label := fmt.Sprintf("field %d", i+1)
		p := typeahead.DefaultProps()
		p.DisplayKey = cfg.DisplayKey
		p.OptionTemplate = typeahead.DisplayTemplate(cfg.DisplayKey)
		p.Hint = cfg.Hint
		p.MinLength = cfg.MinLength
		p.ShowEmpty = cfg.ShowEmpty
		p.Placeholder = cfg.Placeholder
		p.MaxVisible = cfg.MaxVisible
		p.RateLimitBy = mode
		p.RateLimitWait = cfg.RateLimitWait
		p.ClassName = fmt.Sprintf("field-%d", i+1)
		p.Width = m.fieldWidth()
		p.Styles = m.theme.Widget
		p.Logger = logger.ForWidget(&log, label)
		p.Clock = opts.Clock
		m.bindCallbacks(&p, i)

		w, err := typeahead.New(p)
		if err != nil {
			stop()
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		m.fields = append(m.fields, &field{label: label, w: w})
	}
	m.refreshStatus()
	return m, nil
}

func (m *RootModel) bindCallbacks(p *typeahead.Props, i int) {
	queue := func(ev hostEvent) {
		ev.field = i
		m.events = append(m.events, ev)
	}
	p.OnFetchData = func(v string) { queue(hostEvent{kind: evFetch, value: v}) }
	p.OnChange = func(ev typeahead.ChangeEvent) { queue(hostEvent{kind: evChange, value: ev.Value}) }
	p.OnBlur = func(ev typeahead.BlurEvent) { queue(hostEvent{kind: evBlur, value: ev.Value}) }
	p.OnOptionChange = func(_ typeahead.Option, idx int) { queue(hostEvent{kind: evCommit, index: idx}) }
	p.OnOptionClick = func(_ typeahead.Option, idx int) { queue(hostEvent{kind: evClick, index: idx}) }
}

// Init mounts every widget and focuses the first.
func (m *RootModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, f := range m.fields {
		cmds = append(cmds, f.w.Init(), f.w.Mount(m.doc))
	}
	if len(m.fields) > 0 {
		cmds = append(cmds, m.fields[0].w.Focus())
	}
	cmds = append(cmds, m.drain())
	m.refreshStatus()
	return tea.Batch(cmds...)
}

// Update routes keys to the focused widget, clicks through the document,
// and everything else to every widget.
func (m *RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.status.Width = msg.Width
		for i := range m.fields {
			cmds = append(cmds, m.sync(i, func(p *typeahead.Props) { p.Width = m.fieldWidth() }))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quit()
			return m, tea.Quit
		case "ctrl+d":
			m.status.DebugShown = !m.status.DebugShown
			return m, nil
		}
		if f := m.focused(); f != nil {
			var cmd tea.Cmd
			f.w, cmd = f.w.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.PasteMsg:
		if f := m.focused(); f != nil {
			var cmd tea.Cmd
			f.w, cmd = f.w.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseClickMsg:
		ev := m.doc.HandleMouse(msg)
		m.status.Record("click %d,%d stopped=%v", ev.X, ev.Y, ev.Stopped())
		if target := ev.Target(); target != nil {
			for i, f := range m.fields {
				if typeahead.Element(f.w) == target {
					cmds = append(cmds, m.focusField(i))
					break
				}
			}
		}

	case typeahead.TabOutMsg:
		if i := m.indexOf(msg.ID); i >= 0 && len(m.fields) > 1 {
			step := 1
			if msg.Reverse {
				step = -1
			}
			cmds = append(cmds, m.focusField((i+step+len(m.fields))%len(m.fields)))
		}

	case resultsMsg:
		cmds = append(cmds, m.applyResults(msg))

	default:
		for _, f := range m.fields {
			var cmd tea.Cmd
			f.w, cmd = f.w.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.drain())
	m.refreshStatus()
	return m, tea.Batch(cmds...)
}

// View lays the fields out top to bottom and pins the status bar to the
// last rows of the screen.
func (m *RootModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}

func (m *RootModel) render() string {
	th := m.theme

	header := th.Title.Render(m.title)
	if m.src != nil {
		header += th.Help.Render(fmt.Sprintf("  %d records", m.src.Len()))
	}
	header += th.Help.Render("  tab/shift+tab: field  ↑/↓: choose  enter: pick  esc: close  ctrl+d: debug  ctrl+c: quit")

	if m.width > 0 {
		header = lipgloss.NewStyle().MaxWidth(m.width).Render(header)
	}
	rows := []string{header, ""}
	y := headerRows
	for i, f := range m.fields {
		style := th.Label
		if i == m.focus {
			style = th.LabelFocused
		}
		label := style.Width(labelWidth).Render(f.label)
		f.w.SetOrigin(labelWidth, y)
		block := lipgloss.JoinHorizontal(lipgloss.Top, label, f.w.View())
		rows = append(rows, block)
		y += lipgloss.Height(block)
		if i < len(m.fields)-1 {
			for range fieldGap {
				rows = append(rows, "")
			}
			y += fieldGap
		}
	}

	body := strings.Join(rows, "\n")
	bar := m.status.View(th, debugRows)
	if pad := m.height - lipgloss.Height(body) - lipgloss.Height(bar); pad > 0 {
		body += strings.Repeat("\n", pad)
	}

	return body + "\n" + bar
}

// Close cancels in-flight queries and detaches every widget.
func (m *RootModel) Close() {
	m.quit()
}

func (m *RootModel) quit() {
	if m.quitting {
		return
	}
	m.quitting = true
	for _, f := range m.fields {
		if f.cancel != nil {
			f.cancel()
		}
		f.w.Unmount()
	}
	m.stop()
}

// Widgets exposes the hosted widgets in display order.
func (m *RootModel) Widgets() []*typeahead.Model {
	out := make([]*typeahead.Model, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.w
	}
	return out
}

// Focus returns the index of the focused field.
func (m *RootModel) Focus() int { return m.focus }

// Status returns the status bar model.
func (m *RootModel) Status() StatusModel { return m.status }

// Document returns the click document shared by the widgets.
func (m *RootModel) Document() *typeahead.Document { return m.doc }

func (m *RootModel) focused() *field {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return nil
	}
	return m.fields[m.focus]
}

func (m *RootModel) indexOf(id int) int {
	for i, f := range m.fields {
		if f.w.ID() == id {
			return i
		}
	}
	return -1
}

func (m *RootModel) focusField(i int) tea.Cmd {
	if i == m.focus {
		return nil
	}
	if f := m.focused(); f != nil {
		f.w.Blur()
	}
	m.focus = i
	m.log.V(1).Info("focus", "field", m.fields[i].label)
	return m.fields[i].w.Focus()
}

func (m *RootModel) fieldWidth() int {
	if m.width <= 0 {
		return defaultFieldWidth
	}
	return max(minFieldWidth, min(defaultFieldWidth, m.width-labelWidth-1))
}

// sync pushes new props derived from the widget's current ones. The live
// text is carried over so a resync never reverts what the user typed.
func (m *RootModel) sync(i int, mutate func(*typeahead.Props)) tea.Cmd {
	f := m.fields[i]
	p := f.w.Props()
	p.Value = f.w.Value()
	mutate(&p)
	cmd, err := f.w.SetProps(p)
	if err != nil {
		m.log.Error(err, "sync failed", "field", f.label)
		m.status.SetMessage(err.Error(), true)
		return nil
	}
	return cmd
}

func (m *RootModel) refreshStatus() {
	m.status.Fields = m.status.Fields[:0]
	for i, f := range m.fields {
		st := f.w.State()
		m.status.Fields = append(m.status.Fields, FieldStatus{
			Label:    f.label,
			Phase:    st.Phase(),
			Options:  st.OptionCount(),
			Selected: st.SelectedIndex,
			Loading:  st.ShowLoading,
			Focused:  i == m.focus,
		})
	}
}
