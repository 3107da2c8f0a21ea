package typeahead

import (
	"sync"

	tea "charm.land/bubbletea/v2"
)

// ClickEvent is a pointer click delivered through a Document.
type ClickEvent struct {
	X, Y   int
	Button tea.MouseButton

	target  Element
	stopped bool
}

// NewClickEvent creates a left click at the given cell.
func NewClickEvent(x, y int) *ClickEvent {
	return &ClickEvent{X: x, Y: y, Button: tea.MouseLeft}
}

// ClickFromMouse converts a terminal mouse click.
func ClickFromMouse(msg tea.MouseClickMsg) *ClickEvent {
	return &ClickEvent{X: msg.X, Y: msg.Y, Button: msg.Button}
}

// StopPropagation keeps the event from reaching document listeners.
func (e *ClickEvent) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *ClickEvent) Stopped() bool { return e.stopped }

// Target returns the element the click landed on, or nil.
func (e *ClickEvent) Target() Element { return e.target }

// Element is a region that can receive clicks.
type Element interface {
	Contains(x, y int) bool
	HandleClick(ev *ClickEvent)
}

// ClickListener observes every click that was not stopped by its target.
type ClickListener func(ev *ClickEvent)

// Document routes clicks to elements and then to document-level listeners.
type Document struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Subscription is a handle returned by Register. Close removes it.
type Subscription struct {
	doc  *Document
	el   Element
	fn   ClickListener
	once sync.Once
}

// Register adds an element and its document listener. Either may be nil.
func (d *Document) Register(el Element, fn ClickListener) *Subscription {
	s := &Subscription{doc: d, el: el, fn: fn}
	d.mu.Lock()
	d.subs = append(d.subs, s)
	d.mu.Unlock()
	return s
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		d := s.doc
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, cur := range d.subs {
			if cur == s {
				d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
				return
			}
		}
	})
}

// Active reports whether the subscription is still registered.
func (s *Subscription) Active() bool {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	for _, cur := range s.doc.subs {
		if cur == s {
			return true
		}
	}
	return false
}

// Listeners returns the number of registered subscriptions.
func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Click dispatches ev. The topmost element containing the point handles it
// first; if it does not stop propagation every listener sees the event.
func (d *Document) Click(ev *ClickEvent) {
	d.mu.Lock()
	subs := append([]*Subscription(nil), d.subs...)
	d.mu.Unlock()

	for i := len(subs) - 1; i >= 0; i-- {
		el := subs[i].el
		if el != nil && el.Contains(ev.X, ev.Y) {
			ev.target = el
			el.HandleClick(ev)
			break
		}
	}
	if ev.stopped {
		return
	}
	for _, s := range subs {
		if s.fn != nil {
			s.fn(ev)
		}
	}
}

// HandleMouse converts and dispatches a terminal click.
func (d *Document) HandleMouse(msg tea.MouseClickMsg) *ClickEvent {
	ev := ClickFromMouse(msg)
	d.Click(ev)
	return ev
}
