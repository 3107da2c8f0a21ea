package typeahead

import (
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
)

// Class markers carried by rendered nodes. Hosts and tests query them.
const (
	ClassContainer       = "rtex-container"
	ClassInputContainer  = "rtex-input-container"
	ClassHint            = "rtex-hint"
	ClassInput           = "rtex-input"
	ClassSpinner         = "rtex-spinner"
	ClassOptionContainer = "rtex-option-container"
	ClassIsOpen          = "rtex-is-open"
	ClassOption          = "rtex-option"
	ClassEmpty           = "rtex-empty"
)

// RenderContext is handed to templates.
type RenderContext struct {
	// Data is the option being rendered; nil for loading and empty templates.
	Data Option
	// Index is the option position, or -1.
	Index int
	// Value is the current input text.
	Value     string
	Selected  bool
	Direction Direction
	// Width is the cell width available to the template, 0 when unbounded.
	Width     int
	Height    int
	ClassName string
	// Frame is the current spinner frame for loading templates.
	Frame string
}

// Renderer turns a context into painted text.
type Renderer interface {
	Render(ctx RenderContext) string
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx RenderContext) string

func (f RenderFunc) Render(ctx RenderContext) string { return f(ctx) }

// DisplayTemplate renders an option's display field, or nothing.
func DisplayTemplate(displayKey string) Renderer {
	return RenderFunc(func(ctx RenderContext) string {
		s, _ := DisplayValue(ctx.Data, displayKey)
		return s
	})
}

// DefaultLoadingTemplate paints the spinner frame.
var DefaultLoadingTemplate Renderer = RenderFunc(func(ctx RenderContext) string {
	return ctx.Frame
})

// DefaultEmptyTemplate paints a centred "No items" label.
var DefaultEmptyTemplate Renderer = RenderFunc(func(ctx RenderContext) string {
	st := lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	if ctx.Width > 0 {
		st = st.Width(ctx.Width)
	}
	return st.Render("No items")
})

// Node is one element of the rendered tree. Hidden nodes stay in the tree
// but paint nothing.
type Node struct {
	Class    string
	Attrs    map[string]string
	Content  string
	Children []*Node
	// Inline joins children horizontally instead of stacking them.
	Inline bool
	Hidden bool
}

// HasClass reports whether the space-separated class list contains c.
func (n *Node) HasClass(c string) bool {
	return slices.Contains(strings.Fields(n.Class), c)
}

// Attr returns an attribute or "".
func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// Find returns the first node in depth-first order carrying class c.
func (n *Node) Find(c string) *Node {
	if n.HasClass(c) {
		return n
	}
	for _, ch := range n.Children {
		if f := ch.Find(c); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every node carrying class c in depth-first order.
func (n *Node) FindAll(c string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.HasClass(c) {
			out = append(out, cur)
		}
		for _, ch := range cur.Children {
			walk(ch)
		}
	}
	walk(n)
	return out
}

// String paints the node.
func (n *Node) String() string {
	if n.Hidden {
		return ""
	}
	if len(n.Children) == 0 {
		return n.Content
	}
	parts := make([]string, 0, len(n.Children))
	for _, ch := range n.Children {
		if s := ch.String(); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return n.Content
	}
	if n.Inline {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func classList(classes ...string) string {
	out := classes[:0:0]
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}
