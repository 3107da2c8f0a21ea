package typeahead

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classes(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = strings.Fields(n.Class)[0]
	}
	return out
}

func TestRenderClosedTree(t *testing.T) {
	m := newTestModel(t, func(p *Props) {
		p.Options = fruitRecords()
		p.ClassName = "fruit"
		p.Placeholder = "Search"
	})
	root := m.Render()
	require.True(t, root.HasClass(ClassContainer))
	assert.True(t, root.HasClass("fruit"))

	input := root.Find(ClassInput)
	require.NotNil(t, input)
	assert.True(t, input.HasClass("fruit"))
	assert.Equal(t, "Search", input.Attr("placeholder"))
	assert.Equal(t, "ltr", input.Attr("dir"))

	list := root.Find(ClassOptionContainer)
	require.NotNil(t, list)
	assert.False(t, list.HasClass(ClassIsOpen))
	assert.True(t, list.Hidden)
	assert.Len(t, root.FindAll(ClassOption), 3)
	assert.Nil(t, root.Find(ClassSpinner))
	assert.Nil(t, root.Find(ClassEmpty))
}

func TestRenderOpenTreeMarksSelection(t *testing.T) {
	m := newTestModel(t, withOptions(fruitRecords()))
	m.Focus()
	press(m, key(tea.KeyDown))
	root := m.Render()

	list := root.Find(ClassOptionContainer)
	require.NotNil(t, list)
	assert.True(t, list.HasClass(ClassIsOpen))
	rows := root.FindAll(ClassOption)
	require.Len(t, rows, 3)
	assert.Equal(t, "true", rows[0].Attr("selected"))
	assert.Equal(t, "false", rows[1].Attr("selected"))
	assert.Equal(t, "2", rows[2].Attr("index"))
	assert.Contains(t, rows[1].Content, "apricot")
}

func TestRenderHintClearsPlaceholder(t *testing.T) {
	m := newTestModel(t, func(p *Props) {
		p.Hint = true
		p.Value = "ap"
		p.Placeholder = "Search"
		p.Options = fruitRecords()
	})
	root := m.Render()
	assert.Equal(t, "apple", root.Find(ClassHint).Attr("value"))
	assert.Empty(t, root.Find(ClassInput).Attr("placeholder"))
}

func TestRenderSpinnerOrderFollowsDirection(t *testing.T) {
	m := newTestModel(t, func(p *Props) { p.ShowLoading = true })
	row := m.Render().Find(ClassInputContainer)
	require.NotNil(t, row)
	assert.Equal(t, []string{ClassHint, ClassInput, ClassSpinner}, classes(row.Children))

	m = newTestModel(t, func(p *Props) {
		p.ShowLoading = true
		p.StyleSource = StaticDirection(RTL)
	})
	row = m.Render().Find(ClassInputContainer)
	assert.Equal(t, []string{ClassSpinner, ClassHint, ClassInput}, classes(row.Children))
}

func TestRenderCustomLoadingTemplate(t *testing.T) {
	m := newTestModel(t, func(p *Props) {
		p.ShowLoading = true
		p.LoadingTemplate = RenderFunc(func(ctx RenderContext) string { return "[" + ctx.ClassName + "]" })
	})
	spin := m.Render().Find(ClassSpinner)
	require.NotNil(t, spin)
	assert.Contains(t, spin.Content, "[rtex-spinner]")
}

func TestRenderEmptyPanel(t *testing.T) {
	m := newTestModel(t, func(p *Props) { p.ShowEmpty = true })
	m.Focus()
	root := m.Render()
	empty := root.Find(ClassEmpty)
	require.NotNil(t, empty)
	assert.True(t, empty.HasClass(ClassIsOpen))
	assert.Contains(t, m.View(), "No items")
}

func TestRenderTemplateContext(t *testing.T) {
	var seen []RenderContext
	m := newTestModel(t, func(p *Props) {
		p.Options = fruitRecords()
		p.OptionTemplate = RenderFunc(func(ctx RenderContext) string {
			seen = append(seen, ctx)
			return fmt.Sprint(ctx.Index)
		})
	})
	m.Focus()
	typeText(m, "a")
	seen = nil
	m.View()
	require.Len(t, seen, 3)
	assert.Equal(t, "a", seen[1].Value)
	assert.Equal(t, 1, seen[1].Index)
	assert.Equal(t, 30, seen[1].Width)
	assert.Equal(t, fruitRecords()[1], seen[1].Data)
}

func TestMaxVisibleScrollsWithSelection(t *testing.T) {
	opts := make(Records, 10)
	for i := range opts {
		opts[i] = map[string]any{"title": fmt.Sprintf("item-%d", i)}
	}
	m := newTestModel(t, func(p *Props) {
		p.Options = opts
		p.MaxVisible = 3
	})
	m.Focus()
	for range 5 {
		press(m, key(tea.KeyDown))
	}
	require.Equal(t, 4, m.State().SelectedIndex)

	var painted []string
	for _, row := range m.Render().FindAll(ClassOption) {
		if !row.Hidden {
			painted = append(painted, row.Attr("index"))
		}
	}
	assert.Equal(t, []string{"2", "3", "4"}, painted)
	assert.Equal(t, 4, m.Bounds().H)

	// Row 1 is the first painted option.
	m.HandleClick(NewClickEvent(1, 1))
	assert.Equal(t, "item-2", m.Value())

	m.Focus()
	press(m, key(tea.KeyUp))
	press(m, key(tea.KeyUp))
	press(m, key(tea.KeyUp))
	assert.Equal(t, 9, m.State().SelectedIndex, "wraps past the top")
	m.View()
	first, last := m.window()
	assert.Equal(t, 7, first)
	assert.Equal(t, 10, last)
}

func TestNodeHelpers(t *testing.T) {
	leaf := &Node{Class: "a b", Content: "x"}
	hidden := &Node{Class: "b", Content: "y", Hidden: true}
	root := &Node{Class: "root", Children: []*Node{leaf, hidden}, Inline: true}
	assert.Same(t, leaf, root.Find("b"))
	assert.Len(t, root.FindAll("b"), 2)
	assert.Nil(t, root.Find("c"))
	assert.Empty(t, leaf.Attr("k"))
	assert.Equal(t, "x", root.String())
}
