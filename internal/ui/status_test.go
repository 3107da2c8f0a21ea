package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

func TestFieldStatusString(t *testing.T) {
	tests := []struct {
		name string
		in   FieldStatus
		want string
	}{
		{"closed", FieldStatus{Label: "a", Selected: -1}, "a:closed"},
		{"open", FieldStatus{Label: "a", Phase: typeahead.PhaseOpen, Options: 3, Selected: 1}, "a:open 2/3"},
		{"empty loading", FieldStatus{Label: "a", Phase: typeahead.PhaseEmptyOpen, Loading: true}, "a:empty …"},
		{"focused", FieldStatus{Label: "a", Focused: true}, "[a:closed]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestStatusRecordKeepsNewest(t *testing.T) {
	var m StatusModel
	for i := range debugLimit + 5 {
		m.Record("event %d", i)
	}
	ev := m.Events()
	require.Len(t, ev, debugLimit)
	assert.Equal(t, "event 5", ev[0])
	assert.Equal(t, fmt.Sprintf("event %d", debugLimit+4), ev[len(ev)-1])
}

func TestStatusViewFitsWidth(t *testing.T) {
	m := StatusModel{Width: 20, Fields: []FieldStatus{{Label: "field 1"}, {Label: "field 2"}}}
	m.SetMessage("a long message that overflows", false)
	out := m.View(PlainTheme(), 3)
	assert.Equal(t, 20, runewidth.StringWidth(out))
	assert.True(t, strings.HasSuffix(out, "…"))

	m.DebugShown = true
	m.Record("one")
	m.Record("two")
	lines := strings.Split(m.View(PlainTheme(), 1), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "DBG two")
}
