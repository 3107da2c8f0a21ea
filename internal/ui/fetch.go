package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

// drain handles the callbacks queued during the last widget update.
func (m *RootModel) drain() tea.Cmd {
	events := m.events
	m.events = nil

	var cmds []tea.Cmd
	for _, ev := range events {
		f := m.fields[ev.field]
		switch ev.kind {
		case evFetch:
			m.status.Record("%s fetch %q", f.label, ev.value)
			cmds = append(cmds, m.startFetch(ev.field, ev.value))
		case evChange:
			m.status.Record("%s change %q", f.label, ev.value)
			m.cancelFetch(f)
			f.seq++
			cmds = append(cmds, m.sync(ev.field, func(p *typeahead.Props) {
				p.Options = typeahead.Slice(nil)
				p.ShowLoading = false
			}))
		case evCommit, evClick:
			how := "enter"
			if ev.kind == evClick {
				how = "click"
			}
			m.status.Record("%s %s #%d", f.label, how, ev.index)
			m.status.SetMessage(fmt.Sprintf("%s = %q", f.label, f.w.Value()), false)
			m.log.Info("option chosen", "field", f.label, "index", ev.index, "value", f.w.Value(), "via", how)
		case evBlur:
			m.status.Record("%s blur %q", f.label, ev.value)
		}
	}
	return tea.Batch(cmds...)
}

// startFetch queries the source off the Update loop. Only the newest query
// per field is applied; older ones are cancelled.
func (m *RootModel) startFetch(i int, query string) tea.Cmd {
	f := m.fields[i]
	m.cancelFetch(f)
	f.seq++
	ctx, cancel := context.WithCancel(m.ctx)
	f.cancel = cancel

	var cmds []tea.Cmd
	latency := time.Duration(m.cfg.FetchLatency)
	if latency > 0 {
		cmds = append(cmds, m.sync(i, func(p *typeahead.Props) { p.ShowLoading = true }))
	}

	seq, src := f.seq, m.src
	cmds = append(cmds, func() tea.Msg {
		res := resultsMsg{field: i, seq: seq, query: query}
		if latency > 0 {
			t := time.NewTimer(latency)
			defer t.Stop()
			select {
			case <-ctx.Done():
				res.err = ctx.Err()
				return res
			case <-t.C:
			}
		}
		if src != nil {
			res.records, res.err = src.Query(ctx, query, resultLimit)
		}
		return res
	})
	return tea.Batch(cmds...)
}

func (m *RootModel) cancelFetch(f *field) {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (m *RootModel) applyResults(msg resultsMsg) tea.Cmd {
	if msg.field < 0 || msg.field >= len(m.fields) {
		return nil
	}
	f := m.fields[msg.field]
	if msg.seq != f.seq {
		m.status.Record("%s stale %q", f.label, msg.query)
		return nil
	}
	m.cancelFetch(f)

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		m.log.Error(msg.err, "query failed", "field", f.label, "query", msg.query)
		m.status.SetMessage(msg.err.Error(), true)
		return m.sync(msg.field, func(p *typeahead.Props) { p.ShowLoading = false })
	}

	m.status.Record("%s %d results for %q", f.label, len(msg.records), msg.query)
	m.status.SetMessage("", false)
	return m.sync(msg.field, func(p *typeahead.Props) {
		p.Options = typeahead.Records(msg.records)
		p.ShowLoading = false
	})
}
