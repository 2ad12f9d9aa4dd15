package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// testOpts keeps debounce delays short so tick commands return quickly.
var testOpts = Options{RequestTimeout: time.Second, PreviewDelay: time.Millisecond}

func update[M tea.Model](m M, msg tea.Msg) (M, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(M), cmd
}

// collect runs cmd, expanding batches, and returns the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds every message produced by cmd back into m until no work remains.
func settle[M tea.Model](m M, cmd tea.Cmd) M {
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		var next tea.Cmd
		m, next = update(m, msg)
		queue = append(queue, collect(next)...)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// typeText sends s one rune at a time.
func typeText[M tea.Model](m M, s string) M {
	for _, r := range s {
		m, _ = update(m, runes(string(r)))
	}
	return m
}
