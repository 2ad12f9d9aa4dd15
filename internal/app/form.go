package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/iotconsole/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// field is one editable form input. A field with options is a select that
// cycles with left/right; otherwise it is free text.
type field struct {
	key     string
	label   string
	value   string
	options []string
	// labels maps option values to display text; missing entries show the value.
	labels map[string]string
	hint   string
}

func (f *field) isSelect() bool { return f.options != nil }

// handleKey applies an editing key and reports whether the value changed.
func (f *field) handleKey(msg tea.KeyMsg) bool {
	if f.isSelect() {
		switch msg.Type {
		case tea.KeyLeft:
			return f.cycle(-1)
		case tea.KeyRight:
			return f.cycle(1)
		}
		return false
	}

	switch msg.Type {
	case tea.KeyRunes:
		f.value += string(msg.Runes)
		return true
	case tea.KeySpace:
		f.value += " "
		return true
	case tea.KeyBackspace:
		if f.value == "" {
			return false
		}
		runes := []rune(f.value)
		f.value = string(runes[:len(runes)-1])
		return true
	}
	return false
}

// cycle moves the select to the neighbouring option.
func (f *field) cycle(delta int) bool {
	n := len(f.options)
	if n == 0 {
		return false
	}
	idx := -1
	for i, o := range f.options {
		if o == f.value {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+delta)%n + n) % n
	}
	if f.options[idx] == f.value {
		return false
	}
	f.value = f.options[idx]
	return true
}

func (f *field) display() string {
	if f.isSelect() {
		if l, ok := f.labels[f.value]; ok {
			return l
		}
	}
	return f.value
}

// form is an ordered set of fields with a single focus.
type form struct {
	fields []field
	focus  int
}

func (f *form) focused() *field {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return &f.fields[f.focus]
}

func (f *form) next() {
	if len(f.fields) > 0 {
		f.focus = (f.focus + 1) % len(f.fields)
	}
}

func (f *form) prev() {
	if len(f.fields) > 0 {
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	}
}

func (f *form) field(key string) *field {
	for i := range f.fields {
		if f.fields[i].key == key {
			return &f.fields[i]
		}
	}
	return nil
}

func (f *form) get(key string) string {
	if fl := f.field(key); fl != nil {
		return fl.value
	}
	return ""
}

func (f *form) set(key, value string) {
	if fl := f.field(key); fl != nil {
		fl.value = value
	}
}

// view renders the fields one per line. active is false when another part of
// the page holds focus.
func (f form) view(active bool) string {
	labelW := 0
	for _, fl := range f.fields {
		labelW = max(labelW, lipgloss.Width(fl.label))
	}

	var lines []string
	for i, fl := range f.fields {
		label := ui.LabelStyle.Render(padRight(fl.label, labelW))
		value := fl.display()
		if value == "" && fl.hint != "" {
			value = ui.DimStyle.Render(fl.hint)
		}

		focused := active && i == f.focus
		switch {
		case focused && fl.isSelect():
			value = ui.FocusedFieldStyle.Render("◀ ") + ui.FocusedFieldStyle.Render(fl.display()) + ui.FocusedFieldStyle.Render(" ▶")
		case focused:
			value = ui.FocusedFieldStyle.Render(fl.value + "▌")
		default:
			value = ui.FieldStyle.Render(value)
		}

		marker := "  "
		if focused {
			marker = ui.SelectedStyle.Render("> ")
		}
		lines = append(lines, marker+label+"  "+value)
	}
	return strings.Join(lines, "\n")
}

// Helpers

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func footer(parts ...string) string {
	return strings.Join(parts, "  ")
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
