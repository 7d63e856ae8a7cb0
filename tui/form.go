package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldDef struct {
	label       string
	placeholder string
	secret      bool
	limit       int
}

// form is a vertical stack of text inputs with one focused field.
type form struct {
	title  string
	labels []string
	fields []textinput.Model
	focus  int
	err    string
}

func newForm(title string, defs ...fieldDef) form {
	f := form{title: title}
	for _, def := range defs {
		input := textinput.New()
		input.Prompt = "> "
		input.Placeholder = def.placeholder
		if def.limit > 0 {
			input.CharLimit = def.limit
		}
		if def.secret {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		f.labels = append(f.labels, def.label)
		f.fields = append(f.fields, input)
	}
	return f
}

// Update routes a key to the focused field. submitted is true when enter is
// pressed on the last field.
func (f *form) Update(msg tea.KeyMsg) (cmd tea.Cmd, submitted bool) {
	switch msg.String() {
	case "tab", "down":
		return f.focusField(f.focus + 1), false
	case "shift+tab", "up":
		return f.focusField(f.focus - 1), false
	case "enter":
		if f.focus == len(f.fields)-1 {
			return nil, true
		}
		return f.focusField(f.focus + 1), false
	}
	if len(f.fields) == 0 {
		return nil, false
	}
	f.err = ""
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd, false
}

// Forward passes non-key messages (cursor blink) to the focused field.
func (f *form) Forward(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

func (f *form) SetCursorMode(mode cursor.Mode) {
	for i := range f.fields {
		f.fields[i].Cursor.SetMode(mode)
	}
}

func (f *form) Focus() tea.Cmd {
	return f.focusField(f.focus)
}

func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	for j := range f.fields {
		f.fields[j].Blur()
	}
	return f.fields[f.focus].Focus()
}

func (f form) Value(i int) string {
	return strings.TrimSpace(f.fields[i].Value())
}

// Raw returns the field as typed; passwords keep their spaces.
func (f form) Raw(i int) string {
	return f.fields[i].Value()
}

func (f *form) SetValue(i int, value string) {
	f.fields[i].SetValue(value)
}

func (f *form) Reset() {
	for i := range f.fields {
		f.fields[i].Reset()
	}
	f.err = ""
	f.focus = 0
}

func (f form) View(width int) string {
	labelStyle := lipgloss.NewStyle().Bold(true)
	focusedLabel := labelStyle.Foreground(accentColor)

	rows := []string{titleStyle.Render(f.title), ""}
	for i, input := range f.fields {
		style := labelStyle
		if i == f.focus {
			style = focusedLabel
		}
		rows = append(rows, style.Render(f.labels[i]), input.View(), "")
	}
	if f.err != "" {
		rows = append(rows, errorText(f.err), "")
	}
	return panel(strings.Join(rows, "\n"), width)
}
