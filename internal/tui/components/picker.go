package components

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rendis/subregiones/internal/tui/styles"
)

// AnyLabel is the first entry of every picker and selects no constraint.
const AnyLabel = "Todos"

// Picker is a single-choice option list, the terminal stand-in for a
// <select> element. Index 0 is always AnyLabel.
type Picker struct {
	name      string
	options   []string
	cursor    int
	focused   bool
	height    int
	search    textinput.Model
	searching bool
}

func NewPicker(name string, height int) Picker {
	search := textinput.New()
	search.Placeholder = "buscar..."
	search.CharLimit = 40
	search.Prompt = "/"
	return Picker{
		name:   name,
		height: height,
		search: search,
	}
}

// SetOptions replaces the options and resets the selection to AnyLabel.
func (p *Picker) SetOptions(options []string) {
	p.options = options
	p.cursor = 0
}

func (p Picker) Options() []string { return p.options }

func (p Picker) Name() string { return p.name }

// Value returns the selected option, or "" when AnyLabel is selected.
func (p Picker) Value() string {
	if p.cursor == 0 || p.cursor > len(p.options) {
		return ""
	}
	return p.options[p.cursor-1]
}

func (p *Picker) Focus() { p.focused = true }

func (p *Picker) Blur() {
	p.focused = false
	p.stopSearch()
}

func (p Picker) Focused() bool { return p.focused }

func (p Picker) Searching() bool { return p.searching }

func (p *Picker) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	p.height = h
}

func (p *Picker) stopSearch() {
	p.searching = false
	p.search.Blur()
	p.search.SetValue("")
}

// Update handles keys while focused. changed reports whether the selected
// value moved.
func (p Picker) Update(msg tea.Msg) (Picker, bool, tea.Cmd) {
	if !p.focused {
		return p, false, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.searching {
			var cmd tea.Cmd
			p.search, cmd = p.search.Update(msg)
			return p, false, cmd
		}
		return p, false, nil
	}

	before := p.cursor
	if p.searching {
		switch key.String() {
		case "esc", "enter":
			p.stopSearch()
			return p, false, nil
		case "up", "down":
			p.move(key.String())
			return p, p.cursor != before, nil
		}
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		if idx := p.Find(p.search.Value()); idx >= 0 {
			p.cursor = idx
		}
		return p, p.cursor != before, cmd
	}

	switch key.String() {
	case "up", "k", "down", "j", "home", "g", "end", "G", "pgup", "pgdown":
		p.move(key.String())
	case "/":
		p.searching = true
		p.search.SetValue("")
		return p, false, p.search.Focus()
	}
	return p, p.cursor != before, nil
}

func (p *Picker) move(key string) {
	last := len(p.options)
	switch key {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < last {
			p.cursor++
		}
	case "home", "g":
		p.cursor = 0
	case "end", "G":
		p.cursor = last
	case "pgup":
		p.cursor = max(0, p.cursor-p.height)
	case "pgdown":
		p.cursor = min(last, p.cursor+p.height)
	}
}

// Find returns the picker index of the first option containing query,
// ignoring case and accents, or -1.
func (p Picker) Find(query string) int {
	q := Normalize(strings.TrimSpace(query))
	if q == "" {
		return -1
	}
	for i, opt := range p.options {
		if strings.Contains(Normalize(opt), q) {
			return i + 1
		}
	}
	return -1
}

// Normalize removes accents/diacritics and lowercases text for fuzzy matching.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return result
}

func (p Picker) View(width int) string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted).Bold(true)
	if p.focused {
		labelStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s (%d)", p.name, len(p.options))))
	b.WriteString("\n")

	total := len(p.options) + 1
	start := 0
	if p.cursor >= p.height {
		start = p.cursor - p.height + 1
	}
	end := min(total, start+p.height)

	for i := start; i < end; i++ {
		label := AnyLabel
		if i > 0 {
			label = p.options[i-1]
		}
		cursor := "  "
		style := styles.InactiveItem
		if i == p.cursor {
			cursor = "> "
			if p.focused {
				style = styles.ActiveItem
			} else {
				style = styles.Value
			}
		}
		b.WriteString(cursor + style.Render(truncate(label, width-2)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if p.searching {
		b.WriteString("\n")
		b.WriteString(p.search.View())
	}

	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
