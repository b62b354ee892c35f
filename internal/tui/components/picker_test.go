package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_StartsOnAny(t *testing.T) {
	p := NewPicker("departamento", 5)
	p.SetOptions([]string{"05", "08"})
	assert.Equal(t, "", p.Value())
}

func TestPicker_MoveChangesValue(t *testing.T) {
	p := NewPicker("departamento", 5)
	p.SetOptions([]string{"05", "08"})
	p.Focus()

	var changed bool
	p, changed, _ = p.Update(key("down"))
	assert.True(t, changed)
	assert.Equal(t, "05", p.Value())

	p, _, _ = p.Update(key("j"))
	assert.Equal(t, "08", p.Value())

	p, changed, _ = p.Update(key("down"))
	assert.False(t, changed, "cursor stays on the last option")

	p, _, _ = p.Update(key("g"))
	assert.Equal(t, "", p.Value())
}

func TestPicker_IgnoresKeysWhenBlurred(t *testing.T) {
	p := NewPicker("departamento", 5)
	p.SetOptions([]string{"05"})

	p, changed, _ := p.Update(key("down"))
	assert.False(t, changed)
	assert.Equal(t, "", p.Value())
}

func TestPicker_SetOptionsResetsSelection(t *testing.T) {
	p := NewPicker("subregion", 5)
	p.SetOptions([]string{"Norte"})
	p.Focus()
	p, _, _ = p.Update(key("down"))
	assert.Equal(t, "Norte", p.Value())

	p.SetOptions([]string{"Sur"})
	assert.Equal(t, "", p.Value())
}

func TestPicker_SearchJumpsIgnoringAccents(t *testing.T) {
	p := NewPicker("subregion", 5)
	p.SetOptions([]string{"Norte", "Urabá", "Magdalena Medio"})
	p.Focus()

	p, _, _ = p.Update(key("/"))
	assert.True(t, p.Searching())

	var changed bool
	for _, r := range "uraba" {
		var c bool
		p, c, _ = p.Update(key(string(r)))
		changed = changed || c
	}
	assert.True(t, changed)
	assert.Equal(t, "Urabá", p.Value(), "search moves the cursor but the value keeps its accents")

	p, _, _ = p.Update(key("enter"))
	assert.False(t, p.Searching())
	assert.Equal(t, "Urabá", p.Value())
}

func TestPicker_Find(t *testing.T) {
	p := NewPicker("subregion", 5)
	p.SetOptions([]string{"Norte", "Bajo Cauca", "Nordeste"})

	assert.Equal(t, 2, p.Find("CAUCA"))
	assert.Equal(t, 1, p.Find("nor"))
	assert.Equal(t, -1, p.Find("sur"))
	assert.Equal(t, -1, p.Find("  "))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "bogota", Normalize("Bogotá"))
	assert.Equal(t, "narino", Normalize("NARIÑO"))
}

func TestPicker_ViewWindowFollowsCursor(t *testing.T) {
	p := NewPicker("subregion", 2)
	p.SetOptions([]string{"A", "B", "C", "D"})
	p.Focus()
	for i := 0; i < 4; i++ {
		p, _, _ = p.Update(key("down"))
	}
	v := p.View(20)
	assert.Contains(t, v, "D")
	assert.NotContains(t, v, AnyLabel)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Magd…", truncate("Magdalena", 5))
	assert.Equal(t, "Urabá", truncate("Urabá", 5))
	assert.Equal(t, "", truncate("x", 0))
}
