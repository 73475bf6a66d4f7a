package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoiceCursorAndChoose(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"a", "b", "c"})

	m, chosen := m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.False(t, chosen)
	assert.Equal(t, 1, m.Cursor)
	assert.Equal(t, -1, m.Chosen)

	m, chosen = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, chosen)
	assert.Equal(t, 1, m.Chosen)

	m, chosen = m.Update(key('c'))
	assert.True(t, chosen)
	assert.Equal(t, 2, m.Chosen, "letter shortcut changes the answer")
}

func TestMultiChoiceIgnoresKeysWhenReviewed(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"a", "b"})
	m.Reviewed = true

	m, chosen := m.Update(key('b'))

	assert.False(t, chosen)
	assert.Equal(t, -1, m.Chosen)
}

func TestMultiChoiceShortcutOutOfRange(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"a", "b"})

	m, chosen := m.Update(key('z'))

	assert.False(t, chosen)
	assert.Equal(t, -1, m.Chosen)
}

func TestMenuSkipsDisabledItems(t *testing.T) {
	var ran string
	item := func(label string, disabled bool) MenuItem {
		return MenuItem{Label: label, Disabled: disabled, Action: func() tea.Cmd {
			ran = label
			return nil
		}}
	}
	m := NewMenu([]MenuItem{item("first", true), item("second", false), item("third", true), item("fourth", false)})
	assert.Equal(t, 1, m.Selected, "starts on the first enabled item")

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "fourth", ran)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, m.Selected)
}

func TestLoaderOnlyRendersWhileActive(t *testing.T) {
	l := NewLoader()
	assert.Empty(t, l.View())

	cmd := l.Start("Loading tracks...")
	assert.NotNil(t, cmd)
	assert.Contains(t, l.View(), "Loading tracks...")

	l.Stop()
	assert.Empty(t, l.View())
}
