package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// MultiChoice renders one multiple-choice question. The cursor moves
// freely; enter reports the option under it as chosen without freezing
// the component, so an answer can be changed until the owning quiz is
// submitted. Once Reviewed is set the correct and chosen options are
// colored and keys are ignored.
type MultiChoice struct {
	Question     string
	Options      []string
	Cursor       int
	Chosen       int // -1 when nothing chosen
	Reviewed     bool
	CorrectIndex int // only shown when Reviewed; -1 when no option matches
}

// NewMultiChoice creates a selector with nothing chosen.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		Chosen:       -1,
		CorrectIndex: -1,
	}
}

// Update handles keyboard navigation. It reports true when the option
// under the cursor was chosen by this message.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	if m.Reviewed {
		return m, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", " ", "space":
		if len(m.Options) > 0 {
			m.Chosen = m.Cursor
			return m, true
		}
	default:
		// Letter shortcuts a, b, c... pick an option directly.
		if len(key) == 1 && key[0] >= 'a' && int(key[0]-'a') < len(m.Options) {
			m.Cursor = int(key[0] - 'a')
			m.Chosen = m.Cursor
			return m, true
		}
	}
	return m, false
}

// View renders the question and its options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Reviewed {
			prefix = "▸ "
		}
		mark := "○"
		if i == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %c)  %s", prefix, mark, 'A'+rune(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Reviewed && i == m.CorrectIndex:
			style = theme.Correct
		case m.Reviewed && i == m.Chosen:
			style = theme.Incorrect
		case m.Reviewed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
