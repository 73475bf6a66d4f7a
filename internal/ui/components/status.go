package components

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// Loader shows a spinner next to a message while a request is pending.
type Loader struct {
	spin    spinner.Model
	Message string
	Active  bool
}

// NewLoader creates an inactive loader.
func NewLoader() Loader {
	return Loader{
		spin: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

// Start activates the loader and returns the first tick.
func (l *Loader) Start(message string) tea.Cmd {
	l.Message = message
	l.Active = true
	return l.spin.Tick
}

// Stop deactivates the loader.
func (l *Loader) Stop() {
	l.Active = false
}

// Update advances the spinner while active.
func (l Loader) Update(msg tea.Msg) (Loader, tea.Cmd) {
	if !l.Active {
		return l, nil
	}
	if _, ok := msg.(spinner.TickMsg); !ok {
		return l, nil
	}
	var cmd tea.Cmd
	l.spin, cmd = l.spin.Update(msg)
	return l, cmd
}

// View renders the spinner line, or "" when inactive.
func (l Loader) View() string {
	if !l.Active {
		return ""
	}
	return l.spin.View() + " " + theme.Hint.Render(l.Message)
}

// Notice renders a dismissible one-line message for err. Stale errors
// render nothing.
func Notice(err error) string {
	msg := failure.Notice(err)
	if msg == "" {
		return ""
	}
	if failure.KindOf(err) == failure.KindValidation {
		return theme.Notice.Render(msg)
	}
	return theme.Failure.Render(msg)
}

// Info renders a neutral one-line message.
func Info(msg string) string {
	if msg == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(theme.Success).Render(msg)
}
