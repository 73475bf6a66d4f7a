package app

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/home"
	"github.com/omergehad405/EduMaster/internal/screens/login"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/screens/welcome"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
)

// Deps are the collaborators of the running client.
type Deps = shared.Deps

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   Deps
	router *router.Router
	width  int
	height int
}

// NewAppModel creates an AppModel that restores the saved session behind
// the welcome screen and then shows home.
func NewAppModel(deps Deps) AppModel {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Unlocks == nil {
		deps.Unlocks = progression.NewUnlocks()
	}
	m := AppModel{deps: deps}
	splash := welcome.New(
		func(ctx context.Context) error { return deps.Session.Bootstrap(ctx) },
		m.afterRestore,
	)
	m.router = router.New(splash)
	return m
}

func (m AppModel) afterRestore(err error) screen.Screen {
	switch {
	case err == nil:
		return home.New(m.deps)
	case errors.Is(err, identity.ErrSessionExpired):
		return login.New(m.deps, login.ModeLogin, "Your session expired. Please log in again.")
	default:
		m.deps.Log.Warn("restore session", zap.Error(err))
		return home.New(m.deps)
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
			return m, nil
		}

	case shared.SignedInMsg:
		return m, m.router.Reset(home.New(m.deps))

	case shared.SignedOutMsg:
		m.deps.Unlocks.Reset()
		return m, m.router.Reset(home.New(m.deps))

	case shared.SessionExpiredMsg:
		m.deps.Unlocks.Reset()
		return m, m.router.Reset(login.New(m.deps, login.ModeLogin, "Your session expired. Please log in again."))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var header string
	if snap := m.deps.Session.Snapshot(); snap.SignedIn() {
		header = layout.RenderHeader(title, snap.User.Username, snap.User.XP, snap.User.Streak, m.width)
	} else {
		header = layout.RenderHeader(title, "", 0, 0, m.width)
	}

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(deps Deps) error {
	p := tea.NewProgram(NewAppModel(deps))
	_, err := p.Run()
	return err
}
