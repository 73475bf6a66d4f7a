package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/catalog"
	"github.com/omergehad405/EduMaster/internal/screens/dashboard"
	"github.com/omergehad405/EduMaster/internal/screens/history"
	"github.com/omergehad405/EduMaster/internal/screens/login"
	"github.com/omergehad405/EduMaster/internal/screens/practice"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/screens/stats"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// recentActivity is how many activity entries the home screen lists.
const recentActivity = 5

type loggedOutMsg struct {
	err error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps shared.Deps
	menu components.Menu
	err  error
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps shared.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() {
	deps := h.deps
	signedIn := deps.Session.Snapshot().SignedIn()
	needsLogin := ""
	if !signedIn {
		needsLogin = "log in first"
	}

	items := []components.MenuItem{
		{Label: "My courses", Hint: needsLogin, Disabled: !signedIn, Action: func() tea.Cmd {
			return router.Push(dashboard.New(deps))
		}},
		{Label: "Browse tracks", Action: func() tea.Cmd {
			return router.Push(catalog.New(deps))
		}},
		{Label: "Practice quizzes", Hint: needsLogin, Disabled: !signedIn, Action: func() tea.Cmd {
			return router.Push(practice.New(deps))
		}},
		{Label: "Statistics", Hint: needsLogin, Disabled: !signedIn, Action: func() tea.Cmd {
			return router.Push(stats.New(deps))
		}},
		{Label: "History", Action: func() tea.Cmd {
			return router.Push(history.New(deps))
		}},
	}
	if signedIn {
		items = append(items, components.MenuItem{Label: "Log out", Action: func() tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := shared.Context()
				defer cancel()
				return loggedOutMsg{err: deps.Session.Logout(ctx)}
			}
		}})
	} else {
		items = append(items,
			components.MenuItem{Label: "Log in", Action: func() tea.Cmd {
				return router.Push(login.New(deps, login.ModeLogin, ""))
			}},
			components.MenuItem{Label: "Create account", Action: func() tea.Cmd {
				return router.Push(login.New(deps, login.ModeRegister, ""))
			}},
		)
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
		return tea.Quit
	}})

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case router.ResumedMsg:
		h.buildMenu()
		return h, nil
	case loggedOutMsg:
		h.err = msg.err
		return h, func() tea.Msg { return shared.SignedOutMsg{} }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	snap := h.deps.Session.Snapshot()

	var sections []string
	sections = append(sections, theme.Title.Width(cw).Render("EduMaster"))

	if snap.SignedIn() {
		u := snap.User
		greeting := fmt.Sprintf("Welcome back, %s!", u.Username)
		line := fmt.Sprintf("%d XP   %d day streak   %d enrolled   %d completed",
			u.XP, u.Streak, len(snap.Progression.Enrolled), len(snap.Progression.Completed))
		sections = append(sections,
			theme.Subtitle.Width(cw).Render(greeting+"\n"+line))
	} else {
		sections = append(sections,
			theme.Subtitle.Width(cw).Render("Browse the catalog, or log in to track your progress."))
	}

	sections = append(sections, components.Panel("", h.menu.View(), cw))

	if snap.SignedIn() {
		if recent := snap.User.RecentActivity(recentActivity); len(recent) > 0 {
			var b strings.Builder
			for _, a := range recent {
				b.WriteString(theme.Body.Render("• " + a.Message))
				if !a.At.IsZero() {
					b.WriteString("  " + theme.Hint.Render(humanize.Time(a.At)))
				}
				b.WriteString("\n")
			}
			sections = append(sections, components.Panel("Recent activity", strings.TrimRight(b.String(), "\n"), cw))
		}
	}
	if h.err != nil {
		sections = append(sections, components.Notice(h.err))
	}

	return components.Center(lipgloss.JoinVertical(lipgloss.Center, sections...), width, height)
}
