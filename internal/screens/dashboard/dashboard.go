package dashboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/guard"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/screens/trackview"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

type boardLoadedMsg struct {
	ticket guard.Ticket
	board  courses.Board
	err    error
}

// DashboardScreen lists the learner's enrolled and completed tracks.
type DashboardScreen struct {
	deps     shared.Deps
	stale    guard.Guard
	loader   components.Loader
	board    courses.Board
	loaded   bool
	selected int
	err      error
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates the dashboard.
func New(deps shared.Deps) *DashboardScreen {
	return &DashboardScreen{deps: deps, loader: components.NewLoader()}
}

func (s *DashboardScreen) Init() tea.Cmd {
	return s.load()
}

func (s *DashboardScreen) load() tea.Cmd {
	ticket := s.stale.Begin("board")
	svc := s.deps.Courses
	return tea.Batch(s.loader.Start("Loading your courses..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		b, err := svc.Board(ctx)
		return boardLoadedMsg{ticket: ticket, board: b, err: err}
	})
}

// Close discards responses that arrive after the screen was left.
func (s *DashboardScreen) Close() {
	s.stale.Deactivate()
}

func (s *DashboardScreen) Title() string {
	return "My courses"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open track"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		if s.stale.Check(msg.ticket) != nil {
			return s, nil
		}
		s.loader.Stop()
		s.loaded = true
		s.err = msg.err
		if msg.err != nil {
			return s, s.deps.Handle(msg.err)
		}
		s.board = msg.board
		if s.selected >= len(s.board.Summaries) {
			s.selected = max(len(s.board.Summaries)-1, 0)
		}
		return s, nil

	case router.ResumedMsg:
		return s, s.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.board.Summaries)-1 {
				s.selected++
			}
		case "r":
			return s, s.load()
		case "enter":
			if s.selected < len(s.board.Summaries) {
				id := s.board.Summaries[s.selected].Track.ID
				return s, router.Push(trackview.New(s.deps, id))
			}
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	return s, cmd
}

func (s *DashboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	if v := s.loader.View(); v != "" {
		sections = append(sections, v)
	}
	if shared.Visible(s.err) {
		sections = append(sections, components.Notice(s.err))
	}
	if s.loaded && s.err == nil && len(s.board.Summaries) == 0 && len(s.board.Failed) == 0 {
		sections = append(sections, theme.Hint.Render("You are not enrolled in any track yet. Browse the catalog to get started."))
	}

	for i, sum := range s.board.Summaries {
		sections = append(sections, renderSummary(sum, i == s.selected, cw))
	}
	if n := len(s.board.Failed); n > 0 {
		sections = append(sections, components.Notice(fmt.Errorf("%d track(s) could not be loaded: %w", n, failure.ErrRemote)))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		"\n"+strings.Join(sections, "\n"))
}

func renderSummary(sum progression.TrackSummary, selected bool, cw int) string {
	titleStyle := theme.Unselected
	border := theme.Border
	if selected {
		titleStyle = theme.Selected
		border = theme.Primary
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(sum.Track.Title))
	b.WriteString("  ")
	b.WriteString(theme.Hint.Render(string(sum.Track.Level)))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("%d/%d lessons", sum.CompletedLessons, sum.TotalLessons),
		sum.Percent, cw-4).View())
	b.WriteString("\n")
	status := sum.State.Label()
	if a := sum.Action(); a != progression.ActionNone {
		status += "  ·  " + a.Label()
	}
	b.WriteString(stateStyle(sum.State).Render(status))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cw).
		Padding(0, 1).
		Render(b.String())
}

func stateStyle(st progression.TrackState) lipgloss.Style {
	switch st {
	case progression.StateCompleted:
		return lipgloss.NewStyle().Foreground(theme.Success)
	case progression.StateAwaitingFinalQuiz:
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	case progression.StateEmpty:
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	default:
		return lipgloss.NewStyle().Foreground(theme.Secondary)
	}
}
