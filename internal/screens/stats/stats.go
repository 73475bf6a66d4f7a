package stats

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/guard"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// RecentActivity is how many activity entries the statistics list.
const RecentActivity = 5

type boardLoadedMsg struct {
	ticket guard.Ticket
	board  courses.Board
	err    error
}

// StatsScreen summarizes progression across every track.
type StatsScreen struct {
	deps   shared.Deps
	stale  guard.Guard
	loader components.Loader
	board  courses.Board
	loaded bool
	err    error
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates the statistics screen.
func New(deps shared.Deps) *StatsScreen {
	return &StatsScreen{deps: deps, loader: components.NewLoader()}
}

func (s *StatsScreen) Init() tea.Cmd {
	ticket := s.stale.Begin("stats")
	svc := s.deps.Courses
	return tea.Batch(s.loader.Start("Collecting statistics..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		b, err := svc.Board(ctx)
		return boardLoadedMsg{ticket: ticket, board: b, err: err}
	})
}

// Close discards responses that arrive after the screen was left.
func (s *StatsScreen) Close() {
	s.stale.Deactivate()
}

func (s *StatsScreen) Title() string {
	return "Statistics"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(boardLoadedMsg); ok {
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
		return s, nil
	}
	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	return s, cmd
}

func (s *StatsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if !s.loaded || s.err != nil {
		body := s.loader.View()
		if shared.Visible(s.err) {
			body = components.Notice(s.err)
		}
		return components.Center(body, width, height)
	}

	st := s.board.Stats
	u := s.board.User
	value := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	label := theme.Hint

	cells := []string{
		value.Render(fmt.Sprintf("%d", u.XP)) + label.Render(" XP"),
		value.Render(fmt.Sprintf("%d", u.Streak)) + label.Render(" day streak"),
		value.Render(fmt.Sprintf("%d", st.EnrolledTracks)) + label.Render(" enrolled"),
		value.Render(fmt.Sprintf("%d", st.CompletedTracks)) + label.Render(" completed"),
		value.Render(fmt.Sprintf("%d/%d", st.CompletedLessons, st.TotalLessons)) + label.Render(" lessons"),
	}
	var sections []string
	sections = append(sections,
		components.Panel("Overview", strings.Join(cells, "   ")+"\n\n"+
			components.NewProgressBar("Average", st.AveragePercent, cw-4).View(), cw))

	if len(s.board.Summaries) > 0 {
		var b strings.Builder
		for _, sum := range s.board.Summaries {
			b.WriteString(components.NewProgressBar(trim(sum.Track.Title, 24), sum.Percent, cw-4).View())
			b.WriteString("\n")
		}
		sections = append(sections, components.Panel("Tracks", strings.TrimRight(b.String(), "\n"), cw))
	}

	if recent := u.RecentActivity(RecentActivity); len(recent) > 0 {
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
	if n := len(s.board.Failed); n > 0 {
		sections = append(sections, theme.Hint.Render(fmt.Sprintf("%d track(s) could not be loaded and are not counted.", n)))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		"\n"+lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// trim pads or cuts s to exactly n columns so bars line up.
func trim(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s + strings.Repeat(" ", n-len(r))
}
