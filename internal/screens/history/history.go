package history

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/store"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// Limit bounds how many attempts are listed.
const Limit = 50

// filters cycles through the attempt kinds; "" lists every kind.
var filters = []string{"", "lesson", "final", "practice"}

type historyLoadedMsg struct {
	Kind     string
	Attempts []store.AttemptRecord
	Err      error
}

// HistoryScreen lists locally recorded quiz attempts.
type HistoryScreen struct {
	repo     store.AttemptRepo
	filter   int
	attempts []store.AttemptRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps shared.Deps) *HistoryScreen {
	return &HistoryScreen{
		repo:     deps.History,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo, kind := s.repo, filters[s.filter]
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{Kind: kind}
		}
		ctx, cancel := shared.Context()
		defer cancel()
		attempts, err := repo.Recent(ctx, store.QueryOpts{Limit: Limit, Kind: kind})
		return historyLoadedMsg{Kind: kind, Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "f", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Kind != filters[s.filter] {
			return s, nil
		}
		s.loaded = true
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.attempts = msg.Attempts
		s.selected = 0
		clear(s.expanded)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "f":
			s.filter = (s.filter + 1) % len(filters)
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}
	if s.errMsg != "" {
		return center(lipgloss.NewStyle().Foreground(theme.Error), fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center(lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading history...")
	}

	var b strings.Builder
	filter := filters[s.filter]
	if filter == "" {
		filter = "all"
	}
	b.WriteString(center(theme.Hint, fmt.Sprintf("\nshowing: %s quizzes\n", filter)))
	b.WriteString("\n")

	if len(s.attempts) == 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true),
			"\n  No attempts yet. Take a quiz!"))
		return b.String()
	}

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		status := "failed"
		if a.Passed {
			status = "passed"
		}
		line := fmt.Sprintf("%s%s  %-8s  %d/%d  %s",
			prefix, a.SubmittedAt.Format("Jan 02, 2006 15:04"), a.Kind, a.Correct, a.Total, status)

		style := lipgloss.NewStyle().Foreground(statusColor(a.Passed))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range details(a) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    "+d)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func details(a store.AttemptRecord) []string {
	var out []string
	if a.TrackID != "" {
		out = append(out, "track: "+a.TrackID)
	}
	if a.LessonID != "" {
		out = append(out, "lesson: "+a.LessonID)
	}
	if a.QuizID != "" {
		out = append(out, "quiz: "+a.QuizID)
	}
	return append(out, "submitted "+humanize.Time(a.SubmittedAt))
}

func statusColor(passed bool) color.Color {
	if passed {
		return theme.Success
	}
	return theme.Text
}
