package trackview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/guard"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/lesson"
	"github.com/omergehad405/EduMaster/internal/screens/login"
	"github.com/omergehad405/EduMaster/internal/screens/quizview"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

type detailLoadedMsg struct {
	ticket guard.Ticket
	detail courses.Detail
	err    error
}

type enrolledMsg struct {
	ticket guard.Ticket
	err    error
}

// TrackScreen shows a track's overview, its lessons with their lock
// state, and the action derived from the learner's progression.
type TrackScreen struct {
	deps    shared.Deps
	trackID string

	stale  guard.Guard
	loader components.Loader
	detail courses.Detail
	loaded bool

	// cursor 0 is the primary action; lessons follow.
	cursor    int
	enrolling bool
	err       error
}

var _ screen.Screen = (*TrackScreen)(nil)
var _ screen.KeyHintProvider = (*TrackScreen)(nil)

// New creates the screen for trackID.
func New(deps shared.Deps, trackID string) *TrackScreen {
	return &TrackScreen{deps: deps, trackID: trackID, loader: components.NewLoader()}
}

func (s *TrackScreen) Init() tea.Cmd {
	return s.load()
}

func (s *TrackScreen) load() tea.Cmd {
	ticket := s.stale.Begin(s.trackID)
	svc, id := s.deps.Courses, s.trackID
	return tea.Batch(s.loader.Start("Loading track..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		d, err := svc.Track(ctx, id)
		return detailLoadedMsg{ticket: ticket, detail: d, err: err}
	})
}

// Close discards responses that arrive after the screen was left.
func (s *TrackScreen) Close() {
	s.stale.Deactivate()
}

func (s *TrackScreen) Title() string {
	if s.loaded {
		return s.detail.Summary.Track.Title
	}
	return "Track"
}

func (s *TrackScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TrackScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if s.stale.Check(msg.ticket) != nil {
			return s, nil
		}
		s.loader.Stop()
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.detail = msg.detail
		s.loaded = true
		s.cursor = min(s.cursor, len(s.detail.Lessons))
		return s, nil

	case enrolledMsg:
		if s.stale.Check(msg.ticket) != nil {
			return s, nil
		}
		s.enrolling = false
		s.loader.Stop()
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		return s, s.load()

	case router.ResumedMsg:
		return s, s.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.detail.Lessons) {
				s.cursor++
			}
		case "r":
			return s, s.load()
		case "enter":
			if !s.loaded {
				return s, nil
			}
			if s.cursor == 0 {
				return s, s.act()
			}
			return s, s.openLesson(s.detail.Lessons[s.cursor-1].ID)
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	return s, cmd
}

// act runs the primary action of the track's current state.
func (s *TrackScreen) act() tea.Cmd {
	sum := s.detail.Summary
	switch sum.Action() {
	case progression.ActionEnroll:
		if !s.deps.Session.Snapshot().SignedIn() {
			return router.Push(login.New(s.deps, login.ModeLogin, "Log in to enroll in this track."))
		}
		if s.enrolling {
			return nil
		}
		s.enrolling = true
		s.err = nil
		ticket := s.stale.Begin(s.trackID)
		svc, id := s.deps.Courses, s.trackID
		return tea.Batch(s.loader.Start("Enrolling..."), func() tea.Msg {
			ctx, cancel := shared.Context()
			defer cancel()
			return enrolledMsg{ticket: ticket, err: svc.Enroll(ctx, id)}
		})
	case progression.ActionContinue:
		return s.openLesson(sum.CurrentLessonID)
	case progression.ActionFinalQuiz:
		ctrl := quiz.NewFinalQuiz(sum.Track, s.detail.Lessons, s.deps.QuizDeps())
		return router.Push(quizview.New(s.deps, ctrl, sum.Track.Title))
	case progression.ActionReview:
		if len(s.detail.Lessons) > 0 {
			return s.openLesson(s.detail.Lessons[0].ID)
		}
	}
	return nil
}

func (s *TrackScreen) openLesson(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	if st, ok := s.detail.Summary.Lesson(id); ok && st.Locked {
		s.err = lesson.ErrLocked
		return nil
	}
	s.err = nil
	return router.Push(lesson.New(s.deps, s.detail, id))
}

func (s *TrackScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	if !s.loaded {
		if v := s.loader.View(); v != "" {
			sections = append(sections, v)
		}
		if shared.Visible(s.err) {
			sections = append(sections, components.Notice(s.err))
		}
		return components.Center(strings.Join(sections, "\n"), width, height)
	}

	sum := s.detail.Summary
	t := sum.Track
	sections = append(sections,
		theme.Title.Width(cw).Render(t.Title),
		theme.Subtitle.Width(cw).Render(fmt.Sprintf("%s · %d lessons · %s", t.Level, sum.TotalLessons, sum.State.Label())))

	if t.Description != "" || len(t.Overview.Paragraphs) > 0 {
		sections = append(sections, components.Panel("Overview", s.overview(cw-4), cw))
	}
	if sum.State != progression.StateNotEnrolled && sum.State != progression.StateEmpty {
		sections = append(sections, components.NewProgressBar("Progress", sum.Percent, cw).View())
	}

	if label := sum.Action().Label(); label != "" {
		sections = append(sections, components.ActionButton(label, s.cursor == 0, cw/2))
	}
	sections = append(sections, components.Panel("Lessons", s.lessonList(), cw))

	if v := s.loader.View(); v != "" {
		sections = append(sections, v)
	}
	if shared.Visible(s.err) {
		sections = append(sections, components.Notice(s.err))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (s *TrackScreen) overview(w int) string {
	t := s.detail.Summary.Track
	wrap := lipgloss.NewStyle().Width(w).Foreground(theme.Text)
	var parts []string
	if t.Description != "" {
		parts = append(parts, wrap.Render(t.Description))
	}
	for _, p := range t.Overview.Paragraphs {
		parts = append(parts, wrap.Render(p))
	}
	for _, img := range t.Overview.Images {
		parts = append(parts, theme.Hint.Render("[image] "+img))
	}
	return strings.Join(parts, "\n\n")
}

func (s *TrackScreen) lessonList() string {
	if len(s.detail.Lessons) == 0 {
		return theme.Hint.Render("No lessons yet.")
	}
	var b strings.Builder
	current := s.detail.Summary.CurrentLessonID
	for i, l := range s.detail.Lessons {
		st, _ := s.detail.Summary.Lesson(l.ID)
		icon := "○"
		style := theme.Unselected
		switch {
		case st.Completed:
			icon = "✓"
			style = lipgloss.NewStyle().Foreground(theme.Success)
		case st.Locked:
			icon = "🔒"
			style = theme.Disabled
		case l.ID == current:
			icon = "▶"
		}
		prefix := "  "
		if s.cursor == i+1 {
			prefix = "▸ "
			if !st.Locked {
				style = theme.Selected
			}
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s %d. %s", prefix, icon, i+1, l.Title)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
