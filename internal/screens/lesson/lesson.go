package lesson

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/guard"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/quizview"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/track"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// ErrLocked is shown when navigating to a lesson that is still locked.
var ErrLocked = fmt.Errorf("complete the previous lesson's quiz first: %w", failure.ErrValidation)

type detailLoadedMsg struct {
	ticket guard.Ticket
	detail courses.Detail
	err    error
}

// LessonScreen shows one lesson's content with previous/next navigation.
type LessonScreen struct {
	deps     shared.Deps
	detail   courses.Detail
	lessonID string

	stale    guard.Guard
	view     viewport.Model
	rendered string // lesson id and width the viewport content was built for
	err      error
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)

// New opens lessonID within an already loaded track.
func New(deps shared.Deps, detail courses.Detail, lessonID string) *LessonScreen {
	return &LessonScreen{
		deps:     deps,
		detail:   detail,
		lessonID: lessonID,
		view:     viewport.New(),
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	return s.enter()
}

// enter records the visit. The call is fire-and-forget.
func (s *LessonScreen) enter() tea.Cmd {
	svc, id := s.deps.Courses, s.lessonID
	return func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		svc.EnterLesson(ctx, id)
		return nil
	}
}

func (s *LessonScreen) reload() tea.Cmd {
	trackID := s.detail.Summary.Track.ID
	ticket := s.stale.Begin(trackID)
	svc := s.deps.Courses
	return func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		d, err := svc.Track(ctx, trackID)
		return detailLoadedMsg{ticket: ticket, detail: d, err: err}
	}
}

// Close discards responses that arrive after the screen was left.
func (s *LessonScreen) Close() {
	s.stale.Deactivate()
}

func (s *LessonScreen) Title() string {
	if l, ok := s.detail.Lesson(s.lessonID); ok {
		return l.Title
	}
	return "Lesson"
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "p/n", Description: "Prev/Next"},
		{Key: "q", Description: "Quiz"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if s.stale.Check(msg.ticket) != nil {
			return s, nil
		}
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.detail = msg.detail
		s.rendered = ""
		return s, nil

	case router.ResumedMsg:
		return s, s.reload()

	case tea.KeyMsg:
		nav := courses.Navigate(s.detail.Summary, s.lessonID)
		switch msg.String() {
		case "n":
			return s, s.goTo(nav.Next, nav.NextLocked)
		case "p":
			return s, s.goTo(nav.Prev, false)
		case "q":
			l, ok := s.detail.Lesson(s.lessonID)
			if !ok {
				return s, nil
			}
			ctrl := quiz.NewLessonQuiz(s.detail.Summary.Track.ID, l, s.deps.QuizDeps())
			return s, router.Push(quizview.New(s.deps, ctrl, l.Title))
		}
	}

	var cmd tea.Cmd
	s.view, cmd = s.view.Update(msg)
	return s, cmd
}

func (s *LessonScreen) goTo(id string, locked bool) tea.Cmd {
	if id == "" {
		return nil
	}
	if locked {
		s.err = ErrLocked
		return nil
	}
	s.err = nil
	s.lessonID = id
	s.rendered = ""
	s.view.GotoTop()
	return s.enter()
}

func (s *LessonScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	l, ok := s.detail.Lesson(s.lessonID)
	if !ok {
		return components.Center(components.Notice(fmt.Errorf("lesson %s: %w", s.lessonID, failure.ErrDataIntegrity)), width, height)
	}

	footer := s.footer(l)
	s.view.SetWidth(cw)
	s.view.SetHeight(max(height-lipgloss.Height(footer)-1, 3))
	if key := fmt.Sprintf("%s/%d", s.lessonID, cw); key != s.rendered {
		s.view.SetContent(RenderContent(l, cw))
		s.rendered = key
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, s.view.View(), footer))
}

func (s *LessonScreen) footer(l track.Lesson) string {
	nav := courses.Navigate(s.detail.Summary, s.lessonID)
	var parts []string

	state, _ := s.detail.Summary.Lesson(s.lessonID)
	if state.Completed {
		parts = append(parts, theme.Correct.Render("✓ completed"))
	}
	if nav.Prev != "" {
		parts = append(parts, theme.Hint.Render("← previous"))
	}
	switch {
	case nav.Next != "" && nav.NextLocked:
		parts = append(parts, theme.Disabled.Render("next 🔒"))
	case nav.Next != "":
		parts = append(parts, theme.Hint.Render("next →"))
	}
	if n := len(l.Quiz); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("quiz: %d questions", n)))
	}

	line := strings.Join(parts, "   ")
	if shared.Visible(s.err) {
		line += "\n" + components.Notice(s.err)
	}
	return line
}

// RenderContent lays out a lesson's blocks at the given width.
func RenderContent(l track.Lesson, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render(l.Title))
	b.WriteString("\n\n")
	if l.VideoURL != "" {
		b.WriteString(theme.Hint.Render("▶ Video: " + l.VideoURL))
		b.WriteString("\n\n")
	}

	for _, block := range l.Content {
		switch block.Kind {
		case track.BlockHeading:
			b.WriteString(theme.Heading.Render(block.Text))
		case track.BlockCode:
			if block.Language != "" {
				b.WriteString(theme.Hint.Render(block.Language))
				b.WriteString("\n")
			}
			b.WriteString(theme.Code.Width(width).Render(block.Text))
		case track.BlockImage:
			b.WriteString(theme.Hint.Render("[image] " + block.Text))
		default:
			b.WriteString(wrap.Foreground(theme.Text).Render(block.Text))
		}
		b.WriteString("\n\n")
	}
	if len(l.Content) == 0 {
		b.WriteString(theme.Hint.Render("This lesson has no content yet."))
	}
	return strings.TrimRight(b.String(), "\n")
}
