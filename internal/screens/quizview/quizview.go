package quizview

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

type completedMsg struct {
	comp quiz.Completion
	err  error
}

// QuizScreen takes a lesson or final quiz. A perfect score is reported
// to the server automatically; anything less offers a retry.
type QuizScreen struct {
	deps    shared.Deps
	ctrl    *quiz.Controller
	title   string
	current int
	choices []components.MultiChoice
	loader  components.Loader
	err     error
	done    string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a quiz screen around ctrl. title names the lesson or track.
func New(deps shared.Deps, ctrl *quiz.Controller, title string) *QuizScreen {
	s := &QuizScreen{
		deps:   deps,
		ctrl:   ctrl,
		title:  title,
		loader: components.NewLoader(),
	}
	s.resetChoices()
	return s
}

func (s *QuizScreen) resetChoices() {
	qs := s.ctrl.Questions()
	s.choices = make([]components.MultiChoice, len(qs))
	for i, q := range qs {
		s.choices[i] = components.NewMultiChoice(q.Prompt, q.Options)
	}
	s.current = 0
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

// Close abandons the controller so late completion responses are dropped.
func (s *QuizScreen) Close() {
	s.ctrl.Close()
}

func (s *QuizScreen) Title() string {
	if s.ctrl.Kind() == quiz.KindFinal {
		return "Final quiz"
	}
	return "Lesson quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.ctrl.Phase() == quiz.PhaseSubmitted {
		hints := []layout.KeyHint{{Key: "←→", Description: "Review"}}
		if !s.ctrl.Completed() {
			if s.ctrl.AllCorrect() {
				hints = append(hints, layout.KeyHint{Key: "c", Description: "Send again"})
			}
			hints = append(hints, layout.KeyHint{Key: "r", Description: "Retry"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Option"},
		{Key: "Enter", Description: "Choose"},
		{Key: "←→", Description: "Question"},
		{Key: "s", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completedMsg:
		s.loader.Stop()
		if errors.Is(msg.err, failure.ErrStale) {
			return s, nil
		}
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.done = s.completionText(msg.comp)
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	return s, cmd
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h", "shift+tab":
		if s.current > 0 {
			s.current--
		}
		return nil
	case "right", "l", "tab":
		if s.current < len(s.choices)-1 {
			s.current++
		}
		return nil
	}

	if s.ctrl.Phase() == quiz.PhaseSubmitted {
		switch msg.String() {
		case "r":
			if err := s.ctrl.Retry(); err != nil {
				s.err = err
				return nil
			}
			s.err = nil
			s.done = ""
			s.resetChoices()
		case "c":
			return s.complete()
		}
		return nil
	}

	if msg.String() == "s" {
		return s.submit()
	}
	if len(s.choices) == 0 {
		return nil
	}
	mc, chosen := s.choices[s.current].Update(msg)
	s.choices[s.current] = mc
	if chosen {
		if err := s.ctrl.Select(s.current, mc.Chosen); err != nil {
			s.err = err
			return nil
		}
		s.err = nil
		if s.current < len(s.choices)-1 {
			s.current++
		}
	}
	return nil
}

func (s *QuizScreen) submit() tea.Cmd {
	ctx, cancel := shared.Context()
	defer cancel()
	res, err := s.ctrl.Submit(ctx)
	if err != nil {
		s.err = err
		var open *quiz.UnansweredError
		if errors.As(err, &open) && len(open.Indices) > 0 {
			s.current = open.Indices[0]
		}
		return nil
	}
	s.err = nil
	for i, o := range res.Outcomes {
		s.choices[i].Reviewed = true
		s.choices[i].CorrectIndex = o.CorrectIndex
	}
	if wrong := res.Wrong(); len(wrong) > 0 {
		s.current = wrong[0]
		return nil
	}
	return s.complete()
}

func (s *QuizScreen) complete() tea.Cmd {
	if s.ctrl.InFlight() || s.ctrl.Completed() {
		return nil
	}
	s.err = nil
	ctrl := s.ctrl
	return tea.Batch(s.loader.Start("Saving your progress..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		comp, err := ctrl.Complete(ctx)
		return completedMsg{comp: comp, err: err}
	})
}

func (s *QuizScreen) completionText(c quiz.Completion) string {
	if s.ctrl.Kind() == quiz.KindFinal {
		return "Track completed. Congratulations!"
	}
	if c.NextLessonID != "" {
		return "Lesson complete. The next lesson is unlocked."
	}
	return "Lesson complete."
}

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	sections = append(sections, theme.Title.Width(cw).Render(s.title))

	total := len(s.choices)
	if total == 0 {
		sections = append(sections, theme.Hint.Render("This quiz has no questions. Press s to finish it."))
	} else {
		answered := 0
		for i := range s.choices {
			if _, ok := s.ctrl.Selected(i); ok {
				answered++
			}
		}
		sections = append(sections,
			theme.Subtitle.Width(cw).Render(fmt.Sprintf("Question %d of %d  ·  %d answered", s.current+1, total, answered)),
			s.dots(),
			components.Panel("", s.choices[s.current].View()+s.explanation(), cw))
	}

	if res, ok := s.ctrl.Result(); ok {
		score := fmt.Sprintf("Score: %d/%d (%d%%)", res.Correct, res.Total, res.ScorePercent())
		if res.AllCorrect() {
			sections = append(sections, theme.Correct.Render(score))
		} else {
			sections = append(sections,
				theme.Incorrect.Render(score),
				theme.Hint.Render("Every answer must be correct to pass. Press r to try again."))
		}
	}
	if v := s.loader.View(); v != "" {
		sections = append(sections, v)
	}
	if s.done != "" {
		sections = append(sections, components.Info(s.done))
	}
	if shared.Visible(s.err) {
		sections = append(sections, components.Notice(s.err))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		"\n"+lipgloss.JoinVertical(lipgloss.Center, sections...))
}

// dots renders one marker per question: answered, current, or open, and
// after submission correct or wrong.
func (s *QuizScreen) dots() string {
	res, submitted := s.ctrl.Result()
	var b strings.Builder
	for i := range s.choices {
		mark := theme.Hint.Render("○")
		switch {
		case submitted && res.Outcomes[i].Correct:
			mark = theme.Correct.Render("●")
		case submitted:
			mark = theme.Incorrect.Render("●")
		default:
			if _, ok := s.ctrl.Selected(i); ok {
				mark = lipgloss.NewStyle().Foreground(theme.Secondary).Render("●")
			}
		}
		if i == s.current {
			mark = "[" + mark + "]"
		}
		b.WriteString(mark + " ")
	}
	return b.String()
}

func (s *QuizScreen) explanation() string {
	if _, ok := s.ctrl.Result(); !ok {
		return ""
	}
	qs := s.ctrl.Questions()
	if s.current >= len(qs) || qs[s.current].Explanation == "" {
		return ""
	}
	return "\n" + theme.Hint.Render(qs[s.current].Explanation)
}
