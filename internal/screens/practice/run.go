package practice

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	practicesvc "github.com/omergehad405/EduMaster/internal/practice"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

type gradedMsg struct {
	attempt practicesvc.Attempt
	err     error
}

// RunScreen takes one practice quiz. Every question must be answered
// before it is sent to the server for grading.
type RunScreen struct {
	deps    shared.Deps
	run     *practicesvc.Run
	current int
	choices []components.MultiChoice
	loader  components.Loader
	graded  *practicesvc.Attempt
	err     error
}

var _ screen.Screen = (*RunScreen)(nil)
var _ screen.KeyHintProvider = (*RunScreen)(nil)

// NewRun creates a screen for run.
func NewRun(deps shared.Deps, run *practicesvc.Run) *RunScreen {
	qs := run.Quiz().Questions
	choices := make([]components.MultiChoice, len(qs))
	for i, q := range qs {
		choices[i] = components.NewMultiChoice(q.Prompt, q.Options)
	}
	return &RunScreen{
		deps:    deps,
		run:     run,
		choices: choices,
		loader:  components.NewLoader(),
	}
}

func (s *RunScreen) Init() tea.Cmd {
	return nil
}

func (s *RunScreen) Title() string {
	return s.run.Quiz().FileName
}

func (s *RunScreen) KeyHints() []layout.KeyHint {
	if s.graded != nil {
		return []layout.KeyHint{
			{Key: "←→", Description: "Review"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Option"},
		{Key: "Enter", Description: "Choose"},
		{Key: "←→", Description: "Question"},
		{Key: "s", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *RunScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		s.loader.Stop()
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.err = nil
		s.graded = &msg.attempt
		if res, ok := s.run.Review(); ok {
			for i, o := range res.Outcomes {
				s.choices[i].Reviewed = true
				s.choices[i].CorrectIndex = o.CorrectIndex
			}
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "shift+tab":
			if s.current > 0 {
				s.current--
			}
			return s, nil
		case "right", "l", "tab":
			if s.current < len(s.choices)-1 {
				s.current++
			}
			return s, nil
		case "s":
			if s.graded == nil && !s.loader.Active {
				return s, s.submit()
			}
			return s, nil
		}
		if s.graded != nil || s.loader.Active || len(s.choices) == 0 {
			return s, nil
		}
		mc, chosen := s.choices[s.current].Update(msg)
		s.choices[s.current] = mc
		if chosen {
			if err := s.run.Select(s.current, mc.Chosen); err != nil {
				s.err = err
			} else if s.current < len(s.choices)-1 {
				s.current++
			}
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	return s, cmd
}

func (s *RunScreen) submit() tea.Cmd {
	if open := s.run.Unanswered(); len(open) > 0 {
		s.err = &quiz.UnansweredError{Indices: open}
		s.current = open[0]
		return nil
	}
	s.err = nil
	run := s.run
	return tea.Batch(s.loader.Start("Grading..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		a, err := run.Submit(ctx)
		return gradedMsg{attempt: a, err: err}
	})
}

func (s *RunScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	sections = append(sections, theme.Title.Width(cw).Render(s.run.Quiz().FileName))
	if len(s.choices) == 0 {
		sections = append(sections, theme.Hint.Render("This quiz has no questions."))
	} else {
		answered := len(s.choices) - len(s.run.Unanswered())
		sections = append(sections,
			theme.Subtitle.Width(cw).Render(fmt.Sprintf("Question %d of %d  ·  %d answered", s.current+1, len(s.choices), answered)),
			components.Panel("", s.choices[s.current].View()+s.explanation(), cw))
	}

	if s.graded != nil {
		score := fmt.Sprintf("Score: %d/%d (%d%%)", s.graded.Score, s.graded.Total, s.graded.Percent())
		style := theme.Incorrect
		if s.graded.Total > 0 && s.graded.Score == s.graded.Total {
			style = theme.Correct
		}
		sections = append(sections, style.Render(score))
	}
	if v := s.loader.View(); v != "" {
		sections = append(sections, v)
	}
	var open *quiz.UnansweredError
	if errors.As(s.err, &open) {
		sections = append(sections, components.Notice(s.err))
	} else if shared.Visible(s.err) {
		sections = append(sections, components.Notice(s.err),
			theme.Hint.Render("Your answers are kept. Press s to submit again."))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		"\n"+lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (s *RunScreen) explanation() string {
	if s.graded == nil {
		return ""
	}
	qs := s.run.Quiz().Questions
	if s.current >= len(qs) || qs[s.current].Explanation == "" {
		return ""
	}
	return "\n" + theme.Hint.Render(qs[s.current].Explanation)
}
