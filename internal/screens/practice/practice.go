package practice

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	practicesvc "github.com/omergehad405/EduMaster/internal/practice"
	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

type listLoadedMsg struct {
	quizzes []practicesvc.Quiz
	err     error
}

type generatedMsg struct {
	quiz practicesvc.Quiz
	err  error
}

type attemptsLoadedMsg struct {
	quizID   string
	attempts []practicesvc.Attempt
	err      error
}

// ListScreen lists the learner's practice quizzes and uploads new
// material for generation.
type ListScreen struct {
	deps     shared.Deps
	loader   components.Loader
	quizzes  []practicesvc.Quiz
	selected int
	loaded   bool

	uploading bool
	path      components.TextInput

	attemptsFor string
	attempts    []practicesvc.Attempt

	info string
	err  error
}

var _ screen.Screen = (*ListScreen)(nil)
var _ screen.KeyHintProvider = (*ListScreen)(nil)

// New creates the practice quiz list.
func New(deps shared.Deps) *ListScreen {
	return &ListScreen{
		deps:   deps,
		loader: components.NewLoader(),
		path: components.NewTextInput("File to upload",
			strings.Join(practicesvc.AcceptedExtensions, " "), false, 50),
	}
}

func (s *ListScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ListScreen) load() tea.Cmd {
	svc := s.deps.Practice
	return tea.Batch(s.loader.Start("Loading your quizzes..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		qs, err := svc.List(ctx)
		return listLoadedMsg{quizzes: qs, err: err}
	})
}

func (s *ListScreen) Title() string {
	return "Practice quizzes"
}

func (s *ListScreen) KeyHints() []layout.KeyHint {
	if s.uploading {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Upload"},
			{Key: "Ctrl+X", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Take"},
		{Key: "u", Description: "Upload"},
		{Key: "a", Description: "Attempts"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		s.loader.Stop()
		s.loaded = true
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.quizzes = msg.quizzes
		s.selected = min(s.selected, max(len(s.quizzes)-1, 0))
		return s, nil

	case generatedMsg:
		s.loader.Stop()
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.info = fmt.Sprintf("Generated a quiz with %d questions from %s.", len(msg.quiz.Questions), msg.quiz.FileName)
		s.path.Model.Reset()
		return s, s.load()

	case attemptsLoadedMsg:
		s.loader.Stop()
		if msg.err != nil {
			s.err = msg.err
			return s, s.deps.Handle(msg.err)
		}
		s.attemptsFor = msg.quizID
		s.attempts = msg.attempts
		return s, nil

	case router.ResumedMsg:
		return s, s.load()

	case tea.KeyMsg:
		if s.loader.Active {
			return s, nil
		}
		if s.uploading {
			return s, s.uploadKey(msg)
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.quizzes)-1 {
				s.selected++
			}
		case "u":
			s.uploading = true
			s.err, s.info = nil, ""
			return s, s.path.Focus()
		case "a":
			return s, s.loadAttempts()
		case "enter":
			if s.selected < len(s.quizzes) {
				run := s.deps.Practice.Start(s.quizzes[s.selected])
				return s, router.Push(NewRun(s.deps, run))
			}
		}
		return s, nil
	}

	var cmds [2]tea.Cmd
	s.loader, cmds[0] = s.loader.Update(msg)
	if s.uploading {
		s.path, cmds[1] = s.path.Update(msg)
	}
	return s, tea.Batch(cmds[:]...)
}

func (s *ListScreen) uploadKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+x":
		s.uploading = false
		s.path.Blur()
		return nil
	case "enter":
		path := strings.TrimSpace(s.path.Value())
		s.uploading = false
		s.path.Blur()
		s.err, s.info = nil, ""
		svc := s.deps.Practice
		return tea.Batch(s.loader.Start("Generating a quiz, this can take a while..."), func() tea.Msg {
			ctx, cancel := shared.Context()
			defer cancel()
			q, err := svc.Generate(ctx, path)
			return generatedMsg{quiz: q, err: err}
		})
	}
	var cmd tea.Cmd
	s.path, cmd = s.path.Update(msg)
	return cmd
}

func (s *ListScreen) loadAttempts() tea.Cmd {
	if s.selected >= len(s.quizzes) {
		return nil
	}
	svc, id := s.deps.Practice, s.quizzes[s.selected].ID
	return tea.Batch(s.loader.Start("Loading attempts..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		as, err := svc.Attempts(ctx, id)
		return attemptsLoadedMsg{quizID: id, attempts: as, err: err}
	})
}

func (s *ListScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	if s.uploading {
		sections = append(sections, components.Panel("Upload material", s.path.View()+"\n\n"+
			theme.Hint.Render("Accepted: "+strings.Join(practicesvc.AcceptedExtensions, ", ")), cw))
	}

	if s.loaded && len(s.quizzes) == 0 {
		sections = append(sections, theme.Hint.Render("No quizzes yet. Press u to upload a document."))
	}
	if len(s.quizzes) > 0 {
		var b strings.Builder
		for i, q := range s.quizzes {
			prefix, style := "  ", theme.Unselected
			if i == s.selected {
				prefix, style = "▸ ", theme.Selected
			}
			b.WriteString(style.Render(prefix + q.FileName))
			meta := fmt.Sprintf("  %d questions", len(q.Questions))
			if !q.CreatedAt.IsZero() {
				meta += " · " + humanize.Time(q.CreatedAt)
			}
			b.WriteString(theme.Hint.Render(meta))
			b.WriteString("\n")
		}
		sections = append(sections, components.Panel("Your quizzes", strings.TrimRight(b.String(), "\n"), cw))
	}

	if s.attemptsFor != "" && s.selected < len(s.quizzes) && s.quizzes[s.selected].ID == s.attemptsFor {
		sections = append(sections, components.Panel("Attempts", renderAttempts(s.attempts), cw))
	}

	if v := s.loader.View(); v != "" {
		sections = append(sections, v)
	}
	if s.info != "" {
		sections = append(sections, components.Info(s.info))
	}
	if shared.Visible(s.err) {
		sections = append(sections, components.Notice(s.err))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		"\n"+lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderAttempts(as []practicesvc.Attempt) string {
	if len(as) == 0 {
		return theme.Hint.Render("No attempts yet.")
	}
	var b strings.Builder
	for _, a := range as {
		line := fmt.Sprintf("%d/%d  (%d%%)", a.Score, a.Total, a.Percent())
		if !a.CreatedAt.IsZero() {
			line += "  " + humanize.Time(a.CreatedAt)
		}
		b.WriteString(theme.Body.Render(line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
