package catalog

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/guard"
	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/screens/trackview"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

type catalogLoadedMsg struct {
	ticket  guard.Ticket
	entries []courses.Entry
	err     error
}

// CatalogScreen lists every published track.
type CatalogScreen struct {
	deps     shared.Deps
	stale    guard.Guard
	loader   components.Loader
	entries  []courses.Entry
	loaded   bool
	selected int
	err      error
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates the catalog screen.
func New(deps shared.Deps) *CatalogScreen {
	return &CatalogScreen{deps: deps, loader: components.NewLoader()}
}

func (s *CatalogScreen) Init() tea.Cmd {
	return s.load()
}

func (s *CatalogScreen) load() tea.Cmd {
	ticket := s.stale.Begin("catalog")
	svc := s.deps.Courses
	return tea.Batch(s.loader.Start("Loading tracks..."), func() tea.Msg {
		ctx, cancel := shared.Context()
		defer cancel()
		entries, err := svc.Catalog(ctx)
		return catalogLoadedMsg{ticket: ticket, entries: entries, err: err}
	})
}

// Close discards responses that arrive after the screen was left.
func (s *CatalogScreen) Close() {
	s.stale.Deactivate()
}

func (s *CatalogScreen) Title() string {
	return "Tracks"
}

func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		if s.stale.Check(msg.ticket) != nil {
			return s, nil
		}
		s.loader.Stop()
		s.loaded = true
		s.err = msg.err
		if msg.err == nil {
			s.entries = msg.entries
			s.selected = min(s.selected, max(len(s.entries)-1, 0))
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
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "r":
			return s, s.load()
		case "enter":
			if s.selected < len(s.entries) {
				return s, router.Push(trackview.New(s.deps, s.entries[s.selected].Track.ID))
			}
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	return s, cmd
}

func (s *CatalogScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")

	if v := s.loader.View(); v != "" {
		b.WriteString(v + "\n")
	}
	if shared.Visible(s.err) {
		b.WriteString(components.Notice(s.err) + "\n")
	}
	if s.loaded && s.err == nil && len(s.entries) == 0 {
		b.WriteString(theme.Hint.Render("No tracks have been published yet.") + "\n")
	}

	// Keep the selection visible when the list is taller than the screen.
	perEntry := 3
	visible := max(height/perEntry-1, 1)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	for i := start; i < len(s.entries) && i < start+visible; i++ {
		b.WriteString(renderEntry(s.entries[i], i == s.selected, cw))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func renderEntry(e courses.Entry, selected bool, cw int) string {
	prefix := "  "
	title := theme.Unselected
	if selected {
		prefix = "▸ "
		title = theme.Selected
	}

	badge := ""
	switch {
	case e.Completed:
		badge = theme.Correct.Render(" ✓ completed")
	case e.Enrolled:
		badge = lipgloss.NewStyle().Foreground(theme.Secondary).Render(" • enrolled")
	}

	meta := fmt.Sprintf("%s · %d lessons", e.Track.Level, e.Track.LessonCount)
	line := title.Render(prefix+e.Track.Title) + badge + "  " + theme.Hint.Render(meta)

	desc := e.Track.Description
	if r, w := []rune(desc), cw-4; len(r) > w && w > 3 {
		desc = string(r[:w-3]) + "..."
	}
	return lipgloss.NewStyle().Width(cw).Render(line + "\n    " + theme.Body.Foreground(theme.TextDim).Render(desc))
}
