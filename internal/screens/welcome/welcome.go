package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond

	bootstrapTimeout = 20 * time.Second
)

// sparkle frames cycle around the banner
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

type restoredMsg struct {
	err error
}

// WelcomeScreen shows a splash animation while the saved session is
// restored, then replaces itself with the screen produced by next.
type WelcomeScreen struct {
	bootstrap func(ctx context.Context) error
	next      func(restoreErr error) screen.Screen

	elapsed      time.Duration
	tickCount    int
	restored     bool
	restoreErr   error
	skip         bool
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. bootstrap restores the session; next
// receives its error and builds the screen to show afterwards.
func New(bootstrap func(ctx context.Context) error, next func(restoreErr error) screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		bootstrap: bootstrap,
		next:      next,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	bootstrap := w.bootstrap
	return tea.Batch(tick(), func() tea.Msg {
		if bootstrap == nil {
			return restoredMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
		defer cancel()
		return restoredMsg{err: bootstrap(ctx)}
	})
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		if w.elapsed >= totalDur && w.restored {
			return w, w.transition()
		}
		return w, tick()

	case restoredMsg:
		w.restored = true
		w.restoreErr = msg.err
		if w.skip || w.elapsed >= totalDur {
			return w, w.transition()
		}
		return w, nil

	case tea.KeyPressMsg:
		// A keypress skips the animation but never the session restore.
		if w.restored {
			return w, w.transition()
		}
		w.skip = true
		return w, nil
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next(w.restoreErr)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	banner := RenderBanner(width)
	if w.elapsed >= phase1End {
		frame := w.tickCount % len(sparkleFrames)
		sparkle := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkleFrames[frame])
		banner = sparkle + "  " + strings.TrimPrefix(banner, "\n") + "  " + sparkle
	}
	sections = append(sections, banner)

	if w.elapsed >= phase2End {
		sections = append(sections, "",
			lipgloss.NewStyle().
				Foreground(theme.Text).
				Bold(true).
				Render("Learn step by step, one lesson at a time."))
	}

	sections = append(sections, "")
	if w.restored {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	} else {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("restoring your session..."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
