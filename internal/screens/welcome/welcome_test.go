package welcome

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/omergehad405/EduMaster/internal/router"
	"github.com/omergehad405/EduMaster/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

type factory struct {
	calls   int
	lastErr error
}

func (f *factory) next(err error) screen.Screen {
	f.calls++
	f.lastErr = err
	return &stubScreen{}
}

func newTestWelcome(bootstrapErr error) (*WelcomeScreen, *factory) {
	f := &factory{}
	w := New(func(context.Context) error { return bootstrapErr }, f.next)
	return w, f
}

func sendTicks(w *WelcomeScreen, n int) (screen.Screen, tea.Cmd) {
	var s screen.Screen = w
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		s, cmd = s.Update(tickMsg(time.Now()))
	}
	return s, cmd
}

func expectReplace(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	replace, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if replace.Screen == nil {
		t.Error("replace screen should not be nil")
	}
}

func TestPhaseTransitions(t *testing.T) {
	w, _ := newTestWelcome(nil)

	if strings.Contains(w.View(100, 30), "one lesson at a time") {
		t.Error("tagline should not be visible at start")
	}

	sendTicks(w, 15)
	if w.elapsed != 1500*time.Millisecond {
		t.Errorf("expected elapsed 1500ms, got %v", w.elapsed)
	}
	if !strings.Contains(w.View(100, 30), "one lesson at a time") {
		t.Error("tagline should be visible after phase 2")
	}
}

func TestKeypressBeforeRestoreWaits(t *testing.T) {
	w, f := newTestWelcome(nil)
	sendTicks(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd != nil {
		t.Fatal("keypress before restore must not transition")
	}

	_, cmd = w.Update(restoredMsg{})
	expectReplace(t, cmd)
	if f.calls != 1 {
		t.Errorf("factory should be called once, got %d", f.calls)
	}
}

func TestKeypressAfterRestoreTransitions(t *testing.T) {
	w, f := newTestWelcome(nil)
	w.Update(restoredMsg{})

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'a'})
	expectReplace(t, cmd)
	if f.calls != 1 {
		t.Errorf("factory should be called once, got %d", f.calls)
	}
}

func TestAutoTransitionAfterAnimation(t *testing.T) {
	w, f := newTestWelcome(nil)
	w.Update(restoredMsg{})

	_, cmd := sendTicks(w, int(totalDur/tickInterval))
	expectReplace(t, cmd)
	if f.calls != 1 {
		t.Errorf("factory should be called once, got %d", f.calls)
	}
}

func TestRestoreErrorReachesFactory(t *testing.T) {
	boom := errors.New("expired")
	w, f := newTestWelcome(boom)

	cmd := w.Init()
	if cmd == nil {
		t.Fatal("Init should start the restore")
	}
	w.Update(restoredMsg{err: boom})
	w.Update(tea.KeyPressMsg{Code: ' '})

	if !errors.Is(f.lastErr, boom) {
		t.Errorf("factory got %v, want %v", f.lastErr, boom)
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, f := newTestWelcome(nil)
	w.Update(restoredMsg{})
	w.Update(tea.KeyPressMsg{Code: 'a'})

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if f.calls != 1 {
		t.Errorf("factory should be called exactly once, got %d", f.calls)
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _ := newTestWelcome(nil)
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}
