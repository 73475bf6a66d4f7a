package quizview

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/track"
)

type fakeCompleter struct {
	calls int
	next  string
}

func (f *fakeCompleter) CompleteLessonQuiz(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.next, nil
}

func (f *fakeCompleter) CompleteFinalQuiz(_ context.Context, _, _ string, _ map[int]string) (progression.Update, error) {
	f.calls++
	return progression.Update{}, nil
}

type fakeSession struct{}

func (fakeSession) Token() string { return "tok" }

func (fakeSession) ApplyProgression(progression.Update) error { return nil }

func (fakeSession) Refresh(context.Context) error { return nil }

func questions() []track.Question {
	return []track.Question{
		{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: "4"},
		{Prompt: "Keyword?", Options: []string{"func", "def"}, Answer: "func", Explanation: "Go declares functions with func."},
	}
}

func newLessonScreen(t *testing.T, comp *fakeCompleter, unlocks *progression.Unlocks) (*QuizScreen, *quiz.Controller) {
	t.Helper()
	lesson := track.Lesson{ID: "l1", Title: "Basics", Quiz: questions()}
	ctrl := quiz.NewLessonQuiz("t1", lesson, quiz.Deps{Completer: comp, Session: fakeSession{}, Unlocks: unlocks})
	return New(shared.Deps{}, ctrl, lesson.Title), ctrl
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// drain runs cmd and every command batched inside it, returning the
// messages of type completedMsg.
func drain(cmd tea.Cmd) []completedMsg {
	if cmd == nil {
		return nil
	}
	var out []completedMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
	case completedMsg:
		out = append(out, msg)
	}
	return out
}

func TestPerfectScoreCompletesLesson(t *testing.T) {
	comp := &fakeCompleter{next: "l2"}
	unlocks := progression.NewUnlocks()
	s, ctrl := newLessonScreen(t, comp, unlocks)

	s.Update(keyPress('b'))
	assert.Equal(t, 1, s.current, "choosing advances to the next question")
	s.Update(keyPress('a'))
	_, cmd := s.Update(keyPress('s'))

	assert.Equal(t, quiz.PhaseSubmitted, ctrl.Phase())
	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	s.Update(msgs[0])

	assert.Equal(t, 1, comp.calls)
	assert.True(t, ctrl.Completed())
	assert.Equal(t, "l2", unlocks.Get("t1"))
	assert.Contains(t, s.done, "next lesson is unlocked")
	assert.Contains(t, s.View(100, 40), "Score: 2/2 (100%)")
}

func TestWrongAnswerOffersRetry(t *testing.T) {
	comp := &fakeCompleter{}
	s, ctrl := newLessonScreen(t, comp, nil)

	s.Update(keyPress('a'))
	s.Update(keyPress('a'))
	_, cmd := s.Update(keyPress('s'))

	assert.Nil(t, cmd)
	assert.Equal(t, 0, s.current, "jumps to the first wrong answer")
	assert.True(t, s.choices[0].Reviewed)
	view := s.View(100, 40)
	assert.Contains(t, view, "Score: 1/2 (50%)")
	assert.Contains(t, view, "Press r to try again")

	s.Update(keyPress('r'))

	assert.Equal(t, quiz.PhaseAnswering, ctrl.Phase())
	assert.False(t, s.choices[0].Reviewed)
	_, ok := ctrl.Selected(0)
	assert.False(t, ok)
	assert.Equal(t, 0, comp.calls)
}

func TestCloseDropsLateCompletion(t *testing.T) {
	comp := &fakeCompleter{next: "l2"}
	unlocks := progression.NewUnlocks()
	s, ctrl := newLessonScreen(t, comp, unlocks)

	s.Update(keyPress('b'))
	s.Update(keyPress('a'))
	_, cmd := s.Update(keyPress('s'))
	s.Close()

	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	s.Update(msgs[0])

	assert.False(t, ctrl.Completed())
	assert.Empty(t, unlocks.Get("t1"))
	assert.Empty(t, s.done)
	assert.Nil(t, s.err)
}

func TestFinalQuizRequiresEveryAnswer(t *testing.T) {
	comp := &fakeCompleter{}
	ctrl := quiz.NewFinalQuiz(track.Track{ID: "t1", FinalQuiz: questions()}, nil,
		quiz.Deps{Completer: comp, Session: fakeSession{}})
	s := New(shared.Deps{}, ctrl, "Go basics")

	s.Update(keyPress('b'))
	_, cmd := s.Update(keyPress('s'))

	assert.Nil(t, cmd)
	assert.Equal(t, quiz.PhaseAnswering, ctrl.Phase())
	assert.Equal(t, 1, s.current)
	var open *quiz.UnansweredError
	require.ErrorAs(t, s.err, &open)
	assert.Equal(t, []int{1}, open.Indices)
	assert.Equal(t, "Final quiz", s.Title())
}

func TestKeyHintsFollowPhase(t *testing.T) {
	s, _ := newLessonScreen(t, &fakeCompleter{}, nil)

	keys := func() string {
		var b strings.Builder
		for _, h := range s.KeyHints() {
			b.WriteString(h.Key + " ")
		}
		return b.String()
	}
	assert.Contains(t, keys(), "s ")

	s.Update(keyPress('a'))
	s.Update(keyPress('a'))
	s.Update(keyPress('s'))
	assert.Contains(t, keys(), "r ")
	assert.NotContains(t, keys(), "s ")
}
