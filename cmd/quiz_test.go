package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/track"
)

type stubCompleter struct {
	lessonCalls int
	next        string
}

func (s *stubCompleter) CompleteLessonQuiz(_ context.Context, _, _, _ string) (string, error) {
	s.lessonCalls++
	return s.next, nil
}

func (s *stubCompleter) CompleteFinalQuiz(_ context.Context, _, _ string, _ map[int]string) (progression.Update, error) {
	return progression.Update{}, nil
}

type stubSession struct{}

func (stubSession) Token() string { return "tok" }

func (stubSession) ApplyProgression(progression.Update) error { return nil }

func (stubSession) Refresh(context.Context) error { return nil }

func sampleLesson() track.Lesson {
	return track.Lesson{
		ID:    "l1",
		Title: "Variables",
		Quiz: []track.Question{
			{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: "4", Explanation: "Basic sum."},
			{Prompt: "Go keyword?", Options: []string{"func", "def"}, Answer: "func"},
		},
	}
}

func runQuiz(t *testing.T, input string, comp *stubCompleter) string {
	t.Helper()
	unlocks := progression.NewUnlocks()
	ctrl := quiz.NewLessonQuiz("t1", sampleLesson(), quiz.Deps{
		Completer: comp,
		Session:   stubSession{},
		Unlocks:   unlocks,
	})
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	require.NoError(t, takeQuiz(context.Background(), cmd, ctrl))
	return out.String()
}

func TestTakeQuizPassesFirstTime(t *testing.T) {
	comp := &stubCompleter{next: "l2"}

	out := runQuiz(t, "2\n1\n", comp)

	assert.Contains(t, out, "Score: 2/2 (100%)")
	assert.Contains(t, out, "Next lesson unlocked: l2")
	assert.Equal(t, 1, comp.lessonCalls)
}

func TestTakeQuizRetriesAfterMistake(t *testing.T) {
	comp := &stubCompleter{}

	out := runQuiz(t, "1\n1\ny\n2\n1\n", comp)

	assert.Contains(t, out, "Score: 1/2 (50%)")
	assert.Contains(t, out, "correct answer: 4")
	assert.Contains(t, out, "Basic sum.")
	assert.Contains(t, out, "Lesson completed.")
	assert.Equal(t, 1, comp.lessonCalls)
}

func TestTakeQuizGiveUpSkipsCompletion(t *testing.T) {
	comp := &stubCompleter{}

	out := runQuiz(t, "1\n1\nn\n", comp)

	assert.Contains(t, out, "Try again?")
	assert.Equal(t, 0, comp.lessonCalls)
}

func TestTakeQuizRejectsOutOfRange(t *testing.T) {
	out := runQuiz(t, "7\nabc\n2\n1\n", &stubCompleter{})

	assert.Equal(t, 2, strings.Count(out, "Enter a number between 1 and 2."))
	assert.Contains(t, out, "Score: 2/2")
}

func TestTakeQuizSkipsQuestionWithoutOptions(t *testing.T) {
	lesson := track.Lesson{ID: "l1", Quiz: []track.Question{
		{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: "4"},
		{Prompt: "Broken", Answer: "x"},
	}}
	comp := &stubCompleter{}
	ctrl := quiz.NewLessonQuiz("t1", lesson, quiz.Deps{Completer: comp, Session: stubSession{}})
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("2\nn\n"))
	cmd.SetOut(&out)

	require.NoError(t, takeQuiz(context.Background(), cmd, ctrl))

	assert.Contains(t, out.String(), "(no options, skipped)")
	assert.Contains(t, out.String(), "Score: 1/2")
	assert.Equal(t, 0, comp.lessonCalls)
}

func TestPrompterAskDefault(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("typed\n"), &out)

	got, err := p.askDefault("Email", "given@example.com")
	require.NoError(t, err)
	assert.Equal(t, "given@example.com", got)
	assert.Empty(t, out.String())

	got, err = p.askDefault("Email", "")
	require.NoError(t, err)
	assert.Equal(t, "typed", got)
	assert.Equal(t, "Email: ", out.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Gr…", truncate("Grundlagen", 3))
	assert.Equal(t, "ÄÖ…", truncate("ÄÖÜßäö", 3))
}
