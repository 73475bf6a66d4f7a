package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/store"
	"github.com/omergehad405/EduMaster/internal/track"
)

// fakeCompleter implements Completer for testing.
type fakeCompleter struct {
	mu          sync.Mutex
	lessonCalls int
	finalCalls  int
	lastAnswers map[int]string
	lastToken   string
	next        string
	update      progression.Update
	err         error

	// block, when set, holds the call until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeCompleter) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeCompleter) CompleteLessonQuiz(_ context.Context, token, _, _ string) (string, error) {
	f.mu.Lock()
	f.lessonCalls++
	f.lastToken = token
	f.mu.Unlock()
	f.wait()
	return f.next, f.err
}

func (f *fakeCompleter) CompleteFinalQuiz(_ context.Context, token, _ string, answers map[int]string) (progression.Update, error) {
	f.mu.Lock()
	f.finalCalls++
	f.lastToken = token
	f.lastAnswers = answers
	f.mu.Unlock()
	f.wait()
	return f.update, f.err
}

// fakeSession implements Session for testing.
type fakeSession struct {
	token      string
	applied    []progression.Update
	refreshes  int
	refreshErr error
}

func (s *fakeSession) Token() string { return s.token }
func (s *fakeSession) ApplyProgression(u progression.Update) error {
	s.applied = append(s.applied, u)
	return nil
}
func (s *fakeSession) Refresh(context.Context) error {
	s.refreshes++
	return s.refreshErr
}

// fakeHistory implements store.AttemptRepo for testing.
type fakeHistory struct {
	records []store.AttemptRecord
	err     error
}

func (h *fakeHistory) Append(_ context.Context, rec store.AttemptRecord) error {
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}
func (h *fakeHistory) Recent(_ context.Context, _ store.QueryOpts) ([]store.AttemptRecord, error) {
	return h.records, nil
}

func threeQuestions() []track.Question {
	return []track.Question{
		{Prompt: "1+1", Options: []string{"1", "2", "3"}, Answer: "2"},
		{Prompt: "2+2", Options: []string{"4", "5"}, Answer: "4"},
		{Prompt: "3+3", Options: []string{"5", "6"}, Answer: "6"},
	}
}

func newLesson(deps Deps) *Controller {
	return NewLessonQuiz("t1", track.Lesson{ID: "l1", Quiz: threeQuestions()}, deps)
}

func newFinal(deps Deps) *Controller {
	return NewFinalQuiz(track.Track{ID: "t1", FinalQuiz: threeQuestions()}, nil, deps)
}

func answerAll(t *testing.T, c *Controller, opts ...int) {
	t.Helper()
	for q, opt := range opts {
		require.NoError(t, c.Select(q, opt))
	}
}

func TestLessonQuizPartialSubmission(t *testing.T) {
	c := newLesson(Deps{})
	require.NoError(t, c.Select(0, 1))

	res, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.AllCorrect())
	assert.Equal(t, PhaseSubmitted, c.Phase())
	assert.Equal(t, -1, res.Outcomes[1].Selected)
}

func TestFinalQuizRequiresEveryAnswer(t *testing.T) {
	comp := &fakeCompleter{}
	c := newFinal(Deps{Completer: comp, Session: &fakeSession{token: "tok"}})
	answerAll(t, c, 1, 0)

	_, err := c.Submit(context.Background())

	var unanswered *UnansweredError
	require.ErrorAs(t, err, &unanswered)
	assert.Equal(t, []int{2}, unanswered.Indices)
	assert.True(t, errors.Is(err, failure.ErrValidation))
	assert.Equal(t, "Please answer all questions before submitting.", failure.Notice(err))
	assert.Equal(t, PhaseAnswering, c.Phase())
	assert.Equal(t, 0, comp.finalCalls)
}

func TestFinalQuizOneWrongAnswerIssuesNoCompletion(t *testing.T) {
	comp := &fakeCompleter{}
	c := newFinal(Deps{Completer: comp, Session: &fakeSession{token: "tok"}})
	answerAll(t, c, 1, 0, 0) // Q3 wrong

	res, done, err := c.SubmitAndComplete(context.Background())

	require.NoError(t, err)
	assert.Nil(t, done)
	assert.Equal(t, 2, res.Correct)
	assert.False(t, res.AllCorrect())
	assert.False(t, c.AllCorrect())
	assert.Equal(t, 0, comp.finalCalls)

	_, err = c.Complete(context.Background())
	assert.ErrorIs(t, err, ErrNotPassed)
}

func TestAllCorrectOnlyWithPerfectScore(t *testing.T) {
	wrongOption := []int{0, 1, 0}
	for wrong := 0; wrong < 3; wrong++ {
		c := newLesson(Deps{})
		opts := []int{1, 0, 1}
		opts[wrong] = wrongOption[wrong]
		answerAll(t, c, opts...)
		res, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Correct)
		assert.False(t, res.AllCorrect(), "wrong answer at %d", wrong)
	}
}

func TestSelectAfterSubmitIsRejected(t *testing.T) {
	c := newLesson(Deps{})
	answerAll(t, c, 1, 0, 1)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Select(0, 0), ErrSubmitted)
	opt, _ := c.Selected(0)
	assert.Equal(t, 1, opt)

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitted)
}

func TestSelectValidation(t *testing.T) {
	c := newLesson(Deps{})
	assert.ErrorIs(t, c.Select(5, 0), ErrInvalidSelection)
	assert.ErrorIs(t, c.Select(0, 9), ErrInvalidSelection)
	assert.ErrorIs(t, c.SelectOption(0, "nope"), ErrInvalidSelection)
	require.NoError(t, c.SelectOption(0, "2"))
	opt, ok := c.Selected(0)
	assert.True(t, ok)
	assert.Equal(t, 1, opt)
}

func TestLessonCompletionAppliesUnlock(t *testing.T) {
	comp := &fakeCompleter{next: "l2"}
	unlocks := progression.NewUnlocks()
	hist := &fakeHistory{}
	c := newLesson(Deps{Completer: comp, Session: &fakeSession{token: "tok"}, Unlocks: unlocks, History: hist})
	answerAll(t, c, 1, 0, 1)

	res, done, err := c.SubmitAndComplete(context.Background())

	require.NoError(t, err)
	require.NotNil(t, done)
	assert.True(t, res.AllCorrect())
	assert.Equal(t, "l2", done.NextLessonID)
	assert.Equal(t, "l2", unlocks.Get("t1"))
	assert.Equal(t, "tok", comp.lastToken)
	assert.True(t, c.Completed())

	require.Len(t, hist.records, 1)
	assert.Equal(t, "lesson", hist.records[0].Kind)
	assert.True(t, hist.records[0].Passed)

	_, err = c.Complete(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestLessonCompletionRefreshesSession(t *testing.T) {
	sess := &fakeSession{token: "tok"}
	c := newLesson(Deps{Completer: &fakeCompleter{next: "l2"}, Session: sess})
	answerAll(t, c, 1, 0, 1)

	_, done, err := c.SubmitAndComplete(context.Background())

	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, 1, sess.refreshes)
}

func TestLessonCompletionSurvivesRefreshFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sess := &fakeSession{token: "tok", refreshErr: failure.ErrRemote}
	unlocks := progression.NewUnlocks()
	c := newLesson(Deps{Completer: &fakeCompleter{next: "l2"}, Session: sess, Unlocks: unlocks, Log: zap.New(core)})
	answerAll(t, c, 1, 0, 1)

	_, done, err := c.SubmitAndComplete(context.Background())

	require.NoError(t, err)
	require.NotNil(t, done)
	assert.True(t, c.Completed())
	assert.Equal(t, "l2", unlocks.Get("t1"))
	assert.Equal(t, 1, logs.FilterMessage("refresh progression after lesson quiz").Len())
}

func TestFailedHistoryAppendIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	hist := &fakeHistory{err: errors.New("disk full")}
	c := newLesson(Deps{History: hist, Log: zap.New(core)})
	answerAll(t, c, 1, 0, 1)

	res, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.True(t, res.AllCorrect())
	entries := logs.FilterMessage("record quiz attempt").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "t1", entries[0].ContextMap()["track"])
	assert.Equal(t, "disk full", entries[0].ContextMap()["error"])
}

func TestFinalCompletionMergesProgression(t *testing.T) {
	upd := progression.Update{
		Fields:    progression.FieldCompleted | progression.FieldRecords,
		Completed: []string{"t1"},
	}
	comp := &fakeCompleter{update: upd}
	sess := &fakeSession{token: "tok"}
	c := newFinal(Deps{Completer: comp, Session: sess})
	answerAll(t, c, 1, 0, 1)

	_, done, err := c.SubmitAndComplete(context.Background())

	require.NoError(t, err)
	require.NotNil(t, done)
	require.Len(t, sess.applied, 1)
	assert.Equal(t, []string{"t1"}, sess.applied[0].Completed)
	assert.Zero(t, sess.refreshes)
	assert.Equal(t, map[int]string{0: "2", 1: "4", 2: "6"}, comp.lastAnswers)
}

func TestCompletionWithoutTokenNeverCallsServer(t *testing.T) {
	comp := &fakeCompleter{}
	c := newLesson(Deps{Completer: comp, Session: &fakeSession{}})
	answerAll(t, c, 1, 0, 1)

	_, _, err := c.SubmitAndComplete(context.Background())

	assert.ErrorIs(t, err, failure.ErrAuthRequired)
	assert.Equal(t, 0, comp.lessonCalls)
	assert.False(t, c.Completed())
}

func TestRemoteFailureLeavesStateUntouched(t *testing.T) {
	comp := &fakeCompleter{err: failure.ErrRemote}
	sess := &fakeSession{token: "tok"}
	c := newFinal(Deps{Completer: comp, Session: sess})
	answerAll(t, c, 1, 0, 1)

	_, _, err := c.SubmitAndComplete(context.Background())

	assert.ErrorIs(t, err, failure.ErrRemote)
	assert.Empty(t, sess.applied)
	assert.False(t, c.Completed())
	assert.False(t, c.InFlight())

	// A second completion attempt is allowed after a failure.
	comp.err = nil
	_, err = c.Complete(context.Background())
	assert.NoError(t, err)
	assert.Len(t, sess.applied, 1)
}

func TestAtMostOneCompletionInFlight(t *testing.T) {
	comp := &fakeCompleter{block: make(chan struct{}), entered: make(chan struct{}, 1), next: "l2"}
	c := newLesson(Deps{Completer: comp, Session: &fakeSession{token: "tok"}})
	answerAll(t, c, 1, 0, 1)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Complete(context.Background())
		errc <- err
	}()
	<-comp.entered

	assert.True(t, c.InFlight())
	_, err = c.Complete(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)
	assert.ErrorIs(t, c.Retry(), ErrInFlight)

	close(comp.block)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, comp.lessonCalls)
}

func TestCloseDiscardsLateResponse(t *testing.T) {
	comp := &fakeCompleter{block: make(chan struct{}), entered: make(chan struct{}, 1), next: "l2"}
	unlocks := progression.NewUnlocks()
	c := newLesson(Deps{Completer: comp, Session: &fakeSession{token: "tok"}, Unlocks: unlocks})
	answerAll(t, c, 1, 0, 1)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Complete(context.Background())
		errc <- err
	}()
	<-comp.entered
	c.Close()
	close(comp.block)

	err = <-errc
	assert.ErrorIs(t, err, failure.ErrStale)
	assert.Equal(t, "", unlocks.Get("t1"))
	assert.False(t, c.Completed())
}

func TestClosedControllerSendsNothing(t *testing.T) {
	comp := &fakeCompleter{next: "l2"}
	c := newLesson(Deps{Completer: comp, Session: &fakeSession{token: "tok"}})
	answerAll(t, c, 1, 0, 1)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	c.Close()
	_, err = c.Complete(context.Background())

	assert.ErrorIs(t, err, failure.ErrStale)
	assert.Equal(t, 0, comp.lessonCalls)
}

func TestRetryStartsFreshAttempt(t *testing.T) {
	c := newLesson(Deps{})
	assert.ErrorIs(t, c.Retry(), ErrNotSubmitted)

	answerAll(t, c, 0, 0, 0)
	first, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Retry())
	assert.Equal(t, PhaseAnswering, c.Phase())
	_, ok := c.Selected(0)
	assert.False(t, ok)
	_, submitted := c.Result()
	assert.False(t, submitted)

	answerAll(t, c, 1, 0, 1)
	second, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	assert.Equal(t, 1, first.Correct, "earlier result is not mutated")
	assert.True(t, second.AllCorrect())
}

func TestEmptyQuizIsTriviallyComplete(t *testing.T) {
	comp := &fakeCompleter{next: "l2"}
	c := NewLessonQuiz("t1", track.Lesson{ID: "l1"}, Deps{Completer: comp, Session: &fakeSession{token: "tok"}})

	res, done, err := c.SubmitAndComplete(context.Background())

	require.NoError(t, err)
	assert.True(t, res.AllCorrect())
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 100, res.ScorePercent())
	require.NotNil(t, done)
	assert.Equal(t, 1, comp.lessonCalls)
}

func TestFinalQuizAggregatesLessonQuizzes(t *testing.T) {
	lessons := []track.Lesson{
		{ID: "a", Quiz: threeQuestions()[:1]},
		{ID: "b", Quiz: threeQuestions()[1:]},
	}
	c := NewFinalQuiz(track.Track{ID: "t1"}, lessons, Deps{})
	assert.Len(t, c.Questions(), 3)
	assert.Equal(t, KindFinal, c.Kind())
}

func TestAnswerMissingFromOptionsNeverCorrect(t *testing.T) {
	qs := []track.Question{{Prompt: "broken", Options: []string{"a", "b"}, Answer: "c"}}
	c := NewLessonQuiz("t1", track.Lesson{ID: "l1", Quiz: qs}, Deps{})
	require.NoError(t, c.Select(0, 0))

	res, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.False(t, res.AllCorrect())
	assert.Equal(t, -1, res.Outcomes[0].CorrectIndex)
	assert.Equal(t, []int{0}, res.Wrong())
}
