package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/guard"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/store"
	"github.com/omergehad405/EduMaster/internal/track"
)

// Kind distinguishes a per-lesson quiz from a track's final quiz.
type Kind int

const (
	KindLesson Kind = iota
	KindFinal
)

func (k Kind) String() string {
	if k == KindFinal {
		return "final"
	}
	return "lesson"
}

// Completer reports passed quizzes to the server.
type Completer interface {
	CompleteLessonQuiz(ctx context.Context, token, lessonID, trackID string) (nextLessonID string, err error)
	CompleteFinalQuiz(ctx context.Context, token, trackID string, answers map[int]string) (progression.Update, error)
}

// Session is the slice of the identity store the controller needs.
// Refresh re-reads the learner's progression from the server.
type Session interface {
	Token() string
	ApplyProgression(progression.Update) error
	Refresh(ctx context.Context) error
}

// UnlockSink receives the unlock override issued after a lesson quiz.
type UnlockSink interface {
	Set(trackID, lessonID string)
}

// Deps are the collaborators of a Controller. History and Log are optional.
type Deps struct {
	Completer Completer
	Session   Session
	Unlocks   UnlockSink
	History   store.AttemptRepo
	Log       *zap.Logger
}

// Completion is the server's confirmation of a passed quiz.
type Completion struct {
	// NextLessonID is the unlock override returned for lesson quizzes.
	NextLessonID string

	// Update holds the authoritative progression returned for final quizzes.
	Update progression.Update
}

// Controller drives one quiz-taking instance: answering, submitting,
// retrying, and reporting a perfect score to the server. It is safe for
// use from the UI goroutine and from commands running the completion call.
type Controller struct {
	mu sync.Mutex

	kind     Kind
	trackID  string
	lessonID string
	deps     Deps

	attempt   *Attempt
	inFlight  bool
	completed bool
	closed    bool

	// stale guards completion responses against retries and Close.
	stale guard.Guard

	now func() time.Time
}

// NewLessonQuiz creates a controller for a lesson's quiz.
func NewLessonQuiz(trackID string, lesson track.Lesson, deps Deps) *Controller {
	return newController(KindLesson, trackID, lesson.ID, lesson.Quiz, deps)
}

// NewFinalQuiz creates a controller for a track's final quiz.
func NewFinalQuiz(t track.Track, lessons []track.Lesson, deps Deps) *Controller {
	return newController(KindFinal, t.ID, "", track.FinalQuizQuestions(t, lessons), deps)
}

func newController(kind Kind, trackID, lessonID string, questions []track.Question, deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Controller{
		kind:     kind,
		trackID:  trackID,
		lessonID: lessonID,
		deps:     deps,
		attempt:  NewAttempt(questions),
		now:      time.Now,
	}
}

// Kind returns the quiz kind.
func (c *Controller) Kind() Kind { return c.kind }

// TrackID returns the track the quiz belongs to.
func (c *Controller) TrackID() string { return c.trackID }

// LessonID returns the lesson for lesson quizzes, or "".
func (c *Controller) LessonID() string { return c.lessonID }

// Questions returns the question set shared by every attempt.
func (c *Controller) Questions() []track.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.Questions()
}

// Phase returns the phase of the current attempt.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.Phase()
}

// Selected returns the option chosen for question q in the current attempt.
func (c *Controller) Selected(q int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.Selected(q)
}

// Result returns the graded result of the current attempt, if submitted.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.Result()
}

// AllCorrect reports whether the current attempt was submitted with a
// perfect score.
func (c *Controller) AllCorrect() bool {
	res, ok := c.Result()
	return ok && res.AllCorrect()
}

// InFlight reports whether a completion request is outstanding.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Completed reports whether the server confirmed the current attempt.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Select chooses option opt for question q.
func (c *Controller) Select(q, opt int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.Select(q, opt)
}

// SelectOption chooses the first option of question q whose text is option.
func (c *Controller) SelectOption(q int, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	qs := c.attempt.Questions()
	if q < 0 || q >= len(qs) {
		return ErrInvalidSelection
	}
	idx := qs[q].OptionIndex(option)
	if idx < 0 {
		return ErrInvalidSelection
	}
	return c.attempt.Select(q, idx)
}

// Submit grades the current attempt. Final quizzes reject submission while
// any question is unanswered and stay in the answering phase. The graded
// attempt is appended to the local history when one is configured.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.attempt.Phase() != PhaseAnswering {
		c.mu.Unlock()
		return Result{}, ErrSubmitted
	}
	if c.kind == KindFinal {
		if open := c.attempt.Unanswered(); len(open) > 0 {
			c.mu.Unlock()
			return Result{}, &UnansweredError{Indices: open}
		}
	}
	res, err := c.attempt.Submit(c.now())
	c.mu.Unlock()
	if err != nil {
		return Result{}, err
	}

	if c.deps.History != nil {
		err := c.deps.History.Append(ctx, store.AttemptRecord{
			ID:          res.AttemptID,
			Kind:        c.kind.String(),
			TrackID:     c.trackID,
			LessonID:    c.lessonID,
			Correct:     res.Correct,
			Total:       res.Total,
			Passed:      res.AllCorrect(),
			SubmittedAt: res.SubmittedAt,
		})
		if err != nil {
			c.deps.Log.Warn("record quiz attempt",
				zap.String("kind", c.kind.String()),
				zap.String("track", c.trackID),
				zap.Error(err))
		}
	}
	return res, nil
}

// Complete reports the passed attempt to the server and applies the
// authoritative answer: the unlock override for lesson quizzes, the
// progression merge for final quizzes. After a lesson quiz the session's
// progression is re-read from the server; a failed refresh is logged and
// does not fail the completion. Only one request may be in flight.
// A response that arrives after Retry or Close is discarded with an error
// matching failure.ErrStale. Remote failures leave all state untouched.
func (c *Controller) Complete(ctx context.Context) (Completion, error) {
	c.mu.Lock()
	res, submitted := c.attempt.Result()
	switch {
	case c.closed:
		c.mu.Unlock()
		return Completion{}, fmt.Errorf("complete %s quiz: %w", c.kind, failure.ErrStale)
	case !submitted:
		c.mu.Unlock()
		return Completion{}, ErrNotSubmitted
	case !res.AllCorrect():
		c.mu.Unlock()
		return Completion{}, ErrNotPassed
	case c.inFlight:
		c.mu.Unlock()
		return Completion{}, ErrInFlight
	case c.completed:
		c.mu.Unlock()
		return Completion{}, ErrAlreadyCompleted
	}
	token := ""
	if c.deps.Session != nil {
		token = c.deps.Session.Token()
	}
	if token == "" {
		c.mu.Unlock()
		return Completion{}, fmt.Errorf("complete %s quiz: %w", c.kind, failure.ErrAuthRequired)
	}
	c.inFlight = true
	ticket := c.stale.Begin(c.attempt.ID)
	answers := c.attempt.AnswerTexts()
	c.mu.Unlock()

	var (
		out Completion
		err error
	)
	switch c.kind {
	case KindLesson:
		out.NextLessonID, err = c.deps.Completer.CompleteLessonQuiz(ctx, token, c.lessonID, c.trackID)
	case KindFinal:
		out.Update, err = c.deps.Completer.CompleteFinalQuiz(ctx, token, c.trackID, answers)
	}

	c.mu.Lock()
	c.inFlight = false
	if staleErr := c.stale.Check(ticket); staleErr != nil {
		c.mu.Unlock()
		return Completion{}, staleErr
	}
	if err != nil {
		c.mu.Unlock()
		return Completion{}, fmt.Errorf("complete %s quiz: %w", c.kind, err)
	}

	switch c.kind {
	case KindLesson:
		if c.deps.Unlocks != nil && out.NextLessonID != "" {
			c.deps.Unlocks.Set(c.trackID, out.NextLessonID)
		}
	case KindFinal:
		if err := c.deps.Session.ApplyProgression(out.Update); err != nil {
			c.mu.Unlock()
			return Completion{}, fmt.Errorf("apply final quiz progression: %w", err)
		}
	}
	c.completed = true
	c.mu.Unlock()

	if c.kind == KindLesson {
		if err := c.deps.Session.Refresh(ctx); err != nil {
			c.deps.Log.Warn("refresh progression after lesson quiz",
				zap.String("track", c.trackID),
				zap.String("lesson", c.lessonID),
				zap.Error(err))
		}
	}
	return out, nil
}

// SubmitAndComplete submits the attempt and, on a perfect score, reports
// it to the server.
func (c *Controller) SubmitAndComplete(ctx context.Context) (Result, *Completion, error) {
	res, err := c.Submit(ctx)
	if err != nil {
		return Result{}, nil, err
	}
	if !res.AllCorrect() {
		return res, nil, nil
	}
	comp, err := c.Complete(ctx)
	if err != nil {
		return res, nil, err
	}
	return res, &comp, nil
}

// Retry discards the submitted attempt and starts a fresh one over the
// same questions. It is refused while a completion request is in flight.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt.Phase() != PhaseSubmitted {
		return ErrNotSubmitted
	}
	if c.inFlight {
		return ErrInFlight
	}
	c.attempt = NewAttempt(c.attempt.Questions())
	c.completed = false
	c.stale.Deactivate()
	return nil
}

// Close marks the controller as abandoned. Completion responses that
// arrive afterwards are discarded and no new completion is sent.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stale.Deactivate()
}
