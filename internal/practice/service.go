package practice

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/store"
)

// KindPractice tags practice attempts in the local history.
const KindPractice = "practice"

// TokenSource yields the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// Service runs practice quizzes against the API.
type Service struct {
	api       API
	tokens    TokenSource
	history   store.AttemptRepo
	maxUpload int64
	log       *zap.Logger
	now       func() time.Time
}

// NewService creates a Service. history may be nil.
func NewService(api API, tokens TokenSource, history store.AttemptRepo, maxUpload int64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:       api,
		tokens:    tokens,
		history:   history,
		maxUpload: maxUpload,
		log:       log.Named("practice"),
		now:       time.Now,
	}
}

func (s *Service) token(op string) (string, error) {
	tok := ""
	if s.tokens != nil {
		tok = s.tokens.Token()
	}
	if tok == "" {
		return "", fmt.Errorf("%s: %w", op, failure.ErrAuthRequired)
	}
	return tok, nil
}

// Generate checks the file at path and uploads it for quiz generation.
func (s *Service) Generate(ctx context.Context, path string) (Quiz, error) {
	tok, err := s.token("generate quiz")
	if err != nil {
		return Quiz{}, err
	}
	up, err := Inspect(path, s.maxUpload)
	if err != nil {
		return Quiz{}, err
	}
	s.log.Info("uploading study file",
		zap.String("file", up.Name),
		zap.String("size", up.HumanSize()),
		zap.String("mime", up.MIME))
	q, err := s.api.GenerateQuiz(ctx, tok, up)
	if err != nil {
		return Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}
	return q, nil
}

// List returns the user's practice quizzes, newest first.
func (s *Service) List(ctx context.Context) ([]Quiz, error) {
	tok, err := s.token("list quizzes")
	if err != nil {
		return nil, err
	}
	qs, err := s.api.MyQuizzes(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].CreatedAt.After(qs[j].CreatedAt) })
	return qs, nil
}

// Get fetches one practice quiz.
func (s *Service) Get(ctx context.Context, quizID string) (Quiz, error) {
	tok, err := s.token("get quiz")
	if err != nil {
		return Quiz{}, err
	}
	q, err := s.api.GetQuiz(ctx, tok, quizID)
	if err != nil {
		return Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

// Attempts lists previous attempts of a quiz, oldest first.
func (s *Service) Attempts(ctx context.Context, quizID string) ([]Attempt, error) {
	tok, err := s.token("list attempts")
	if err != nil {
		return nil, err
	}
	as, err := s.api.QuizAttempts(ctx, tok, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return as, nil
}

// Start begins taking q.
func (s *Service) Start(q Quiz) *Run {
	return &Run{svc: s, quiz: q, attempt: quiz.NewAttempt(q.Questions)}
}

// Run is one pass over a practice quiz. Every question must be answered
// before the attempt can be submitted; the server grades it.
type Run struct {
	mu sync.Mutex

	svc     *Service
	quiz    Quiz
	attempt *quiz.Attempt

	submitting bool
	graded     *Attempt
}

// Quiz returns the quiz being taken.
func (r *Run) Quiz() Quiz { return r.quiz }

// Select chooses option opt for question q.
func (r *Run) Select(q, opt int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitting {
		return quiz.ErrInFlight
	}
	return r.attempt.Select(q, opt)
}

// Selected returns the option chosen for question q.
func (r *Run) Selected(q int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt.Selected(q)
}

// Unanswered returns the indices of questions without a selection.
func (r *Run) Unanswered() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt.Unanswered()
}

// Graded returns the server-graded attempt once submitted.
func (r *Run) Graded() (Attempt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.graded == nil {
		return Attempt{}, false
	}
	return *r.graded, true
}

// Review returns the locally graded outcome per question, available after
// a successful submission.
func (r *Run) Review() (quiz.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt.Result()
}

// Submit sends the answers for grading. On failure the selections are kept
// so the learner can submit again.
func (r *Run) Submit(ctx context.Context) (Attempt, error) {
	r.mu.Lock()
	switch {
	case r.graded != nil:
		r.mu.Unlock()
		return Attempt{}, quiz.ErrSubmitted
	case r.submitting:
		r.mu.Unlock()
		return Attempt{}, quiz.ErrInFlight
	}
	if open := r.attempt.Unanswered(); len(open) > 0 {
		r.mu.Unlock()
		return Attempt{}, &quiz.UnansweredError{Indices: open}
	}
	tok, err := r.svc.token("submit quiz")
	if err != nil {
		r.mu.Unlock()
		return Attempt{}, err
	}
	answers := answerList(r.attempt.AnswerTexts())
	r.submitting = true
	r.mu.Unlock()

	graded, err := r.svc.api.SubmitQuiz(ctx, tok, r.quiz.ID, answers)

	r.mu.Lock()
	r.submitting = false
	if err != nil {
		r.mu.Unlock()
		return Attempt{}, fmt.Errorf("submit quiz: %w", err)
	}
	now := r.svc.now()
	_, _ = r.attempt.Submit(now)
	r.graded = &graded
	r.mu.Unlock()

	r.svc.record(ctx, r.quiz.ID, graded, now)
	return graded, nil
}

func (s *Service) record(ctx context.Context, quizID string, a Attempt, at time.Time) {
	if s.history == nil {
		return
	}
	id := a.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", quizID, at.UnixNano())
	}
	err := s.history.Append(ctx, store.AttemptRecord{
		ID:          id,
		Kind:        KindPractice,
		QuizID:      quizID,
		Correct:     a.Score,
		Total:       a.Total,
		Passed:      a.Total > 0 && a.Score == a.Total,
		SubmittedAt: at,
	})
	if err != nil {
		s.log.Warn("record practice attempt", zap.String("quiz", quizID), zap.Error(err))
	}
}

func answerList(texts map[int]string) []Answer {
	out := make([]Answer, 0, len(texts))
	for i, t := range texts {
		out = append(out, Answer{QuestionIndex: i, Selected: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out
}
