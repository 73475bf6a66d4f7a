package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/track"
)

// Phase is the state of one quiz attempt.
type Phase int

const (
	PhaseAnswering Phase = iota // Selections may change
	PhaseSubmitted              // Graded; selections frozen
)

func (p Phase) String() string {
	if p == PhaseSubmitted {
		return "submitted"
	}
	return "answering"
}

// Attempt is one pass over a fixed question set. It moves from Answering
// to Submitted exactly once; a retry starts a new Attempt.
type Attempt struct {
	// ID uniquely identifies the attempt.
	ID string

	questions []track.Question

	// answers maps question index to selected option index.
	answers map[int]int

	phase  Phase
	result Result
}

// NewAttempt starts an attempt over questions with nothing selected.
func NewAttempt(questions []track.Question) *Attempt {
	return &Attempt{
		ID:        uuid.NewString(),
		questions: questions,
		answers:   make(map[int]int),
	}
}

// Phase returns the attempt phase.
func (a *Attempt) Phase() Phase { return a.phase }

// Questions returns the question set.
func (a *Attempt) Questions() []track.Question { return a.questions }

// Selected returns the option index chosen for question q.
func (a *Attempt) Selected(q int) (int, bool) {
	opt, ok := a.answers[q]
	return opt, ok
}

// Select records option opt for question q. Selections after submission
// are rejected without touching the attempt.
func (a *Attempt) Select(q, opt int) error {
	if a.phase != PhaseAnswering {
		return ErrSubmitted
	}
	if q < 0 || q >= len(a.questions) || opt < 0 || opt >= len(a.questions[q].Options) {
		return ErrInvalidSelection
	}
	a.answers[q] = opt
	return nil
}

// Unanswered returns the indices of questions with no selection, in order.
func (a *Attempt) Unanswered() []int {
	var out []int
	for i := range a.questions {
		if _, ok := a.answers[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// Result returns the graded result once submitted.
func (a *Attempt) Result() (Result, bool) {
	return a.result, a.phase == PhaseSubmitted
}

// Submit grades the attempt and freezes it. It fails with ErrSubmitted
// when called twice.
func (a *Attempt) Submit(now time.Time) (Result, error) {
	if a.phase != PhaseAnswering {
		return Result{}, ErrSubmitted
	}
	res := Result{
		AttemptID:   a.ID,
		Total:       len(a.questions),
		Outcomes:    make([]Outcome, len(a.questions)),
		SubmittedAt: now,
	}
	for i, q := range a.questions {
		o := Outcome{Selected: -1, CorrectIndex: q.CorrectIndex()}
		if opt, ok := a.answers[i]; ok {
			o.Selected = opt
			o.Correct = q.IsCorrect(opt)
		}
		if o.Correct {
			res.Correct++
		}
		res.Outcomes[i] = o
	}
	a.result = res
	a.phase = PhaseSubmitted
	return res, nil
}

// AnswerTexts returns the selected option text per answered question.
func (a *Attempt) AnswerTexts() map[int]string {
	out := make(map[int]string, len(a.answers))
	for q, opt := range a.answers {
		out[q] = a.questions[q].Options[opt]
	}
	return out
}

// Outcome is the graded state of one question.
type Outcome struct {
	Selected     int // -1 when unanswered
	CorrectIndex int // -1 when the answer matches no option
	Correct      bool
}

// Result is the immutable grade of a submitted attempt.
type Result struct {
	AttemptID   string
	Correct     int
	Total       int
	Outcomes    []Outcome
	SubmittedAt time.Time
}

// AllCorrect reports a perfect score. A quiz without questions is
// trivially all correct.
func (r Result) AllCorrect() bool {
	return r.Correct == r.Total
}

// ScorePercent is the score for display. A quiz without questions
// scores 100.
func (r Result) ScorePercent() int {
	if r.Total == 0 {
		return 100
	}
	return progression.ProgressPercent(r.Correct, r.Total)
}

// Wrong returns the indices of questions not answered correctly.
func (r Result) Wrong() []int {
	var out []int
	for i, o := range r.Outcomes {
		if !o.Correct {
			out = append(out, i)
		}
	}
	return out
}
