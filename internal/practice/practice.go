// Package practice covers quizzes generated by the server from a file the
// learner uploads: uploading, listing, taking and reviewing them. Practice
// quizzes never affect track progression.
package practice

import (
	"context"
	"time"

	"github.com/omergehad405/EduMaster/internal/track"
)

// Quiz is a generated practice quiz.
type Quiz struct {
	ID        string
	FileName  string
	Questions []track.Question
	CreatedAt time.Time
}

// Answer is one graded answer of a practice attempt.
type Answer struct {
	QuestionIndex int
	Selected      string
	Correct       bool
}

// Attempt is a server-graded submission of a practice quiz.
type Attempt struct {
	ID        string
	QuizID    string
	Score     int
	Total     int
	Answers   []Answer
	CreatedAt time.Time
}

// Percent returns the score rounded to a whole percentage.
func (a Attempt) Percent() int {
	if a.Total <= 0 {
		return 0
	}
	return (200*a.Score + a.Total) / (2 * a.Total)
}

// API is the remote side of practice quizzes.
type API interface {
	GenerateQuiz(ctx context.Context, token string, up Upload) (Quiz, error)
	MyQuizzes(ctx context.Context, token string) ([]Quiz, error)
	GetQuiz(ctx context.Context, token, quizID string) (Quiz, error)
	SubmitQuiz(ctx context.Context, token, quizID string, answers []Answer) (Attempt, error)
	QuizAttempts(ctx context.Context, token, quizID string) ([]Attempt, error)
}
