package gateway

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/practice"
)

// GenerateQuiz uploads a study file for server-side quiz generation.
func (c *Client) GenerateQuiz(ctx context.Context, token string, up practice.Upload) (practice.Quiz, error) {
	var out struct {
		Quiz *wireQuiz `json:"quiz"`
		wireQuiz
	}
	err := c.do(ctx, call{
		op:     "generate quiz",
		method: http.MethodPost,
		path:   "/quizzes/generate",
		token:  token,
		auth:   true,
		form:   (&formBody{}).file("file", up.Path, up.MIME),
	}, &out)
	if err != nil {
		return practice.Quiz{}, err
	}
	q := out.wireQuiz
	if out.Quiz != nil {
		q = *out.Quiz
	}
	if err := checkQuiz("generate quiz", q); err != nil {
		return practice.Quiz{}, err
	}
	return q.quiz(), nil
}

// MyQuizzes lists the practice quizzes generated for the user.
func (c *Client) MyQuizzes(ctx context.Context, token string) ([]practice.Quiz, error) {
	var out struct {
		Quizzes []wireQuiz `json:"quizzes"`
	}
	err := c.do(ctx, call{
		op:     "list quizzes",
		method: http.MethodGet,
		path:   "/quizzes/my",
		token:  token,
		auth:   true,
		schema: schemaQuizList,
	}, &out)
	if err != nil {
		return nil, err
	}
	quizzes := make([]practice.Quiz, 0, len(out.Quizzes))
	for i, q := range out.Quizzes {
		if q.ID == "" {
			c.log.Warn("skip practice quiz without id", zap.Int("index", i))
			continue
		}
		quizzes = append(quizzes, q.quiz())
	}
	return quizzes, nil
}

// GetQuiz fetches one practice quiz.
func (c *Client) GetQuiz(ctx context.Context, token, quizID string) (practice.Quiz, error) {
	var out wireQuiz
	err := c.do(ctx, call{
		op:     "get quiz",
		method: http.MethodGet,
		path:   "/quizzes/" + url.PathEscape(quizID),
		token:  token,
		auth:   true,
		schema: schemaQuiz,
	}, &out)
	if err != nil {
		return practice.Quiz{}, err
	}
	return out.quiz(), nil
}

// SubmitQuiz sends the learner's answers for server grading.
func (c *Client) SubmitQuiz(ctx context.Context, token, quizID string, answers []practice.Answer) (practice.Attempt, error) {
	type answer struct {
		QuestionIndex  int    `json:"questionIndex"`
		SelectedAnswer string `json:"selectedAnswer"`
	}
	body := struct {
		QuizID  string   `json:"quizId"`
		Answers []answer `json:"answers"`
	}{QuizID: quizID, Answers: make([]answer, len(answers))}
	for i, a := range answers {
		body.Answers[i] = answer{QuestionIndex: a.QuestionIndex, SelectedAnswer: a.Selected}
	}

	var out wireAttempt
	err := c.do(ctx, call{
		op:     "submit quiz",
		method: http.MethodPost,
		path:   "/quizzes/submit",
		token:  token,
		auth:   true,
		body:   body,
		schema: schemaAttempt,
	}, &out)
	if err != nil {
		return practice.Attempt{}, err
	}
	return out.attempt(quizID), nil
}

// QuizAttempts lists previous attempts of a practice quiz, oldest first.
func (c *Client) QuizAttempts(ctx context.Context, token, quizID string) ([]practice.Attempt, error) {
	var out []wireAttempt
	err := c.do(ctx, call{
		op:     "list quiz attempts",
		method: http.MethodGet,
		path:   "/quizzes/" + url.PathEscape(quizID) + "/attempts",
		token:  token,
		auth:   true,
		schema: schemaAttemptList,
	}, &out)
	if err != nil {
		return nil, err
	}
	attempts := make([]practice.Attempt, len(out))
	for i, a := range out {
		attempts[i] = a.attempt(quizID)
	}
	return attempts, nil
}

// checkQuiz validates a quiz decoded without a fixed envelope shape.
func checkQuiz(op string, q wireQuiz) error {
	if q.ID == "" {
		return &InvalidPayloadError{Op: op, Err: errMissingID}
	}
	return nil
}
