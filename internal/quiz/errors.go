package quiz

import (
	"errors"
	"fmt"

	"github.com/omergehad405/EduMaster/internal/failure"
)

var (
	// ErrSubmitted is returned when an attempt is changed after submission.
	ErrSubmitted = fmt.Errorf("quiz already submitted: %w", failure.ErrValidation)

	// ErrNotSubmitted is returned when an operation needs a graded attempt.
	ErrNotSubmitted = fmt.Errorf("quiz not submitted yet: %w", failure.ErrValidation)

	// ErrInvalidSelection is returned for out-of-range question or option indices.
	ErrInvalidSelection = fmt.Errorf("invalid selection: %w", failure.ErrValidation)

	// ErrNotPassed is returned when completion is requested without a perfect score.
	ErrNotPassed = fmt.Errorf("every answer must be correct to complete the quiz: %w", failure.ErrValidation)

	// ErrInFlight is returned while a completion request is outstanding.
	ErrInFlight = errors.New("completion request already in flight")

	// ErrAlreadyCompleted is returned when the attempt's completion was
	// already confirmed by the server.
	ErrAlreadyCompleted = errors.New("quiz completion already confirmed")
)

// UnansweredError rejects a final-quiz submission with open questions.
type UnansweredError struct {
	Indices []int
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("%d question(s) unanswered", len(e.Indices))
}

func (e *UnansweredError) UserMessage() string {
	return "Please answer all questions before submitting."
}

func (e *UnansweredError) Is(target error) bool {
	return target == failure.ErrValidation
}
