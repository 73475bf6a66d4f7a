package progression

// TrackState is the derived position of a learner within one track. Every
// track-level affordance (enroll, continue, final quiz, completed badge)
// is decided from this value alone.
type TrackState string

const (
	StateNotEnrolled       TrackState = "not-enrolled"
	StateInProgress        TrackState = "in-progress"
	StateAwaitingFinalQuiz TrackState = "awaiting-final-quiz"
	StateCompleted         TrackState = "completed"
	StateEmpty             TrackState = "empty"
)

// Label returns a short human label for the state.
func (s TrackState) Label() string {
	switch s {
	case StateNotEnrolled:
		return "Not enrolled"
	case StateInProgress:
		return "In progress"
	case StateAwaitingFinalQuiz:
		return "Final quiz unlocked"
	case StateCompleted:
		return "Completed"
	case StateEmpty:
		return "No lessons yet"
	default:
		return string(s)
	}
}

// Action is the primary thing a learner can do with a track.
type Action string

const (
	ActionNone      Action = ""
	ActionEnroll    Action = "enroll"
	ActionContinue  Action = "continue"
	ActionFinalQuiz Action = "final-quiz"
	ActionReview    Action = "review"
)

// Action maps the state to the primary action offered for it. Empty
// tracks offer nothing.
func (s TrackState) Action() Action {
	switch s {
	case StateNotEnrolled:
		return ActionEnroll
	case StateInProgress:
		return ActionContinue
	case StateAwaitingFinalQuiz:
		return ActionFinalQuiz
	case StateCompleted:
		return ActionReview
	default:
		return ActionNone
	}
}

// Label returns the button text for the action.
func (a Action) Label() string {
	switch a {
	case ActionEnroll:
		return "Enroll"
	case ActionContinue:
		return "Continue"
	case ActionFinalQuiz:
		return "Take final quiz"
	case ActionReview:
		return "Review lessons"
	default:
		return ""
	}
}

// LessonState is the derived view state of one lesson.
type LessonState struct {
	LessonID  string
	Locked    bool
	Completed bool
}
