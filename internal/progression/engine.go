package progression

import (
	"github.com/omergehad405/EduMaster/internal/track"
)

// Engine derives lesson and track view state from fetched track data and
// a learner's progression. It performs no I/O and keeps no state between
// calls; the reporter only observes data-quality issues.
type Engine struct {
	reporter Reporter
}

// NewEngine creates an Engine. A nil reporter discards issues.
func NewEngine(r Reporter) *Engine {
	if r == nil {
		r = nopReporter{}
	}
	return &Engine{reporter: r}
}

// DeriveLessonStates computes lock and completion flags for every lesson
// in order. A lesson is unlocked when it is the first one, when the
// lesson before it is completed, or when its id equals unlockedID.
func (e *Engine) DeriveLessonStates(lessons []track.Lesson, completed IDSet, unlockedID string) []LessonState {
	states := make([]LessonState, len(lessons))
	seen := make(IDSet, len(lessons))
	for i, l := range lessons {
		if l.ID == "" {
			e.reporter.Report(Issue{Kind: IssueMissingLessonID})
		} else if seen.Has(l.ID) {
			e.reporter.Report(Issue{Kind: IssueDuplicateLesson, LessonID: l.ID})
		}
		seen[l.ID] = struct{}{}

		done := l.ID != "" && completed.Has(l.ID)
		unlocked := i == 0 ||
			states[i-1].Completed ||
			(unlockedID != "" && l.ID == unlockedID)
		states[i] = LessonState{
			LessonID:  l.ID,
			Locked:    !unlocked,
			Completed: done,
		}
	}
	return states
}

// ResolveCurrentLesson returns the id of the first incomplete lesson in
// order. When every lesson is complete it returns the last lesson's id.
// It returns false only for an empty lesson list.
func (e *Engine) ResolveCurrentLesson(lessons []track.Lesson, completed IDSet) (string, bool) {
	if len(lessons) == 0 {
		return "", false
	}
	for _, l := range lessons {
		if l.ID == "" || !completed.Has(l.ID) {
			return l.ID, true
		}
	}
	return lessons[len(lessons)-1].ID, true
}

// ProgressPercent returns round(100*completed/total) with ties rounded
// up, clamped to 0..100. A zero total yields 0.
func ProgressPercent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return (200*completed + total) / (2 * total)
}

// ClassifyTrack derives the track state. A nil record means the learner
// is not enrolled. Server-reported completion wins over lesson counts.
func (e *Engine) ClassifyTrack(t track.Track, lessons []track.Lesson, rec *ProgressRecord, completedTracks IDSet) TrackState {
	var done, total int
	if rec != nil && len(lessons) > 0 {
		done, total = e.countCompleted(t.ID, lessons, rec)
	}
	return classify(t.ID, len(lessons), rec != nil, done, total, completedTracks)
}

func classify(trackID string, lessonCount int, enrolled bool, done, total int, completedTracks IDSet) TrackState {
	switch {
	case lessonCount == 0:
		return StateEmpty
	case completedTracks.Has(trackID):
		return StateCompleted
	case !enrolled:
		return StateNotEnrolled
	case done == total:
		return StateAwaitingFinalQuiz
	default:
		return StateInProgress
	}
}

// countCompleted returns how many distinct lessons of the track rec lists
// as completed, and the distinct lesson total. Lessons without an id count
// toward the total but never as completed. Record ids that reference no
// lesson of the track are reported and ignored.
func (e *Engine) countCompleted(trackID string, lessons []track.Lesson, rec *ProgressRecord) (done, total int) {
	completed := NewIDSet(rec.CompletedLessons...)
	known := make(IDSet, len(lessons))
	for _, l := range lessons {
		if l.ID == "" {
			total++
			continue
		}
		if known.Has(l.ID) {
			continue
		}
		known[l.ID] = struct{}{}
		total++
		if completed.Has(l.ID) {
			done++
		}
	}
	for id := range completed {
		if !known.Has(id) {
			e.reporter.Report(Issue{Kind: IssueDanglingLesson, TrackID: trackID, LessonID: id})
		}
	}
	return done, total
}
