package progression

import (
	"github.com/omergehad405/EduMaster/internal/track"
)

// TrackSummary is everything a screen needs to render one track.
type TrackSummary struct {
	Track            track.Track
	State            TrackState
	Lessons          []LessonState
	CompletedLessons int
	TotalLessons     int
	Percent          int
	CurrentLessonID  string
}

// Action is the primary action for the summarized track.
func (s TrackSummary) Action() Action {
	return s.State.Action()
}

// Lesson returns the derived state of the lesson with the given id.
func (s TrackSummary) Lesson(id string) (LessonState, bool) {
	for _, ls := range s.Lessons {
		if ls.LessonID == id {
			return ls, true
		}
	}
	return LessonState{}, false
}

// Summarize derives the complete view state of one track for the learner.
// unlockedID is the most recent unlock override for the track, if any.
func (e *Engine) Summarize(t track.Track, lessons []track.Lesson, p Progression, unlockedID string) TrackSummary {
	rec := e.recordFor(t.ID, p)

	var completed IDSet
	if rec != nil {
		completed = NewIDSet(rec.CompletedLessons...)
	}

	done, total := e.countCompleted(t.ID, lessons, orEmpty(rec))
	s := TrackSummary{
		Track:            t,
		State:            classify(t.ID, len(lessons), rec != nil, done, total, p.CompletedSet()),
		Lessons:          e.DeriveLessonStates(lessons, completed, unlockedID),
		CompletedLessons: done,
		TotalLessons:     total,
		Percent:          ProgressPercent(done, total),
	}
	if id, ok := e.ResolveCurrentLesson(lessons, completed); ok {
		s.CurrentLessonID = id
	}
	return s
}

// recordFor returns the learner's progress record for a track, or nil when
// the learner is not enrolled. An enrolled learner without a record gets
// an empty one.
func (e *Engine) recordFor(trackID string, p Progression) *ProgressRecord {
	var found *ProgressRecord
	for i := range p.Records {
		if p.Records[i].TrackID != trackID {
			continue
		}
		if found != nil {
			e.reporter.Report(Issue{Kind: IssueDuplicateRecord, TrackID: trackID})
			continue
		}
		found = &p.Records[i]
	}

	enrolled := p.IsEnrolled(trackID)
	if p.IsCompleted(trackID) && !enrolled {
		e.reporter.Report(Issue{Kind: IssueNotEnrolled, TrackID: trackID})
	}
	switch {
	case found != nil && !enrolled:
		e.reporter.Report(Issue{Kind: IssueUnenrolledRecord, TrackID: trackID})
		return found
	case found != nil:
		return found
	case enrolled:
		return &ProgressRecord{TrackID: trackID}
	default:
		return nil
	}
}

func orEmpty(rec *ProgressRecord) *ProgressRecord {
	if rec == nil {
		return &ProgressRecord{}
	}
	return rec
}

// Stats aggregates progression across tracks for the statistics view.
type Stats struct {
	EnrolledTracks   int
	CompletedTracks  int
	TotalLessons     int
	CompletedLessons int
	AveragePercent   int
}

// Overview aggregates summaries into statistics. Track counts come from
// the progression itself; a completed track missing from the enrolled
// list is counted once.
func Overview(p Progression, summaries []TrackSummary) Stats {
	completed := NewIDSet(p.Completed...)
	enrolled := NewIDSet(p.Enrolled...)
	for id := range completed {
		enrolled[id] = struct{}{}
	}

	st := Stats{
		EnrolledTracks:  len(enrolled),
		CompletedTracks: len(completed),
	}
	sum := 0
	for _, s := range summaries {
		st.TotalLessons += s.TotalLessons
		st.CompletedLessons += s.CompletedLessons
		sum += s.Percent
	}
	if n := len(summaries); n > 0 {
		st.AveragePercent = (2*sum + n) / (2 * n)
	}
	return st
}
