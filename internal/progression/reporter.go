package progression

import (
	"fmt"

	"github.com/omergehad405/EduMaster/internal/failure"
)

// IssueKind names a data-quality problem found while deriving state.
type IssueKind string

const (
	IssueMissingLessonID  IssueKind = "missing-lesson-id"
	IssueDuplicateLesson  IssueKind = "duplicate-lesson"
	IssueDanglingLesson   IssueKind = "dangling-lesson"
	IssueDuplicateRecord  IssueKind = "duplicate-record"
	IssueUnenrolledRecord IssueKind = "record-without-enrollment"
	IssueNotEnrolled      IssueKind = "completed-without-enrollment"
)

// Issue describes one data-quality problem. It is an error that matches
// failure.ErrDataIntegrity.
type Issue struct {
	Kind     IssueKind
	TrackID  string
	LessonID string
}

func (i Issue) Error() string {
	return fmt.Sprintf("progression: %s (track=%q lesson=%q)", i.Kind, i.TrackID, i.LessonID)
}

func (i Issue) Is(target error) bool {
	return target == failure.ErrDataIntegrity
}

// Reporter receives data-quality issues. The engine never fails on bad
// data; it degrades and reports instead.
type Reporter interface {
	Report(Issue)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Issue)

func (f ReporterFunc) Report(i Issue) { f(i) }

type nopReporter struct{}

func (nopReporter) Report(Issue) {}
