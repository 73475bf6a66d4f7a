package progression

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/track"
)

type recordingReporter struct {
	issues []Issue
}

func (r *recordingReporter) Report(i Issue) { r.issues = append(r.issues, i) }

func lessonsOf(ids ...string) []track.Lesson {
	out := make([]track.Lesson, len(ids))
	for i, id := range ids {
		out[i] = track.Lesson{ID: id, Title: "Lesson " + id}
	}
	return out
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 3, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13}, // 12.5 rounds up
		{0, 5, 0},
		{7, 5, 100},
		{-1, 5, 0},
		{3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.completed, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPercent(tt.completed, tt.total))
		})
	}
}

func TestResolveCurrentLesson(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name      string
		lessons   []track.Lesson
		completed IDSet
		want      string
		wantOK    bool
	}{
		{"empty list", nil, NewIDSet("a"), "", false},
		{"nothing completed", lessonsOf("a", "b", "c"), nil, "a", true},
		{"first incomplete", lessonsOf("a", "b", "c"), NewIDSet("a"), "b", true},
		{"gap in the middle", lessonsOf("a", "b", "c"), NewIDSet("a", "c"), "b", true},
		{"all completed lands on last", lessonsOf("a", "b"), NewIDSet("a", "b"), "b", true},
		{"unknown ids ignored", lessonsOf("a", "b"), NewIDSet("x", "y"), "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ResolveCurrentLesson(tt.lessons, tt.completed)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCurrentLessonAlwaysMember(t *testing.T) {
	e := NewEngine(nil)
	ids := []string{"a", "b", "c", "d"}
	// Every subset of completed lessons over every prefix of the list.
	for n := 0; n <= len(ids); n++ {
		lessons := lessonsOf(ids[:n]...)
		for mask := 0; mask < 1<<len(ids); mask++ {
			var done []string
			for i, id := range ids {
				if mask&(1<<i) != 0 {
					done = append(done, id)
				}
			}
			got, ok := e.ResolveCurrentLesson(lessons, NewIDSet(done...))
			if n == 0 {
				require.False(t, ok)
				continue
			}
			require.True(t, ok)
			require.GreaterOrEqual(t, track.IndexOf(lessons, got), 0, "lessons=%v done=%v", ids[:n], done)
		}
	}
}

func TestDeriveLessonStates(t *testing.T) {
	e := NewEngine(nil)
	lessons := lessonsOf("a", "b", "c", "d")

	tests := []struct {
		name      string
		completed IDSet
		unlocked  string
		want      []LessonState
	}{
		{
			name: "fresh track unlocks only the first lesson",
			want: []LessonState{
				{LessonID: "a"},
				{LessonID: "b", Locked: true},
				{LessonID: "c", Locked: true},
				{LessonID: "d", Locked: true},
			},
		},
		{
			name:      "completed lesson unlocks its successor",
			completed: NewIDSet("a"),
			want: []LessonState{
				{LessonID: "a", Completed: true},
				{LessonID: "b"},
				{LessonID: "c", Locked: true},
				{LessonID: "d", Locked: true},
			},
		},
		{
			name:      "override unlocks a lesson out of sequence",
			completed: NewIDSet("a"),
			unlocked:  "d",
			want: []LessonState{
				{LessonID: "a", Completed: true},
				{LessonID: "b"},
				{LessonID: "c", Locked: true},
				{LessonID: "d"},
			},
		},
		{
			name:      "unknown completed ids are ignored",
			completed: NewIDSet("zz"),
			want: []LessonState{
				{LessonID: "a"},
				{LessonID: "b", Locked: true},
				{LessonID: "c", Locked: true},
				{LessonID: "d", Locked: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.DeriveLessonStates(lessons, tt.completed, tt.unlocked)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DeriveLessonStates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeriveLessonStatesReportsBadIDs(t *testing.T) {
	rep := &recordingReporter{}
	e := NewEngine(rep)
	lessons := []track.Lesson{{ID: "a"}, {ID: ""}, {ID: "a"}}

	got := e.DeriveLessonStates(lessons, NewIDSet("a"), "")
	require.Len(t, got, 3)
	assert.False(t, got[1].Completed)
	assert.Len(t, rep.issues, 2)
	assert.Equal(t, IssueMissingLessonID, rep.issues[0].Kind)
	assert.Equal(t, IssueDuplicateLesson, rep.issues[1].Kind)
}

func TestClassifyTrack(t *testing.T) {
	tr := track.Track{ID: "t1"}
	abc := lessonsOf("a", "b", "c")

	tests := []struct {
		name      string
		lessons   []track.Lesson
		rec       *ProgressRecord
		completed IDSet
		want      TrackState
	}{
		{"zero lessons", nil, &ProgressRecord{TrackID: "t1"}, nil, StateEmpty},
		{"not enrolled", abc, nil, nil, StateNotEnrolled},
		{"in progress", abc, &ProgressRecord{TrackID: "t1", CompletedLessons: []string{"a"}}, nil, StateInProgress},
		{"enrolled nothing done", abc, &ProgressRecord{TrackID: "t1"}, nil, StateInProgress},
		{"all lessons done", lessonsOf("a", "b"), &ProgressRecord{TrackID: "t1", CompletedLessons: []string{"a", "b"}}, nil, StateAwaitingFinalQuiz},
		{"server completion wins", abc, &ProgressRecord{TrackID: "t1"}, NewIDSet("t1"), StateCompleted},
		{"server completion without record", abc, nil, NewIDSet("t1"), StateCompleted},
		{"dangling ids do not count", lessonsOf("a", "b"), &ProgressRecord{TrackID: "t1", CompletedLessons: []string{"a", "x"}}, nil, StateInProgress},
		{"other track completed", abc, &ProgressRecord{TrackID: "t1", CompletedLessons: []string{"a", "b", "c"}}, NewIDSet("t2"), StateAwaitingFinalQuiz},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(nil)
			assert.Equal(t, tt.want, e.ClassifyTrack(tr, tt.lessons, tt.rec, tt.completed))
		})
	}
}

func TestClassifyTrackReportsDanglingIDs(t *testing.T) {
	rep := &recordingReporter{}
	e := NewEngine(rep)
	rec := &ProgressRecord{TrackID: "t1", CompletedLessons: []string{"a", "ghost"}}

	e.ClassifyTrack(track.Track{ID: "t1"}, lessonsOf("a", "b"), rec, nil)

	require.Len(t, rep.issues, 1)
	assert.Equal(t, IssueDanglingLesson, rep.issues[0].Kind)
	assert.Equal(t, "ghost", rep.issues[0].LessonID)
	assert.True(t, errors.Is(rep.issues[0], failure.ErrDataIntegrity))
}

func TestScenarioInProgress(t *testing.T) {
	e := NewEngine(nil)
	lessons := lessonsOf("A", "B", "C")
	done := NewIDSet("A")

	cur, ok := e.ResolveCurrentLesson(lessons, done)
	require.True(t, ok)
	assert.Equal(t, "B", cur)
	assert.Equal(t, 33, ProgressPercent(1, 3))
	rec := &ProgressRecord{TrackID: "t", CompletedLessons: []string{"A"}}
	assert.Equal(t, StateInProgress, e.ClassifyTrack(track.Track{ID: "t"}, lessons, rec, nil))
}

func TestScenarioAwaitingFinalQuiz(t *testing.T) {
	e := NewEngine(nil)
	lessons := lessonsOf("A", "B")
	rec := &ProgressRecord{TrackID: "t", CompletedLessons: []string{"A", "B"}}

	assert.Equal(t, StateAwaitingFinalQuiz, e.ClassifyTrack(track.Track{ID: "t"}, lessons, rec, NewIDSet()))
	cur, _ := e.ResolveCurrentLesson(lessons, NewIDSet("A", "B"))
	assert.Equal(t, "B", cur)
}

func TestScenarioEmptyTrack(t *testing.T) {
	e := NewEngine(nil)
	state := e.ClassifyTrack(track.Track{ID: "t"}, nil, &ProgressRecord{TrackID: "t"}, nil)
	assert.Equal(t, StateEmpty, state)
	assert.Equal(t, 0, ProgressPercent(0, 0))
	assert.Equal(t, ActionNone, state.Action())
}

func TestStateActions(t *testing.T) {
	assert.Equal(t, ActionEnroll, StateNotEnrolled.Action())
	assert.Equal(t, ActionContinue, StateInProgress.Action())
	assert.Equal(t, ActionFinalQuiz, StateAwaitingFinalQuiz.Action())
	assert.Equal(t, ActionReview, StateCompleted.Action())
	assert.Equal(t, "Take final quiz", ActionFinalQuiz.Label())
}
