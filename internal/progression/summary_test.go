package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omergehad405/EduMaster/internal/track"
)

func TestSummarize(t *testing.T) {
	e := NewEngine(nil)
	tr := track.Track{ID: "go", Title: "Go"}
	lessons := lessonsOf("a", "b", "c")

	t.Run("enrolled with progress", func(t *testing.T) {
		p := Progression{
			Enrolled: []string{"go"},
			Records:  []ProgressRecord{{TrackID: "go", CompletedLessons: []string{"a"}}},
		}
		s := e.Summarize(tr, lessons, p, "")
		assert.Equal(t, StateInProgress, s.State)
		assert.Equal(t, 1, s.CompletedLessons)
		assert.Equal(t, 3, s.TotalLessons)
		assert.Equal(t, 33, s.Percent)
		assert.Equal(t, "b", s.CurrentLessonID)
		assert.Equal(t, ActionContinue, s.Action())

		ls, ok := s.Lesson("c")
		require.True(t, ok)
		assert.True(t, ls.Locked)
	})

	t.Run("enrolled without record", func(t *testing.T) {
		s := e.Summarize(tr, lessons, Progression{Enrolled: []string{"go"}}, "")
		assert.Equal(t, StateInProgress, s.State)
		assert.Equal(t, 0, s.Percent)
		assert.Equal(t, "a", s.CurrentLessonID)
	})

	t.Run("not enrolled", func(t *testing.T) {
		s := e.Summarize(tr, lessons, Progression{}, "")
		assert.Equal(t, StateNotEnrolled, s.State)
		assert.Equal(t, ActionEnroll, s.Action())
	})

	t.Run("override applies", func(t *testing.T) {
		p := Progression{Enrolled: []string{"go"}}
		s := e.Summarize(tr, lessons, p, "c")
		ls, _ := s.Lesson("c")
		assert.False(t, ls.Locked)
	})

	t.Run("completed by server", func(t *testing.T) {
		p := Progression{
			Enrolled:  []string{"go"},
			Completed: []string{"go"},
			Records:   []ProgressRecord{{TrackID: "go", CompletedLessons: []string{"a", "b", "c"}}},
		}
		s := e.Summarize(tr, lessons, p, "")
		assert.Equal(t, StateCompleted, s.State)
		assert.Equal(t, 100, s.Percent)
	})
}

func TestSummarizeReportsInconsistencies(t *testing.T) {
	rep := &recordingReporter{}
	e := NewEngine(rep)
	p := Progression{
		Completed: []string{"go"},
		Records: []ProgressRecord{
			{TrackID: "go", CompletedLessons: []string{"a"}},
			{TrackID: "go", CompletedLessons: []string{"b"}},
		},
	}

	s := e.Summarize(track.Track{ID: "go"}, lessonsOf("a", "b"), p, "")

	assert.Equal(t, StateCompleted, s.State)
	assert.Equal(t, 1, s.CompletedLessons, "first record wins")
	kinds := make(map[IssueKind]bool)
	for _, i := range rep.issues {
		kinds[i.Kind] = true
	}
	assert.True(t, kinds[IssueDuplicateRecord])
	assert.True(t, kinds[IssueNotEnrolled])
	assert.True(t, kinds[IssueUnenrolledRecord])
}

func TestOverview(t *testing.T) {
	p := Progression{
		Enrolled:  []string{"a", "b"},
		Completed: []string{"b", "c"},
	}
	summaries := []TrackSummary{
		{CompletedLessons: 1, TotalLessons: 3, Percent: 33},
		{CompletedLessons: 2, TotalLessons: 3, Percent: 67},
		{CompletedLessons: 4, TotalLessons: 4, Percent: 100},
	}

	st := Overview(p, summaries)

	assert.Equal(t, 3, st.EnrolledTracks)
	assert.Equal(t, 2, st.CompletedTracks)
	assert.Equal(t, 10, st.TotalLessons)
	assert.Equal(t, 7, st.CompletedLessons)
	assert.Equal(t, 67, st.AveragePercent)

	assert.Equal(t, Stats{}, Overview(Progression{}, nil))
}

func TestProgressionApplyReplacesWholeSubRecords(t *testing.T) {
	p := Progression{
		Enrolled:  []string{"a"},
		Completed: []string{"x"},
		Records:   []ProgressRecord{{TrackID: "a", CompletedLessons: []string{"l1"}}},
	}

	got := p.Apply(Update{
		Fields:   FieldEnrolled | FieldRecords,
		Enrolled: []string{"a", "b"},
		Records:  []ProgressRecord{{TrackID: "b"}},
	})

	assert.Equal(t, []string{"a", "b"}, got.Enrolled)
	assert.Equal(t, []string{"x"}, got.Completed, "unflagged sub-record kept")
	require.Len(t, got.Records, 1)
	assert.Equal(t, "b", got.Records[0].TrackID)

	// Original untouched.
	assert.Equal(t, []string{"a"}, p.Enrolled)
	assert.Equal(t, "a", p.Records[0].TrackID)
}

func TestUnlocks(t *testing.T) {
	u := NewUnlocks()
	u.Set("t1", "l2")
	assert.Equal(t, "l2", u.Get("t1"))
	u.Set("t1", "l3")
	assert.Equal(t, "l3", u.Get("t1"))
	u.Set("t1", "")
	assert.Equal(t, "", u.Get("t1"))
	u.Set("t2", "x")
	u.Reset()
	assert.Equal(t, "", u.Get("t2"))

	var nilUnlocks *Unlocks
	assert.Equal(t, "", nilUnlocks.Get("t1"))
}
