package track

import (
	"testing"
)

func TestCorrectIndexFirstOccurrence(t *testing.T) {
	q := Question{Prompt: "pick", Options: []string{"a", "b", "a"}, Answer: "a"}
	if got := q.CorrectIndex(); got != 0 {
		t.Errorf("CorrectIndex() = %d, want 0", got)
	}
	if q.IsCorrect(2) {
		t.Error("IsCorrect(2) = true, want false for duplicate option")
	}
	if !q.IsCorrect(0) {
		t.Error("IsCorrect(0) = false, want true")
	}
}

func TestAnswerNotInOptions(t *testing.T) {
	q := Question{Options: []string{"x", "y"}, Answer: "z"}
	if q.Valid() {
		t.Error("Valid() = true, want false")
	}
	for i := range q.Options {
		if q.IsCorrect(i) {
			t.Errorf("IsCorrect(%d) = true, want false", i)
		}
	}
}

func TestAnswerMatchIsExact(t *testing.T) {
	q := Question{Options: []string{"Go", "go "}, Answer: "go"}
	if q.CorrectIndex() != -1 {
		t.Errorf("CorrectIndex() = %d, want -1", q.CorrectIndex())
	}
}

func TestFinalQuizQuestions(t *testing.T) {
	lessons := []Lesson{
		{ID: "a", Quiz: []Question{{Prompt: "a1"}, {Prompt: "a2"}}},
		{ID: "b"},
		{ID: "c", Quiz: []Question{{Prompt: "c1"}}},
	}

	t.Run("aggregates lesson quizzes", func(t *testing.T) {
		got := FinalQuizQuestions(Track{ID: "t"}, lessons)
		want := []string{"a1", "a2", "c1"}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i, q := range got {
			if q.Prompt != want[i] {
				t.Errorf("question %d = %q, want %q", i, q.Prompt, want[i])
			}
		}
	})

	t.Run("prefers explicit final quiz", func(t *testing.T) {
		tr := Track{ID: "t", FinalQuiz: []Question{{Prompt: "f1"}}}
		got := FinalQuizQuestions(tr, lessons)
		if len(got) != 1 || got[0].Prompt != "f1" {
			t.Errorf("got %+v, want only f1", got)
		}
	})
}

func TestIndexOf(t *testing.T) {
	lessons := []Lesson{{ID: "a"}, {ID: "b"}}
	if IndexOf(lessons, "b") != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", IndexOf(lessons, "b"))
	}
	if IndexOf(lessons, "zz") != -1 {
		t.Errorf("IndexOf(zz) = %d, want -1", IndexOf(lessons, "zz"))
	}
	ids := LessonIDs(lessons)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("LessonIDs = %v", ids)
	}
}
