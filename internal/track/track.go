package track

// Level is the difficulty label of a track. Known values are listed below;
// the API may send free text, which is kept verbatim.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Track is a structured learning path made of ordered lessons.
type Track struct {
	ID          string
	Title       string
	Description string
	Level       Level
	LessonCount int
	FinalQuiz   []Question
	Overview    Overview
}

// Overview is the introductory material shown before a track's lessons.
type Overview struct {
	Paragraphs []string
	Images     []string
}

// Lesson is an atomic content unit within a track. Slice order inside a
// track defines the lesson sequence.
type Lesson struct {
	ID       string
	Title    string
	Content  []ContentBlock
	VideoURL string
	Quiz     []Question
}

// BlockKind identifies how a content block is rendered.
type BlockKind string

const (
	BlockHeading BlockKind = "heading"
	BlockText    BlockKind = "text"
	BlockImage   BlockKind = "image"
	BlockCode    BlockKind = "code"
)

// ContentBlock is one ordered piece of lesson content.
type ContentBlock struct {
	Kind     BlockKind
	Text     string
	Language string // code blocks only
}

// LessonIDs returns the ids of lessons in order.
func LessonIDs(lessons []Lesson) []string {
	ids := make([]string, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids
}

// IndexOf returns the position of the lesson with the given id, or -1.
func IndexOf(lessons []Lesson, id string) int {
	for i, l := range lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// FinalQuizQuestions returns the questions of a track's final quiz. The
// explicit final quiz wins when it has questions; otherwise every lesson
// quiz is concatenated in lesson order.
func FinalQuizQuestions(t Track, lessons []Lesson) []Question {
	if len(t.FinalQuiz) > 0 {
		return t.FinalQuiz
	}
	var qs []Question
	for _, l := range lessons {
		qs = append(qs, l.Quiz...)
	}
	return qs
}
