package practice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/store"
	"github.com/omergehad405/EduMaster/internal/track"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// fakeAPI implements API for testing.
type fakeAPI struct {
	quizzes     []Quiz
	submitErr   error
	submitted   []Answer
	submitCalls int
	uploaded    Upload
}

func (f *fakeAPI) GenerateQuiz(_ context.Context, _ string, up Upload) (Quiz, error) {
	f.uploaded = up
	return Quiz{ID: "gen", FileName: up.Name}, nil
}

func (f *fakeAPI) MyQuizzes(context.Context, string) ([]Quiz, error) { return f.quizzes, nil }

func (f *fakeAPI) GetQuiz(_ context.Context, _ string, id string) (Quiz, error) {
	for _, q := range f.quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return Quiz{}, failure.ErrRemote
}

func (f *fakeAPI) SubmitQuiz(_ context.Context, _ string, quizID string, answers []Answer) (Attempt, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return Attempt{}, f.submitErr
	}
	f.submitted = answers
	score := 0
	for _, a := range answers {
		if a.Selected == "right" {
			score++
		}
	}
	return Attempt{ID: "srv-1", QuizID: quizID, Score: score, Total: len(answers)}, nil
}

func (f *fakeAPI) QuizAttempts(context.Context, string, string) ([]Attempt, error) {
	return []Attempt{{ID: "a1", Score: 1, Total: 2}}, nil
}

// memHistory is an in-memory store.AttemptRepo.
type memHistory struct{ recs []store.AttemptRecord }

func (m *memHistory) Append(_ context.Context, rec store.AttemptRecord) error {
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memHistory) Recent(context.Context, store.QueryOpts) ([]store.AttemptRecord, error) {
	return m.recs, nil
}

func twoQuestions() Quiz {
	return Quiz{ID: "q1", Questions: []track.Question{
		{Prompt: "A", Options: []string{"wrong", "right"}, Answer: "right"},
		{Prompt: "B", Options: []string{"right", "wrong"}, Answer: "right"},
	}}
}

func TestRunRequiresAllAnswers(t *testing.T) {
	api := &fakeAPI{}
	run := NewService(api, staticToken("tok"), nil, 0, nil).Start(twoQuestions())
	require.NoError(t, run.Select(0, 1))

	_, err := run.Submit(context.Background())

	var unanswered *quiz.UnansweredError
	require.ErrorAs(t, err, &unanswered)
	assert.Equal(t, []int{1}, unanswered.Indices)
	assert.ErrorIs(t, err, failure.ErrValidation)
	assert.Equal(t, 0, api.submitCalls)
}

func TestRunSubmitsAndRecords(t *testing.T) {
	api := &fakeAPI{}
	hist := &memHistory{}
	svc := NewService(api, staticToken("tok"), hist, 0, nil)
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	run := svc.Start(twoQuestions())
	require.NoError(t, run.Select(1, 1))
	require.NoError(t, run.Select(0, 1))

	got, err := run.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Answer{{QuestionIndex: 0, Selected: "right"}, {QuestionIndex: 1, Selected: "wrong"}}, api.submitted)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, 50, got.Percent())

	review, ok := run.Review()
	require.True(t, ok)
	assert.Equal(t, 1, review.Correct)

	require.Len(t, hist.recs, 1)
	assert.Equal(t, store.AttemptRecord{
		ID: "srv-1", Kind: KindPractice, QuizID: "q1", Correct: 1, Total: 2, SubmittedAt: at,
	}, hist.recs[0])

	_, err = run.Submit(context.Background())
	assert.ErrorIs(t, err, quiz.ErrSubmitted)
	assert.ErrorIs(t, run.Select(0, 0), quiz.ErrSubmitted)
}

func TestRunFailureKeepsSelections(t *testing.T) {
	api := &fakeAPI{submitErr: failure.ErrRemote}
	run := NewService(api, staticToken("tok"), nil, 0, nil).Start(twoQuestions())
	require.NoError(t, run.Select(0, 1))
	require.NoError(t, run.Select(1, 0))

	_, err := run.Submit(context.Background())
	assert.ErrorIs(t, err, failure.ErrRemote)
	opt, ok := run.Selected(0)
	assert.True(t, ok)
	assert.Equal(t, 1, opt)
	_, graded := run.Graded()
	assert.False(t, graded)

	api.submitErr = nil
	got, err := run.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Score)
}

func TestServiceNeedsToken(t *testing.T) {
	svc := NewService(&fakeAPI{}, staticToken(""), nil, 0, nil)
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, failure.ErrAuthRequired)
	_, err = svc.Generate(context.Background(), "notes.txt")
	assert.ErrorIs(t, err, failure.ErrAuthRequired)
}

func TestListNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeAPI{quizzes: []Quiz{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(48 * time.Hour)},
	}}
	qs, err := NewService(api, staticToken("tok"), nil, 0, nil).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", qs[0].ID)
}

func TestGenerateInspectsUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Channels connect goroutines.\n"), 0o644))
	api := &fakeAPI{}

	q, err := NewService(api, staticToken("tok"), nil, 0, nil).Generate(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", q.FileName)
	assert.Equal(t, "notes.txt", api.uploaded.Name)
	assert.Contains(t, api.uploaded.MIME, "text/plain")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o644))
		return p
	}
	png := write("pic.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	pdf := write("doc.pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"))
	fakePNG := write("fake.png", []byte("just some text"))
	exe := write("tool.exe", []byte("MZ\x90\x00"))
	big := write("big.txt", make([]byte, 2048))
	empty := write("empty.txt", nil)

	tests := []struct {
		name    string
		path    string
		max     int64
		wantErr bool
	}{
		{"png", png, 0, false},
		{"pdf", pdf, 0, false},
		{"content mismatch", fakePNG, 0, true},
		{"extension", exe, 0, true},
		{"too big", big, 1024, true},
		{"empty", empty, 0, true},
		{"missing", filepath.Join(dir, "nope.pdf"), 0, true},
		{"directory", dir, 0, true},
		{"blank", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, err := Inspect(tt.path, tt.max)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, filepath.Base(tt.path), up.Name)
				assert.NotEmpty(t, up.HumanSize())
				return
			}
			var upErr *UploadError
			require.True(t, errors.As(err, &upErr), "got %v", err)
			assert.ErrorIs(t, err, failure.ErrValidation)
		})
	}
}

func TestInspectSizeMessage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(p, make([]byte, 3000), 0o644))

	_, err := Inspect(p, 1000)

	assert.Equal(t, "big.txt: file is 3.0 kB, the limit is 1.0 kB", failure.Notice(err))
}
