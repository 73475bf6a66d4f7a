package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/practice"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/track"
)

// refID is an entity reference that arrives either as a bare id or as a
// populated document carrying "_id".
type refID string

func (r *refID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = refID(s)
		return nil
	}
	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	*r = refID(doc.ID)
	return nil
}

// refIDs converts references to ids, dropping empty ones.
func refIDs(in []refID) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r != "" {
			out = append(out, string(r))
		}
	}
	return out
}

// flexInt accepts a number, a numeric string, or an object with a
// "current" member (the streak counter).
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = 0
	case b[0] == '{':
		var doc struct {
			Current flexInt `json:"current"`
			Count   flexInt `json:"count"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		*f = doc.Current
		if *f == 0 {
			*f = doc.Count
		}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*f = flexInt(n)
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = flexInt(n)
	}
	return nil
}

// flexStrings accepts a string or a list of strings.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = splitParagraphs(s)
	default:
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return err
		}
		*f = ss
	}
	return nil
}

// flexTime accepts an RFC 3339 string or a Unix timestamp in seconds or
// milliseconds. Anything else decodes to the zero time.
type flexTime time.Time

// unixMillisCutoff separates second and millisecond Unix timestamps.
const unixMillisCutoff = 1e11

func (f *flexTime) UnmarshalJSON(b []byte) error {
	*f = flexTime{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			*f = flexTime(t)
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil || n <= 0 {
		return nil
	}
	if n >= unixMillisCutoff {
		*f = flexTime(time.UnixMilli(int64(n)))
	} else {
		*f = flexTime(time.Unix(int64(n), 0))
	}
	return nil
}

func (f flexTime) Time() time.Time { return time.Time(f) }

type wireProgress struct {
	Track            refID   `json:"track"`
	CompletedLessons []refID `json:"completedLessons"`
}

// records converts progress records. Records without a track id are
// dropped and logged.
func (c *Client) records(op string, in []wireProgress) []progression.ProgressRecord {
	out := make([]progression.ProgressRecord, 0, len(in))
	for i, p := range in {
		if p.Track == "" {
			c.log.Warn("skip progress record without track",
				zap.String("op", op),
				zap.Int("index", i))
			continue
		}
		out = append(out, progression.ProgressRecord{
			TrackID:          string(p.Track),
			CompletedLessons: refIDs(p.CompletedLessons),
		})
	}
	return out
}

type wireActivity struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Timestamp   flexTime `json:"timestamp"`
}

type wireUser struct {
	ID              string         `json:"_id"`
	Username        string         `json:"username"`
	Email           string         `json:"email"`
	Avatar          string         `json:"avatar"`
	XP              flexInt        `json:"xp"`
	Streak          flexInt        `json:"streak"`
	EnrolledTracks  []refID        `json:"enrolledTracks"`
	CompletedTracks []refID        `json:"completedTracks"`
	Progress        []wireProgress `json:"progress"`
	Activity        []wireActivity `json:"activity"`
}

func (c *Client) profile(op string, w wireUser) identity.Profile {
	u := identity.User{
		ID:        w.ID,
		Username:  w.Username,
		Email:     w.Email,
		AvatarURL: w.Avatar,
		XP:        int(w.XP),
		Streak:    int(w.Streak),
	}
	for _, a := range w.Activity {
		u.Activity = append(u.Activity, identity.Activity{
			Kind:    a.Type,
			Message: a.Description,
			At:      a.Timestamp.Time(),
		})
	}
	return identity.Profile{
		User: u,
		Progression: progression.Progression{
			Enrolled:  refIDs(w.EnrolledTracks),
			Completed: refIDs(w.CompletedTracks),
			Records:   c.records(op, w.Progress),
		},
	}
}

type wireQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	Answer        *string  `json:"answer"`
	CorrectAnswer *string  `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

func (w wireQuestion) question() track.Question {
	q := track.Question{
		Prompt:      w.Question,
		Options:     w.Options,
		Explanation: w.Explanation,
	}
	switch {
	case w.Answer != nil:
		q.Answer = *w.Answer
	case w.CorrectAnswer != nil:
		q.Answer = *w.CorrectAnswer
	}
	return q
}

func toQuestions(in []wireQuestion) []track.Question {
	if len(in) == 0 {
		return nil
	}
	out := make([]track.Question, len(in))
	for i, q := range in {
		out[i] = q.question()
	}
	return out
}

type wirePrefInfo struct {
	Text   flexStrings `json:"text"`
	Images []string    `json:"images"`
}

type wireTrack struct {
	ID           string         `json:"_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Level        string         `json:"level"`
	LessonsCount *int           `json:"lessonsCount"`
	FinalQuiz    []wireQuestion `json:"finalQuiz"`
	PrefInfo     wirePrefInfo   `json:"prefInfo"`
}

func (w wireTrack) track() track.Track {
	t := track.Track{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Level:       track.Level(strings.ToLower(strings.TrimSpace(w.Level))),
		FinalQuiz:   toQuestions(w.FinalQuiz),
		Overview: track.Overview{
			Paragraphs: []string(w.PrefInfo.Text),
			Images:     w.PrefInfo.Images,
		},
	}
	if w.LessonsCount != nil {
		t.LessonCount = *w.LessonsCount
	}
	return t
}

type wireLesson struct {
	ID       string          `json:"_id"`
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content"`
	VideoURL string          `json:"videoUrl"`
	Quiz     []wireQuestion  `json:"quiz"`
}

func (w wireLesson) lesson() track.Lesson {
	return track.Lesson{
		ID:       w.ID,
		Title:    w.Title,
		Content:  contentBlocks(w.Content),
		VideoURL: w.VideoURL,
		Quiz:     toQuestions(w.Quiz),
	}
}

type wireBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Value    string `json:"value"`
	Src      string `json:"src"`
	URL      string `json:"url"`
	Language string `json:"language"`
}

// contentBlocks normalizes lesson content. The API sends either an HTML
// string or a list of typed blocks.
func contentBlocks(raw json.RawMessage) []track.ContentBlock {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return htmlBlocks(s)
	}
	var blocks []wireBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	out := make([]track.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		text := firstNonEmpty(b.Text, b.Value)
		kind := track.BlockKind(strings.ToLower(b.Type))
		switch kind {
		case track.BlockHeading, track.BlockCode:
		case track.BlockImage:
			text = firstNonEmpty(b.Src, b.URL, text)
		default:
			kind = track.BlockText
		}
		out = append(out, track.ContentBlock{Kind: kind, Text: text, Language: b.Language})
	}
	return out
}

type wireTrackDetail struct {
	Track   wireTrack    `json:"track"`
	Lessons []wireLesson `json:"lessons"`
}

type wireQuiz struct {
	ID        string         `json:"_id"`
	FileName  string         `json:"fileName"`
	Questions []wireQuestion `json:"questions"`
	CreatedAt flexTime       `json:"createdAt"`
}

func (w wireQuiz) quiz() practice.Quiz {
	return practice.Quiz{
		ID:        w.ID,
		FileName:  w.FileName,
		Questions: toQuestions(w.Questions),
		CreatedAt: w.CreatedAt.Time(),
	}
}

type wireAnswer struct {
	QuestionIndex  int    `json:"questionIndex"`
	SelectedAnswer string `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
}

type wireAttempt struct {
	ID        string       `json:"_id"`
	Quiz      refID        `json:"quiz"`
	Score     int          `json:"score"`
	Total     int          `json:"total"`
	Answers   []wireAnswer `json:"answers"`
	CreatedAt flexTime     `json:"createdAt"`
}

func (w wireAttempt) attempt(quizID string) practice.Attempt {
	a := practice.Attempt{
		ID:        w.ID,
		QuizID:    string(w.Quiz),
		Score:     w.Score,
		Total:     w.Total,
		CreatedAt: w.CreatedAt.Time(),
	}
	if a.QuizID == "" {
		a.QuizID = quizID
	}
	for _, ans := range w.Answers {
		a.Answers = append(a.Answers, practice.Answer{
			QuestionIndex: ans.QuestionIndex,
			Selected:      ans.SelectedAnswer,
			Correct:       ans.IsCorrect,
		})
	}
	return a
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
