package gateway

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/track"
)

// ListTracks returns the public track catalog.
func (c *Client) ListTracks(ctx context.Context) ([]track.Track, error) {
	var out struct {
		Tracks []wireTrack `json:"tracks"`
	}
	err := c.do(ctx, call{
		op:     "list tracks",
		method: http.MethodGet,
		path:   "/tracks",
		schema: schemaTracks,
	}, &out)
	if err != nil {
		return nil, err
	}
	tracks := make([]track.Track, 0, len(out.Tracks))
	for i, t := range out.Tracks {
		if t.ID == "" {
			c.log.Warn("skip track without id", zap.Int("index", i))
			continue
		}
		tracks = append(tracks, t.track())
	}
	return tracks, nil
}

// GetTrack returns a track with its lessons in order. The token is sent
// when present; the endpoint also serves anonymous visitors.
func (c *Client) GetTrack(ctx context.Context, token, trackID string) (track.Track, []track.Lesson, error) {
	var out wireTrackDetail
	err := c.do(ctx, call{
		op:     "get track",
		method: http.MethodGet,
		path:   "/tracks/" + url.PathEscape(trackID),
		token:  token,
		schema: schemaTrackDetail,
	}, &out)
	if err != nil {
		return track.Track{}, nil, err
	}
	t := out.Track.track()
	if t.ID == "" {
		t.ID = trackID
	}
	lessons := make([]track.Lesson, len(out.Lessons))
	for i, l := range out.Lessons {
		lessons[i] = l.lesson()
	}
	if t.LessonCount == 0 {
		t.LessonCount = len(lessons)
	}
	c.checkQuestions(t.ID, "", t.FinalQuiz)
	for _, l := range lessons {
		c.checkQuestions(t.ID, l.ID, l.Quiz)
	}
	return t, lessons, nil
}

// checkQuestions logs questions whose answer matches none of their
// options. Such a question can never be answered correctly.
func (c *Client) checkQuestions(trackID, lessonID string, qs []track.Question) {
	for i, q := range qs {
		if !q.Valid() {
			c.log.Warn("question answer matches no option",
				zap.String("track", trackID),
				zap.String("lesson", lessonID),
				zap.Int("question", i))
		}
	}
}
