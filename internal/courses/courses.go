// Package courses assembles what the learner sees about tracks: the
// catalog, the "my courses" board, one track's lessons with their derived
// state, and enrollment.
package courses

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/track"
)

// DefaultFetchLimit bounds concurrent track fetches on the board.
const DefaultFetchLimit = 4

// API is the remote side used by the service.
type API interface {
	ListTracks(ctx context.Context) ([]track.Track, error)
	GetTrack(ctx context.Context, token, trackID string) (track.Track, []track.Lesson, error)
	Enroll(ctx context.Context, token, trackID string) (progression.Update, error)
	EnterLesson(ctx context.Context, token, lessonID string)
}

// Session is the slice of the identity store the service reads and updates.
type Session interface {
	Snapshot() identity.Snapshot
	ApplyProgression(progression.Update) error
	Refresh(ctx context.Context) error
}

// Service combines fetched tracks with the session's progression.
type Service struct {
	api     API
	session Session
	engine  *progression.Engine
	unlocks *progression.Unlocks
	limit   int
	log     *zap.Logger
}

// NewService creates a Service. unlocks may be nil when lesson-quiz unlock
// overrides are not tracked.
func NewService(api API, session Session, engine *progression.Engine, unlocks *progression.Unlocks, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if engine == nil {
		engine = progression.NewEngine(nil)
	}
	return &Service{
		api:     api,
		session: session,
		engine:  engine,
		unlocks: unlocks,
		limit:   DefaultFetchLimit,
		log:     log.Named("courses"),
	}
}

// Entry is one track of the catalog.
type Entry struct {
	Track     track.Track
	Enrolled  bool
	Completed bool
}

// Catalog lists every published track with the learner's enrollment.
// It works signed out.
func (s *Service) Catalog(ctx context.Context) ([]Entry, error) {
	tracks, err := s.api.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	p := s.session.Snapshot().Progression
	out := make([]Entry, len(tracks))
	for i, t := range tracks {
		out[i] = Entry{
			Track:     t,
			Enrolled:  p.IsEnrolled(t.ID),
			Completed: p.IsCompleted(t.ID),
		}
	}
	return out, nil
}

// Detail is one track with its lessons and derived state.
type Detail struct {
	Summary progression.TrackSummary
	Lessons []track.Lesson
}

// Lesson returns the lesson with the given id.
func (d Detail) Lesson(id string) (track.Lesson, bool) {
	if i := track.IndexOf(d.Lessons, id); i >= 0 {
		return d.Lessons[i], true
	}
	return track.Lesson{}, false
}

// Track loads one track and derives its state for the current learner.
func (s *Service) Track(ctx context.Context, trackID string) (Detail, error) {
	snap := s.session.Snapshot()
	t, lessons, err := s.api.GetTrack(ctx, snap.Token, trackID)
	if err != nil {
		return Detail{}, fmt.Errorf("load track %s: %w", trackID, err)
	}
	return Detail{
		Summary: s.engine.Summarize(t, lessons, snap.Progression, s.unlocks.Get(trackID)),
		Lessons: lessons,
	}, nil
}

// Failure is a track the board could not load.
type Failure struct {
	TrackID string
	Err     error
}

// Board is the learner's dashboard.
type Board struct {
	User      identity.User
	Summaries []progression.TrackSummary
	Stats     progression.Stats
	Failed    []Failure
}

// Board fetches every enrolled or completed track concurrently and
// summarizes it. The session's progression is re-read from the server
// first; when that fails for any reason but a rejected credential the
// board falls back to the progression already held. A track that fails
// to load is listed in Failed and the rest of the board is still
// returned; a rejected credential fails the whole board.
func (s *Service) Board(ctx context.Context) (Board, error) {
	if !s.session.Snapshot().SignedIn() {
		return Board{}, fmt.Errorf("load courses: %w", failure.ErrAuthRequired)
	}
	if err := s.session.Refresh(ctx); err != nil {
		if errors.Is(err, failure.ErrAuthRequired) || errors.Is(err, context.Canceled) {
			return Board{}, fmt.Errorf("load courses: %w", err)
		}
		s.log.Warn("refresh progression", zap.Error(err))
	}
	snap := s.session.Snapshot()
	if !snap.SignedIn() {
		return Board{}, fmt.Errorf("load courses: %w", failure.ErrAuthRequired)
	}
	ids := boardTracks(snap.Progression)

	type loaded struct {
		t       track.Track
		lessons []track.Lesson
		ok      bool
	}
	results := make([]loaded, len(ids))
	var (
		mu     sync.Mutex
		failed []Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, id := range ids {
		g.Go(func() error {
			t, lessons, err := s.api.GetTrack(gctx, snap.Token, id)
			if err != nil {
				if errors.Is(err, failure.ErrAuthRequired) || errors.Is(err, context.Canceled) {
					return err
				}
				s.log.Warn("load track", zap.String("track", id), zap.Error(err))
				mu.Lock()
				failed = append(failed, Failure{TrackID: id, Err: err})
				mu.Unlock()
				return nil
			}
			results[i] = loaded{t: t, lessons: lessons, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Board{}, fmt.Errorf("load courses: %w", err)
	}

	b := Board{User: *snap.User, Failed: failed}
	for _, r := range results {
		if !r.ok {
			continue
		}
		b.Summaries = append(b.Summaries, s.engine.Summarize(r.t, r.lessons, snap.Progression, s.unlocks.Get(r.t.ID)))
	}
	b.Stats = progression.Overview(snap.Progression, b.Summaries)
	return b, nil
}

// boardTracks lists enrolled tracks followed by completed tracks missing
// from the enrollment, without duplicates.
func boardTracks(p progression.Progression) []string {
	seen := make(progression.IDSet)
	var ids []string
	for _, list := range [][]string{p.Enrolled, p.Completed} {
		for _, id := range list {
			if id == "" || seen.Has(id) {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Enroll enrolls the learner in a track and applies the server's answer.
func (s *Service) Enroll(ctx context.Context, trackID string) error {
	snap := s.session.Snapshot()
	if !snap.SignedIn() {
		return fmt.Errorf("enroll: %w", failure.ErrAuthRequired)
	}
	u, err := s.api.Enroll(ctx, snap.Token, trackID)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	if err := s.session.ApplyProgression(u); err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	s.log.Info("enrolled", zap.String("track", trackID))
	return nil
}

// EnterLesson records that the learner opened a lesson.
func (s *Service) EnterLesson(ctx context.Context, lessonID string) {
	if tok := s.session.Snapshot().Token; tok != "" {
		s.api.EnterLesson(ctx, tok, lessonID)
	}
}

// Nav is the previous and next lesson around a position in a track.
type Nav struct {
	Prev       string
	Next       string
	NextLocked bool
}

// Navigate returns the neighbours of lessonID in the summary's lesson
// order. Next is reported even when locked so the view can show it
// disabled.
func Navigate(s progression.TrackSummary, lessonID string) Nav {
	var nav Nav
	for i, ls := range s.Lessons {
		if ls.LessonID != lessonID {
			continue
		}
		if i > 0 {
			nav.Prev = s.Lessons[i-1].LessonID
		}
		if i+1 < len(s.Lessons) {
			nav.Next = s.Lessons[i+1].LessonID
			nav.NextLocked = s.Lessons[i+1].Locked
		}
		break
	}
	return nav
}
