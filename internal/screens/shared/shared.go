// Package shared holds what every screen needs: the collaborators of
// the running client and the messages screens use to talk to the app.
package shared

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/practice"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/store"
)

// RequestTimeout bounds every request a screen issues.
const RequestTimeout = 30 * time.Second

// Deps are the collaborators shared by all screens.
type Deps struct {
	Session   *identity.Store
	Courses   *courses.Service
	Practice  *practice.Service
	Completer quiz.Completer
	Unlocks   *progression.Unlocks
	History   store.AttemptRepo
	Log       *zap.Logger
}

// QuizDeps returns the collaborators of a quiz controller.
func (d Deps) QuizDeps() quiz.Deps {
	qd := quiz.Deps{
		Completer: d.Completer,
		Unlocks:   d.Unlocks,
		History:   d.History,
		Log:       d.Logger(),
	}
	if d.Session != nil {
		qd.Session = d.Session
	}
	return qd
}

// Logger returns the screen logger, never nil.
func (d Deps) Logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Context returns a request context bounded by RequestTimeout.
func Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), RequestTimeout)
}

// SignedInMsg is sent after a successful login or registration.
type SignedInMsg struct{}

// SignedOutMsg is sent after the learner logged out.
type SignedOutMsg struct{}

// SessionExpiredMsg is sent when the server rejected the credential and
// the session was cleared.
type SessionExpiredMsg struct{}

// Handle inspects err from a remote call. When the server rejected the
// credential the session is cleared and SessionExpiredMsg is returned as
// a command; otherwise it returns nil and the screen shows the error.
func (d Deps) Handle(err error) tea.Cmd {
	if !errors.Is(err, failure.ErrAuthRequired) || d.Session == nil {
		return nil
	}
	if d.Session.Token() == "" {
		return nil
	}
	ctx, cancel := Context()
	defer cancel()
	if d.Session.Expire(ctx, err) {
		d.Logger().Info("session expired", zap.Error(err))
		return func() tea.Msg { return SessionExpiredMsg{} }
	}
	return nil
}

// Visible reports whether err should be shown to the learner. Stale
// responses are dropped silently.
func Visible(err error) bool {
	return err != nil && !errors.Is(err, failure.ErrStale)
}
