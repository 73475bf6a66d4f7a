package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/config"
	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/gateway"
	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/logging"
	"github.com/omergehad405/EduMaster/internal/practice"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/store"
)

// env is everything a command needs, built from the configuration.
type env struct {
	cfg      config.Config
	log      *zap.Logger
	store    *store.Store
	client   *gateway.Client
	session  *identity.Store
	unlocks  *progression.Unlocks
	courses  *courses.Service
	practice *practice.Service

	closeLog func() error
}

// setup loads the configuration and opens the store, the log and the
// gateway. console receives log output when --verbose is set; the TUI
// passes nil because it owns the terminal.
func setup(cmd *cobra.Command, console bool) (*env, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}

	var out io.Writer
	if console {
		out = os.Stderr
	}
	log, closeLog, err := logging.New(cfg.Log, out)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open database: %w", err)
	}

	client, err := gateway.New(cfg.Gateway(), gateway.WithLogger(log))
	if err != nil {
		st.Close()
		_ = closeLog()
		return nil, err
	}

	session := identity.NewStore(client, st.CredentialRepo(), log)
	unlocks := progression.NewUnlocks()
	engine := progression.NewEngine(logging.IssueReporter(log))

	log.Debug("client ready",
		zap.String("api", client.BaseURL()),
		zap.String("db", dbPath))

	return &env{
		cfg:      cfg,
		log:      log,
		store:    st,
		client:   client,
		session:  session,
		unlocks:  unlocks,
		courses:  courses.NewService(client, session, engine, unlocks, log),
		practice: practice.NewService(client, session, st.AttemptRepo(), cfg.Practice.MaxUploadBytes, log),
		closeLog: closeLog,
	}, nil
}

// Close releases the store and flushes the log.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close database", zap.Error(err))
	}
	_ = e.closeLog()
}

// deps returns the collaborators of the TUI.
func (e *env) deps() shared.Deps {
	return shared.Deps{
		Session:   e.session,
		Courses:   e.courses,
		Practice:  e.practice,
		Completer: e.client,
		Unlocks:   e.unlocks,
		History:   e.store.AttemptRepo(),
		Log:       e.log,
	}
}

// quizDeps returns the collaborators of a quiz controller.
func (e *env) quizDeps() quiz.Deps {
	return e.deps().QuizDeps()
}

// restore brings back the saved session. An expired session is reported
// but is not an error for commands that work signed out.
func (e *env) restore(ctx context.Context) error {
	err := e.session.Bootstrap(ctx)
	if errors.Is(err, identity.ErrSessionExpired) {
		fmt.Fprintln(os.Stderr, "Your session expired. Run `edumaster login` to sign in again.")
		return nil
	}
	return err
}

// requireLogin restores the session and fails when nobody is signed in.
func (e *env) requireLogin(ctx context.Context) error {
	if err := e.restore(ctx); err != nil {
		return err
	}
	if !e.session.Snapshot().SignedIn() {
		return fmt.Errorf("not logged in, run `edumaster login` first: %w", failure.ErrAuthRequired)
	}
	return nil
}

// resolveDBPath returns the database path using --db / store.path
// (highest priority), then EDUMASTER_DB env var, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// withEnv runs fn with a ready env and closes it afterwards.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, e)
}
