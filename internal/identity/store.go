package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/store"
)

// ErrSessionExpired is returned by Bootstrap when the persisted token has
// expired or was rejected by the server.
var ErrSessionExpired = fmt.Errorf("session expired: %w", failure.ErrAuthRequired)

// Store holds the single active identity of the running client. Reads
// return immutable snapshots. Writes happen only through Login, Register,
// Logout, ApplyProgression and Refresh (Bootstrap restores a persisted
// login).
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	auth     Authenticator
	creds    store.CredentialRepo
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewStore creates an anonymous session store. creds may be nil, in which
// case logins are not persisted.
func NewStore(auth Authenticator, creds store.CredentialRepo, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		auth:     auth,
		creds:    creds,
		log:      log.Named("identity"),
		validate: newValidator(),
		now:      time.Now,
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Token
}

// Bootstrap restores the identity from the persisted credential. With no
// credential the session stays anonymous and nil is returned. An expired
// or rejected credential is erased and ErrSessionExpired is returned. A
// remote failure keeps the credential for the next start and leaves the
// session anonymous.
func (s *Store) Bootstrap(ctx context.Context) error {
	if s.creds == nil {
		return nil
	}
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.Token == "" {
		return nil
	}

	if tokenExpired(cred.Token, s.now()) {
		s.log.Info("persisted token expired", zap.String("user", cred.Username))
		s.forget(ctx)
		return ErrSessionExpired
	}

	profile, err := s.auth.CurrentUser(ctx, cred.Token)
	if err != nil {
		if errors.Is(err, failure.ErrAuthRequired) {
			s.log.Info("persisted token rejected", zap.String("user", cred.Username))
			s.forget(ctx)
			return ErrSessionExpired
		}
		return fmt.Errorf("restore session: %w", err)
	}

	s.replace(cred.Token, profile)
	s.log.Debug("session restored", zap.String("user", profile.User.Username))
	return nil
}

// Login validates the credentials locally, signs in remotely and makes the
// returned identity the active one. Failures leave the session unchanged.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	if err := check(s.validate, creds); err != nil {
		return err
	}
	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.signIn(ctx, res)
	return nil
}

// Register validates the registration locally, creates the account
// remotely and signs the new user in.
func (s *Store) Register(ctx context.Context, reg Registration) error {
	if err := check(s.validate, reg); err != nil {
		return err
	}
	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.signIn(ctx, res)
	return nil
}

// Logout clears the session and the persisted credential.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.snap = Snapshot{Version: s.snap.Version + 1}
	s.mu.Unlock()

	if s.creds == nil {
		return nil
	}
	if err := s.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Expire logs out when err says the server rejected the credential. It
// reports whether the session was cleared.
func (s *Store) Expire(ctx context.Context, err error) bool {
	if !errors.Is(err, failure.ErrAuthRequired) || s.Token() == "" {
		return false
	}
	if lerr := s.Logout(ctx); lerr != nil {
		s.log.Warn("clear credential after rejection", zap.Error(lerr))
	}
	return true
}

// ApplyProgression replaces the progression sub-records carried by u with
// the server's authoritative values.
func (s *Store) ApplyProgression(u progression.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.User == nil {
		return fmt.Errorf("apply progression: %w", failure.ErrAuthRequired)
	}
	s.snap.Progression = s.snap.Progression.Apply(u)
	s.snap.Fresh = true
	s.snap.Version++
	return nil
}

// Refresh re-reads the profile of the signed-in user and replaces the user
// and every progression sub-record with the server's values. A failure
// leaves the session untouched. A reply that arrives after the session
// changed hands (logout, another login) is discarded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	token, signedIn := s.snap.Token, s.snap.User != nil
	s.mu.RUnlock()
	if !signedIn || token == "" {
		return fmt.Errorf("refresh session: %w", failure.ErrAuthRequired)
	}

	profile, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.User == nil || s.snap.Token != token {
		s.log.Debug("discard refresh for replaced session")
		return nil
	}
	user := profile.User
	s.snap.User = &user
	s.snap.Progression = profile.Progression.Clone()
	s.snap.Fresh = true
	s.snap.Version++
	return nil
}

func (s *Store) signIn(ctx context.Context, res AuthResult) {
	s.replace(res.Token, res.Profile)
	if s.creds == nil {
		return
	}
	err := s.creds.Save(ctx, store.Credential{
		Token:    res.Token,
		UserID:   res.Profile.User.ID,
		Username: res.Profile.User.Username,
		SavedAt:  s.now(),
	})
	if err != nil {
		s.log.Warn("persist credential", zap.Error(err))
	}
}

func (s *Store) replace(token string, p Profile) {
	user := p.User
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{
		User:        &user,
		Token:       token,
		Progression: p.Progression.Clone(),
		Fresh:       true,
		Version:     s.snap.Version + 1,
	}
}

func (s *Store) forget(ctx context.Context) {
	if err := s.Logout(ctx); err != nil {
		s.log.Warn("clear credential", zap.Error(err))
	}
}
