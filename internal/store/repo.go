package store

import (
	"context"
	"time"
)

// QueryOpts configures history queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Kind    string    // exact kind match ("" = any)
	TrackID string    // exact track match ("" = any)
	From    time.Time // submitted_at >= From
	To      time.Time // submitted_at <= To
}

// Credential is the persisted sign-in of the last active user.
type Credential struct {
	Token    string
	UserID   string
	Username string
	SavedAt  time.Time
}

// CredentialRepo persists at most one credential.
type CredentialRepo interface {
	// Load returns the stored credential, or nil if none exists.
	Load(ctx context.Context) (*Credential, error)

	// Save replaces the stored credential.
	Save(ctx context.Context, cred Credential) error

	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// AttemptRecord is one submitted quiz attempt in the local history.
type AttemptRecord struct {
	ID          string
	Kind        string // "lesson", "final" or "practice"
	TrackID     string
	LessonID    string
	QuizID      string
	Correct     int
	Total       int
	Passed      bool
	SubmittedAt time.Time
}

// AttemptRepo is the append-only local quiz history.
type AttemptRepo interface {
	// Append records an attempt. Appending an id twice is an error.
	Append(ctx context.Context, rec AttemptRecord) error

	// Recent returns matching attempts, newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error)
}
