package identity

import (
	"context"
	"slices"
	"time"

	"github.com/omergehad405/EduMaster/internal/progression"
)

// User is the public profile of a signed-in learner. XP and streak are
// computed by the server and only displayed here.
type User struct {
	ID        string
	Username  string
	Email     string
	AvatarURL string
	XP        int
	Streak    int
	Activity  []Activity
}

// Activity is one entry of the learner's recent activity feed.
type Activity struct {
	Kind    string
	Message string
	At      time.Time
}

// RecentActivity returns up to n entries, newest first.
func (u User) RecentActivity(n int) []Activity {
	out := slices.Clone(u.Activity)
	slices.SortStableFunc(out, func(a, b Activity) int {
		return b.At.Compare(a.At)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Profile is a user together with their server-side progression.
type Profile struct {
	User        User
	Progression progression.Progression
}

// AuthResult is the answer to a successful login or registration.
type AuthResult struct {
	Token   string
	Profile Profile
}

// Credentials holds the inputs of a login.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration holds the inputs of a sign-up. AvatarPath is an optional
// local image file uploaded with the request.
type Registration struct {
	Username   string `validate:"required,min=3,max=32"`
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=6"`
	AvatarPath string `validate:"omitempty,file"`
}

// Authenticator is the remote side of identity management.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Register(ctx context.Context, reg Registration) (AuthResult, error)
	CurrentUser(ctx context.Context, token string) (Profile, error)
}

// Snapshot is an immutable view of the session. Callers receive copies;
// changing one never affects the store.
type Snapshot struct {
	// User is nil when nobody is signed in.
	User *User

	// Token is the bearer credential of the signed-in user.
	Token string

	// Progression is the last authoritative progression from the server.
	Progression progression.Progression

	// Fresh is true once Progression was populated by a server response
	// in this run.
	Fresh bool

	// Version increases on every write.
	Version uint64
}

// SignedIn reports whether an identity is active.
func (s Snapshot) SignedIn() bool {
	return s.User != nil && s.Token != ""
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.User != nil {
		u := *s.User
		u.Activity = slices.Clone(s.User.Activity)
		out.User = &u
	}
	out.Progression = s.Progression.Clone()
	return out
}
